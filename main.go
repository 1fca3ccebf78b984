package main

import (
	"github.com/vipul69-eng/leadbook/cmd"
)

func main() {
	cmd.Execute()
}
