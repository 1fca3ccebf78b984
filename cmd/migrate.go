package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vipul69-eng/leadbook/pkg/flags"
)

func init() {
	f := flags.NewPostgresFlags()

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := f.GetDBClient()
			if err != nil {
				return err
			}
			if err := dbc.UpdateSchema(); err != nil {
				return err
			}
			log.Info("schema is up to date")
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
