package flags

import "github.com/spf13/pflag"

// APIFlags holds the listen addresses for the API and the metrics endpoint.
type APIFlags struct {
	ListenAddr  string
	MetricsAddr string
}

func NewAPIFlags() *APIFlags {
	return &APIFlags{
		ListenAddr:  ":8080",
		MetricsAddr: ":2112",
	}
}

func (f *APIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ListenAddr, "listen", f.ListenAddr, "the address to serve the API on (default :8080)")
	fs.StringVar(&f.MetricsAddr, "listen-metrics", f.MetricsAddr, "the address to serve prometheus metrics on (default :2112)")
}
