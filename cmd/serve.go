package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vipul69-eng/leadbook/pkg/auth"
	"github.com/vipul69-eng/leadbook/pkg/buyers"
	"github.com/vipul69-eng/leadbook/pkg/flags"
	"github.com/vipul69-eng/leadbook/pkg/server"
)

type serveFlags struct {
	api      *flags.APIFlags
	postgres *flags.PostgresFlags
	auth     *flags.AuthFlags
	migrate  bool
}

func newServeFlags() *serveFlags {
	return &serveFlags{
		api:      flags.NewAPIFlags(),
		postgres: flags.NewPostgresFlags(),
		auth:     flags.NewAuthFlags(),
	}
}

func init() {
	f := newServeFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lead book API",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := f.postgres.GetDBClient()
			if err != nil {
				return err
			}
			if f.migrate {
				if err := dbc.UpdateSchema(); err != nil {
					return err
				}
			}

			tokens, err := f.auth.GetTokenManager()
			if err != nil {
				return err
			}
			limiter := f.auth.GetLimiter()

			authSvc := auth.NewService(auth.NewGormUserStore(dbc), tokens, limiter)
			buyerSvc := buyers.NewService(buyers.NewGormStore(dbc))

			go func() {
				log.WithField("addr", f.api.MetricsAddr).Info("serving metrics")
				if err := server.ServeMetrics(f.api.MetricsAddr); err != nil {
					log.WithError(err).Error("metrics listener failed")
				}
			}()

			srv := server.New(f.api.ListenAddr, authSvc, buyerSvc, limiter)
			log.WithField("addr", f.api.ListenAddr).Info("serving API")
			return srv.Serve()
		},
	}

	cmd.Flags().BoolVar(&f.migrate, "migrate", false, "run schema migration before serving")
	f.api.BindFlags(cmd.Flags())
	f.postgres.BindFlags(cmd.Flags())
	f.auth.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
