package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vipul69-eng/leadbook/pkg/auth"
	"github.com/vipul69-eng/leadbook/pkg/db/models"
	"github.com/vipul69-eng/leadbook/pkg/flags"
	"github.com/vipul69-eng/leadbook/pkg/ratelimit"
)

func init() {
	pgFlags := flags.NewPostgresFlags()
	authFlags := flags.NewAuthFlags()

	var username, password, role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account, e.g. the first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := pgFlags.GetDBClient()
			if err != nil {
				return err
			}
			tokens, err := authFlags.GetTokenManager()
			if err != nil {
				return err
			}

			svc := auth.NewService(auth.NewGormUserStore(dbc), tokens, ratelimit.Unlimited{})
			user, err := svc.CreateUser(cmd.Context(), auth.Credentials{
				Username: username,
				Password: password,
			}, models.Role(role))
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"id":       user.ID,
				"username": user.Username,
				"role":     user.Role,
			}).Info("created user")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username for the new account")
	cmd.Flags().StringVar(&password, "password", "", "password for the new account")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "role for the new account (USER or ADMIN)")
	if err := cmd.MarkFlagRequired("username"); err != nil {
		log.WithError(err).Fatal("marking flag required")
	}
	if err := cmd.MarkFlagRequired("password"); err != nil {
		log.WithError(err).Fatal("marking flag required")
	}

	pgFlags.BindFlags(cmd.Flags())
	authFlags.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
