package db

import (
	log "github.com/sirupsen/logrus"

	"github.com/vipul69-eng/leadbook/pkg/db/models"
)

// UpdateSchema creates or updates the tables for all models. Safe to run on
// every boot; AutoMigrate only adds what is missing.
func (dbc *DB) UpdateSchema() error {
	log.Info("updating database schema")
	return dbc.DB.AutoMigrate(
		&models.User{},
		&models.Buyer{},
		&models.BuyerHistory{},
	)
}
