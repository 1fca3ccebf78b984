package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vipul69-eng/leadbook/pkg/db"
	"github.com/vipul69-eng/leadbook/pkg/db/models"
	"github.com/vipul69-eng/leadbook/pkg/errs"
)

type GormUserStore struct {
	dbc *db.DB
}

func NewGormUserStore(dbc *db.DB) *GormUserStore {
	return &GormUserStore{dbc: dbc}
}

func (s *GormUserStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.dbc.DB.WithContext(ctx).
		Where("username = ?", user.Username).
		First(&models.User{}).Error
	if err == nil {
		return errs.ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.dbc.DB.WithContext(ctx).Create(user).Error; err != nil {
		// Two concurrent signups can both pass the existence check; the
		// loser's insert trips the unique index instead.
		if isDuplicateKeyError(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *GormUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	res := s.dbc.DB.WithContext(ctx).Where("username = ?", username).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, res.Error
	}
	return &user, nil
}

// isDuplicateKeyError reports whether err is a unique constraint violation
// (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
