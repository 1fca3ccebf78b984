package buyers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vipul69-eng/leadbook/pkg/db"
	"github.com/vipul69-eng/leadbook/pkg/db/models"
	"github.com/vipul69-eng/leadbook/pkg/errs"
	"github.com/vipul69-eng/leadbook/pkg/filter"
)

// ListOptions selects and orders a page of buyers. Filter fields and sort
// columns are in storage vocabulary (column names); Search matches fullName,
// phone and email case-insensitively. PageSize 0 disables pagination, which
// the CSV export relies on.
type ListOptions struct {
	Filter    filter.Filter
	Search    string
	SortField string
	Sort      filter.Sort
	Page      int
	PageSize  int
}

// Store is the persistence boundary for buyers and their history. Every
// multi-row mutation (create+history, update+history, delete+history, import
// batch) is one transaction; a partial audit trail must never be observable.
type Store interface {
	GetBuyer(ctx context.Context, id uuid.UUID) (*models.Buyer, error)
	ListBuyers(ctx context.Context, opts ListOptions) ([]models.Buyer, int64, error)

	// CreateBuyer persists a new lead together with a lifecycle marker
	// history row ("created" or "imported").
	CreateBuyer(ctx context.Context, buyer *models.Buyer, actor uuid.UUID, marker string) error

	// UpdateBuyer persists buyer conditioned on the stored updated_at still
	// equaling expected, and appends the diff history row in the same
	// transaction. Returns errs.ErrConflict when another writer won the race
	// between the protocol's version check and this write.
	UpdateBuyer(ctx context.Context, buyer *models.Buyer, expected time.Time, actor uuid.UUID, diff ChangeSet) error

	// DeleteBuyer appends the "deleted" history row and removes the record,
	// atomically, history first.
	DeleteBuyer(ctx context.Context, buyer *models.Buyer, actor uuid.UUID) error

	// ImportBuyers inserts the whole batch with one "imported" history row
	// each; the batch fully succeeds or fully fails.
	ImportBuyers(ctx context.Context, batch []*models.Buyer, actor uuid.UUID) error

	History(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BuyerHistory, error)
	DistinctTags(ctx context.Context, q string, limit int) ([]string, error)
}

// buyerColumnTypes drives the filter package's SQL generation for the buyers
// table.
var buyerColumnTypes = map[string]filter.ColumnType{
	"full_name":     filter.ColumnTypeString,
	"email":         filter.ColumnTypeString,
	"phone":         filter.ColumnTypeString,
	"city":          filter.ColumnTypeString,
	"property_type": filter.ColumnTypeString,
	"bhk":           filter.ColumnTypeString,
	"purpose":       filter.ColumnTypeString,
	"budget_min":    filter.ColumnTypeNumerical,
	"budget_max":    filter.ColumnTypeNumerical,
	"timeline":      filter.ColumnTypeString,
	"source":        filter.ColumnTypeString,
	"status":        filter.ColumnTypeString,
	"tags":          filter.ColumnTypeArray,
	"created_at":    filter.ColumnTypeTimestamp,
	"updated_at":    filter.ColumnTypeTimestamp,
}

type GormStore struct {
	dbc *db.DB
}

func NewGormStore(dbc *db.DB) *GormStore {
	return &GormStore{dbc: dbc}
}

func (s *GormStore) GetBuyer(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	var buyer models.Buyer
	res := s.dbc.DB.WithContext(ctx).First(&buyer, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, res.Error
	}
	return &buyer, nil
}

func (s *GormStore) ListBuyers(ctx context.Context, opts ListOptions) ([]models.Buyer, int64, error) {
	q := s.dbc.DB.WithContext(ctx).Model(&models.Buyer{})
	q = opts.Filter.ToSQL(q, buyerColumnTypes)

	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + search + "%"
		q = q.Where(
			s.dbc.DB.Where("full_name ILIKE ?", pattern).
				Or("phone LIKE ?", pattern).
				Or("email ILIKE ?", pattern),
		)
	}

	var total int64
	if res := q.Count(&total); res.Error != nil {
		return nil, 0, res.Error
	}

	fopts := &filter.Options{
		SortField: opts.SortField,
		Sort:      opts.Sort,
	}
	if opts.PageSize > 0 {
		fopts.Limit = opts.PageSize
		if opts.Page > 1 {
			fopts.Offset = (opts.Page - 1) * opts.PageSize
		}
	}
	q = fopts.ApplyToQuery(q, buyerColumnTypes)

	var buyers []models.Buyer
	if res := q.Find(&buyers); res.Error != nil {
		return nil, 0, res.Error
	}
	return buyers, total, nil
}

func (s *GormStore) CreateBuyer(ctx context.Context, buyer *models.Buyer, actor uuid.UUID, marker string) error {
	diff, err := markerDiff(marker)
	if err != nil {
		return err
	}
	return s.dbc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res := tx.Create(buyer); res.Error != nil {
			return res.Error
		}
		return tx.Create(&models.BuyerHistory{
			BuyerID:   buyer.ID,
			ChangedBy: actor,
			Diff:      diff,
		}).Error
	})
}

func (s *GormStore) UpdateBuyer(ctx context.Context, buyer *models.Buyer, expected time.Time, actor uuid.UUID, diff ChangeSet) error {
	payload, err := json.Marshal(diff)
	if err != nil {
		return errors.Wrap(err, "marshaling history diff")
	}

	return s.dbc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The conditioned write is the second, mandatory version check: the
		// protocol already compared tokens, but another writer may have
		// committed between that check and this statement.
		res := tx.Model(&models.Buyer{}).
			Where("id = ? AND updated_at = ?", buyer.ID, expected).
			Updates(buyerUpdateColumns(buyer))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrConflict
		}
		return tx.Create(&models.BuyerHistory{
			BuyerID:   buyer.ID,
			ChangedBy: actor,
			Diff:      payload,
		}).Error
	})
}

func (s *GormStore) DeleteBuyer(ctx context.Context, buyer *models.Buyer, actor uuid.UUID) error {
	diff, err := markerDiff("deleted")
	if err != nil {
		return err
	}
	return s.dbc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.BuyerHistory{
			BuyerID:   buyer.ID,
			ChangedBy: actor,
			Diff:      diff,
		}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Buyer{}, "id = ?", buyer.ID).Error
	})
}

func (s *GormStore) ImportBuyers(ctx context.Context, batch []*models.Buyer, actor uuid.UUID) error {
	diff, err := markerDiff("imported")
	if err != nil {
		return err
	}
	return s.dbc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res := tx.CreateInBatches(batch, s.dbc.BatchSize); res.Error != nil {
			return res.Error
		}
		history := make([]*models.BuyerHistory, 0, len(batch))
		for _, buyer := range batch {
			history = append(history, &models.BuyerHistory{
				BuyerID:   buyer.ID,
				ChangedBy: actor,
				Diff:      diff,
			})
		}
		return tx.CreateInBatches(history, s.dbc.BatchSize).Error
	})
}

func (s *GormStore) History(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BuyerHistory, error) {
	var entries []models.BuyerHistory
	q := s.dbc.DB.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("changed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if res := q.Find(&entries); res.Error != nil {
		return nil, res.Error
	}
	return entries, nil
}

func (s *GormStore) DistinctTags(ctx context.Context, q string, limit int) ([]string, error) {
	var tags []string
	query := `SELECT DISTINCT tag FROM buyers, unnest(tags) AS tag`
	args := []interface{}{}
	if q != "" {
		query += ` WHERE tag ILIKE ?`
		args = append(args, "%"+q+"%")
	}
	query += ` ORDER BY tag LIMIT ?`
	args = append(args, limit)

	res := s.dbc.DB.WithContext(ctx).Raw(query, args...).Scan(&tags)
	return tags, res.Error
}

// buyerUpdateColumns lists every mutable column plus the fresh version token.
// A map keeps gorm from skipping zero values the way a struct update would.
func buyerUpdateColumns(b *models.Buyer) map[string]interface{} {
	return map[string]interface{}{
		"full_name":     b.FullName,
		"email":         b.Email,
		"phone":         b.Phone,
		"city":          b.City,
		"property_type": b.PropertyType,
		"bhk":           b.BHK,
		"purpose":       b.Purpose,
		"budget_min":    b.BudgetMin,
		"budget_max":    b.BudgetMax,
		"timeline":      b.Timeline,
		"source":        b.Source,
		"status":        b.Status,
		"notes":         b.Notes,
		"tags":          b.Tags,
		"updated_at":    b.UpdatedAt,
	}
}

func markerDiff(marker string) ([]byte, error) {
	switch marker {
	case "created", "imported", "deleted":
	default:
		return nil, errors.Errorf("unknown history marker %q", marker)
	}
	return json.Marshal(map[string]bool{marker: true})
}
