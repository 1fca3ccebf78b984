package buyers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vipul69-eng/leadbook/pkg/auth"
	"github.com/vipul69-eng/leadbook/pkg/db/models"
	"github.com/vipul69-eng/leadbook/pkg/errs"
)

const (
	// historyDisplayLimit caps the entries shown on the lead detail view.
	historyDisplayLimit = 5

	DefaultPageSize = 10
	tagLimit        = 20
)

// ValidationError reports field-level validation failures.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %v", e.Fields)
}

// BadRequestError reports malformed input that is not scoped to a field, such
// as an unparseable CSV payload or a missing concurrency token.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// Service implements the lead operations on top of a Store, enforcing
// validation, ownership and the optimistic concurrency protocol.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// canAccess reports whether session may read or mutate a lead owned by
// ownerID. Admins may touch any lead, everyone else only their own.
func canAccess(session *auth.Session, ownerID uuid.UUID) bool {
	return session.IsAdmin() || session.Sub == ownerID
}

// Create validates the form and persists a new lead owned by the caller.
func (s *Service) Create(ctx context.Context, session *auth.Session, form BuyerForm) (*models.Buyer, error) {
	if fieldErrs := Validate(form); !fieldErrs.Empty() {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	buyer, err := form.ToModel()
	if err != nil {
		return nil, err
	}
	buyer.OwnerID = session.Sub
	buyer.UpdatedAt = time.Now().UTC()

	if err := s.store.CreateBuyer(ctx, buyer, session.Sub, "created"); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"buyer": buyer.ID, "owner": buyer.OwnerID}).Info("created buyer lead")
	return buyer, nil
}

// Get returns one lead with its most recent history entries. Access is
// owner-or-admin.
func (s *Service) Get(ctx context.Context, session *auth.Session, id uuid.UUID) (*models.Buyer, []models.BuyerHistory, error) {
	buyer, err := s.store.GetBuyer(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !canAccess(session, buyer.OwnerID) {
		return nil, nil, errs.ErrForbidden
	}
	history, err := s.store.History(ctx, id, historyDisplayLimit)
	if err != nil {
		return nil, nil, err
	}
	return buyer, history, nil
}

// List returns a page of leads. All authenticated users see the full set.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.Buyer, int64, error) {
	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	return s.store.ListBuyers(ctx, opts)
}

// Update merges patch over the stored lead and persists it under the
// optimistic concurrency protocol: the caller's expectedUpdatedAt must match
// the stored token or the request is rejected with errs.ErrConflict and
// nothing changes. An update that changes no fields is a no-op: no write, no
// history entry.
func (s *Service) Update(ctx context.Context, session *auth.Session, id uuid.UUID, patch BuyerPatch, expectedUpdatedAt time.Time) (*models.Buyer, error) {
	buyer, err := s.store.GetBuyer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(session, buyer.OwnerID) {
		return nil, errs.ErrForbidden
	}

	// Validate the merged view before looking at the version token: a caller
	// with bad input and a stale token gets the field errors, not Conflict.
	before := FormFromModel(buyer)
	after := patch.Apply(before)
	if fieldErrs := Validate(after); !fieldErrs.Empty() {
		return nil, &ValidationError{Fields: fieldErrs}
	}
	if !buyer.UpdatedAt.Equal(expectedUpdatedAt) {
		return nil, errs.ErrConflict
	}

	diff := Diff(before, after)
	if len(diff) == 0 {
		return buyer, nil
	}

	next, err := after.ToModel()
	if err != nil {
		return nil, err
	}
	next.ID = buyer.ID
	next.OwnerID = buyer.OwnerID
	next.CreatedAt = buyer.CreatedAt
	next.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBuyer(ctx, next, expectedUpdatedAt, session.Sub, diff); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"buyer": next.ID, "fields": len(diff)}).Info("updated buyer lead")
	return next, nil
}

// Delete removes a lead and records the deletion in its history.
func (s *Service) Delete(ctx context.Context, session *auth.Session, id uuid.UUID) error {
	buyer, err := s.store.GetBuyer(ctx, id)
	if err != nil {
		return err
	}
	if !canAccess(session, buyer.OwnerID) {
		return errs.ErrForbidden
	}
	if err := s.store.DeleteBuyer(ctx, buyer, session.Sub); err != nil {
		return err
	}
	log.WithField("buyer", id).Info("deleted buyer lead")
	return nil
}

// History returns the most recent change entries for a lead, newest first.
func (s *Service) History(ctx context.Context, session *auth.Session, id uuid.UUID, limit int) ([]models.BuyerHistory, error) {
	buyer, err := s.store.GetBuyer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(session, buyer.OwnerID) {
		return nil, errs.ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = historyDisplayLimit
	}
	return s.store.History(ctx, id, limit)
}

// Tags returns distinct tags across all leads, optionally narrowed by a
// substring, for typeahead suggestions.
func (s *Service) Tags(ctx context.Context, q string) ([]string, error) {
	tags, err := s.store.DistinctTags(ctx, q, tagLimit)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
