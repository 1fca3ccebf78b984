package buyers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vipul69-eng/leadbook/pkg/auth"
	"github.com/vipul69-eng/leadbook/pkg/db/models"
	"github.com/vipul69-eng/leadbook/pkg/errs"
)

type updateCall struct {
	buyer    *models.Buyer
	expected time.Time
	diff     ChangeSet
}

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	buyers  map[uuid.UUID]*models.Buyer
	history map[uuid.UUID][]models.BuyerHistory
	updates []updateCall
	deleted []uuid.UUID
	batches [][]*models.Buyer
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		buyers:  map[uuid.UUID]*models.Buyer{},
		history: map[uuid.UUID][]models.BuyerHistory{},
	}
}

func (f *fakeStore) GetBuyer(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	buyer, ok := f.buyers[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	copied := *buyer
	return &copied, nil
}

func (f *fakeStore) ListBuyers(ctx context.Context, opts ListOptions) ([]models.Buyer, int64, error) {
	var out []models.Buyer
	for _, buyer := range f.buyers {
		out = append(out, *buyer)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) CreateBuyer(ctx context.Context, buyer *models.Buyer, actor uuid.UUID, marker string) error {
	if buyer.ID == uuid.Nil {
		buyer.ID = uuid.New()
	}
	f.buyers[buyer.ID] = buyer
	f.appendMarker(buyer.ID, actor, marker)
	return nil
}

func (f *fakeStore) UpdateBuyer(ctx context.Context, buyer *models.Buyer, expected time.Time, actor uuid.UUID, diff ChangeSet) error {
	stored, ok := f.buyers[buyer.ID]
	if !ok || !stored.UpdatedAt.Equal(expected) {
		return errs.ErrConflict
	}
	f.updates = append(f.updates, updateCall{buyer: buyer, expected: expected, diff: diff})
	f.buyers[buyer.ID] = buyer
	payload, _ := json.Marshal(diff)
	f.history[buyer.ID] = append(f.history[buyer.ID], models.BuyerHistory{
		BuyerID:   buyer.ID,
		ChangedBy: actor,
		ChangedAt: time.Now(),
		Diff:      payload,
	})
	return nil
}

func (f *fakeStore) DeleteBuyer(ctx context.Context, buyer *models.Buyer, actor uuid.UUID) error {
	f.appendMarker(buyer.ID, actor, "deleted")
	delete(f.buyers, buyer.ID)
	f.deleted = append(f.deleted, buyer.ID)
	return nil
}

func (f *fakeStore) ImportBuyers(ctx context.Context, batch []*models.Buyer, actor uuid.UUID) error {
	for _, buyer := range batch {
		if buyer.ID == uuid.Nil {
			buyer.ID = uuid.New()
		}
		f.buyers[buyer.ID] = buyer
		f.appendMarker(buyer.ID, actor, "imported")
	}
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeStore) History(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BuyerHistory, error) {
	entries := f.history[buyerID]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (f *fakeStore) DistinctTags(ctx context.Context, q string, limit int) ([]string, error) {
	return []string{"hot", "nri"}, nil
}

func (f *fakeStore) appendMarker(buyerID, actor uuid.UUID, marker string) {
	payload, _ := json.Marshal(map[string]bool{marker: true})
	f.history[buyerID] = append(f.history[buyerID], models.BuyerHistory{
		BuyerID:   buyerID,
		ChangedBy: actor,
		ChangedAt: time.Now(),
		Diff:      payload,
	})
}

func userSession() *auth.Session {
	return &auth.Session{Sub: uuid.New(), Username: "agent", Role: models.RoleUser}
}

func adminSession() *auth.Session {
	return &auth.Session{Sub: uuid.New(), Username: "boss", Role: models.RoleAdmin}
}

func TestServiceCreate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	session := userSession()

	buyer, err := svc.Create(context.Background(), session, validForm())
	require.NoError(t, err)

	assert.Equal(t, session.Sub, buyer.OwnerID)
	assert.False(t, buyer.UpdatedAt.IsZero())
	require.Len(t, store.history[buyer.ID], 1)
	assert.JSONEq(t, `{"created":true}`, string(store.history[buyer.ID][0].Diff))
}

func TestServiceCreateRejectsInvalidForm(t *testing.T) {
	svc := NewService(newFakeStore())
	form := validForm()
	form.Phone = "123"

	_, err := svc.Create(context.Background(), userSession(), form)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "phone")
}

func TestServiceGetOwnership(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	owner := userSession()

	created, err := svc.Create(context.Background(), owner, validForm())
	require.NoError(t, err)

	_, _, err = svc.Get(context.Background(), userSession(), created.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	buyer, history, err := svc.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, buyer.ID)
	assert.Len(t, history, 1)

	_, _, err = svc.Get(context.Background(), adminSession(), created.ID)
	assert.NoError(t, err)
}

func TestServiceUpdate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	session := userSession()

	created, err := svc.Create(context.Background(), session, validForm())
	require.NoError(t, err)

	patch := BuyerPatch{Status: strPtr("Qualified")}
	updated, err := svc.Update(context.Background(), session, created.ID, patch, created.UpdatedAt)
	require.NoError(t, err)

	assert.Equal(t, "QUALIFIED", updated.Status)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, created.OwnerID, updated.OwnerID)

	require.Len(t, store.updates, 1)
	call := store.updates[0]
	assert.True(t, call.expected.Equal(created.UpdatedAt))
	assert.Equal(t, ChangeSet{"status": {From: "New", To: "Qualified"}}, call.diff)
}

func TestServiceUpdateStaleTokenConflicts(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	session := userSession()

	created, err := svc.Create(context.Background(), session, validForm())
	require.NoError(t, err)

	patch := BuyerPatch{Status: strPtr("Qualified")}
	_, err = svc.Update(context.Background(), session, created.ID, patch, created.UpdatedAt.Add(-time.Second))
	assert.ErrorIs(t, err, errs.ErrConflict)

	// Nothing changed, nothing recorded.
	assert.Empty(t, store.updates)
	assert.Equal(t, "NEW", store.buyers[created.ID].Status)
}

func TestServiceUpdateNoChangesIsNoOp(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	session := userSession()

	created, err := svc.Create(context.Background(), session, validForm())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), session, created.ID, BuyerPatch{}, created.UpdatedAt)
	require.NoError(t, err)

	assert.True(t, updated.UpdatedAt.Equal(created.UpdatedAt))
	assert.Empty(t, store.updates)
	assert.Len(t, store.history[created.ID], 1)
}

func TestServiceUpdateValidationErrorsWinOverStaleToken(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	session := userSession()

	created, err := svc.Create(context.Background(), session, validForm())
	require.NoError(t, err)

	// Both problems at once: invalid merged form and a stale token. The
	// protocol validates first, so the caller sees the field errors.
	patch := BuyerPatch{Phone: strPtr("12")}
	_, err = svc.Update(context.Background(), session, created.ID, patch, created.UpdatedAt.Add(-time.Second))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "phone")
	assert.Empty(t, store.updates)
}

func TestServiceUpdateValidatesMergedForm(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	session := userSession()

	created, err := svc.Create(context.Background(), session, validForm())
	require.NoError(t, err)

	// Clearing bhk on an Apartment violates the cross-field rule.
	patch := BuyerPatch{BHK: strPtr("")}
	_, err = svc.Update(context.Background(), session, created.ID, patch, created.UpdatedAt)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "bhk")
}

func TestServiceUpdateForbiddenForOtherUser(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	owner := userSession()

	created, err := svc.Create(context.Background(), owner, validForm())
	require.NoError(t, err)

	patch := BuyerPatch{Status: strPtr("Dropped")}
	_, err = svc.Update(context.Background(), userSession(), created.ID, patch, created.UpdatedAt)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	// Admins may update anyone's lead.
	_, err = svc.Update(context.Background(), adminSession(), created.ID, patch, created.UpdatedAt)
	assert.NoError(t, err)
}

func TestServiceDelete(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	session := userSession()

	created, err := svc.Create(context.Background(), session, validForm())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), userSession(), created.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), session, created.ID))
	assert.Equal(t, []uuid.UUID{created.ID}, store.deleted)

	err = svc.Delete(context.Background(), session, created.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
