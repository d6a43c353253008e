package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// fakePackageStore mirrors the conditional-update contract of the mongo
// repository: guards live in the write, not around it.
type fakePackageStore struct {
	mu       sync.Mutex
	packages map[primitive.ObjectID]*domain.Package
	lists    int
}

func newFakePackageStore() *fakePackageStore {
	return &fakePackageStore{packages: make(map[primitive.ObjectID]*domain.Package)}
}

func (s *fakePackageStore) Insert(_ context.Context, pkg *domain.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pkg.ID.IsZero() {
		pkg.ID = primitive.NewObjectID()
	}
	pkg.CreatedAt = time.Now()
	cp := *pkg
	s.packages[pkg.ID] = &cp
	return nil
}

func (s *fakePackageStore) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pkg
	return &cp, nil
}

func (s *fakePackageStore) List(_ context.Context, f domain.PackageFilter) ([]domain.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	var out []domain.Package
	for _, pkg := range s.packages {
		if f.Status != "" && pkg.Status != f.Status {
			continue
		}
		if f.AvailableOnly && !pkg.Available {
			continue
		}
		if f.VendorID != nil && pkg.VendorID != *f.VendorID {
			continue
		}
		out = append(out, *pkg)
	}
	return out, nil
}

func (s *fakePackageStore) UpdateStatusIfPending(_ context.Context, id primitive.ObjectID, next domain.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[id]
	if !ok || pkg.Status != domain.StatusPending {
		return 0, nil
	}
	pkg.Status = next
	return 1, nil
}

func (s *fakePackageStore) SetAvailabilityIfApproved(_ context.Context, id primitive.ObjectID, available bool, vendorScope *primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[id]
	if !ok || pkg.Status != domain.StatusApproved {
		return 0, nil
	}
	if vendorScope != nil && pkg.VendorID != *vendorScope {
		return 0, nil
	}
	pkg.Available = available
	return 1, nil
}

func (s *fakePackageStore) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pkg, ok := s.packages[id]; ok {
		pkg.Views++
	}
	return nil
}

func (s *fakePackageStore) Delete(_ context.Context, id primitive.ObjectID, vendorScope *primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[id]
	if !ok {
		return 0, nil
	}
	if vendorScope != nil && pkg.VendorID != *vendorScope {
		return 0, nil
	}
	delete(s.packages, id)
	return 1, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deletes++
	return nil
}

type fakeEvents struct {
	mu   sync.Mutex
	keys []string
}

func (e *fakeEvents) Publish(_ context.Context, key string, _ interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = append(e.keys, key)
	return nil
}

func seedPackage(t *testing.T, store *fakePackageStore, status domain.Status, available bool) *domain.Package {
	t.Helper()
	pkg := &domain.Package{
		Title:       "Munnar Tea Trails",
		Destination: "Munnar",
		Duration:    "3 days",
		Price:       4999,
		Status:      status,
		Available:   available,
		VendorID:    primitive.NewObjectID(),
	}
	require.NoError(t, store.Insert(context.Background(), pkg))
	return pkg
}

func TestCreate_NewPackagesStartPending(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())

	pkg, err := svc.Create(context.Background(), CreateInput{
		Title:       "Alleppey Houseboat",
		Destination: "Alleppey",
		Price:       8999,
	}, primitive.NewObjectID())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, pkg.Status)
	assert.False(t, pkg.Available)
	assert.EqualValues(t, 0, pkg.Views)
	assert.Equal(t, "1 day", pkg.Duration)
}

func TestCreate_ValidatesRequiredFields(t *testing.T) {
	svc := NewService(newFakePackageStore(), nil, nil, observability.NewLogger())

	_, err := svc.Create(context.Background(), CreateInput{}, primitive.NilObjectID)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"title", "destination", "vendorId"}, verr.Fields)
}

func TestSetStatus_AdminApprovesPending(t *testing.T) {
	store := newFakePackageStore()
	events := &fakeEvents{}
	svc := NewService(store, nil, events, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusPending, false)

	updated, err := svc.SetStatus(context.Background(), pkg.ID, domain.StatusApproved, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)

	stored, err := store.FindByID(context.Background(), pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
	assert.Equal(t, []string{"package.approved"}, events.keys)
}

func TestSetStatus_NonAdminRejected(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusPending, false)

	for _, actor := range []domain.Role{domain.RoleVendor, domain.RoleUser} {
		_, err := svc.SetStatus(context.Background(), pkg.ID, domain.StatusApproved, actor)
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	}

	stored, err := store.FindByID(context.Background(), pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status, "a rejected transition must not mutate")
}

func TestSetStatus_AlreadyDecidedFails(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusApproved, false)

	_, err := svc.SetStatus(context.Background(), pkg.ID, domain.StatusRejected, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestSetStatus_OnlyApproveOrReject(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusApproved, false)

	_, err := svc.SetStatus(context.Background(), pkg.ID, domain.StatusPending, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed, "no path leads back to pending")
}

func TestSetAvailability_RequiresApproved(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusPending, false)

	_, err := svc.SetAvailability(context.Background(), pkg.ID, true, domain.RoleAdmin, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestSetAvailability_OwningVendorOnly(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusApproved, false)

	_, err := svc.SetAvailability(context.Background(), pkg.ID, true, domain.RoleVendor, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	updated, err := svc.SetAvailability(context.Background(), pkg.ID, true, domain.RoleVendor, pkg.VendorID)
	require.NoError(t, err)
	assert.True(t, updated.Available)
}

func TestDelete_VendorScopedToOwnPackages(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusPending, false)

	err := svc.Delete(context.Background(), pkg.ID, domain.RoleVendor, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	require.NoError(t, svc.Delete(context.Background(), pkg.ID, domain.RoleVendor, pkg.VendorID))
	_, err = store.FindByID(context.Background(), pkg.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_BumpsViewCounter(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusApproved, true)

	_, err := svc.Get(context.Background(), pkg.ID)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), pkg.ID)
	require.NoError(t, err)

	stored, err := store.FindByID(context.Background(), pkg.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.Views)
}

func TestListPublic_OnlyApprovedAndAvailable(t *testing.T) {
	store := newFakePackageStore()
	svc := NewService(store, nil, nil, observability.NewLogger())
	seedPackage(t, store, domain.StatusApproved, true)
	seedPackage(t, store, domain.StatusApproved, false)
	seedPackage(t, store, domain.StatusPending, true)
	seedPackage(t, store, domain.StatusRejected, false)

	pkgs, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	assert.Len(t, pkgs, 1)
}

func TestListPublic_CachesAndInvalidates(t *testing.T) {
	store := newFakePackageStore()
	cache := newFakeCache()
	svc := NewService(store, cache, nil, observability.NewLogger())
	pkg := seedPackage(t, store, domain.StatusPending, false)

	_, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	_, err = svc.ListPublic(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists, "second read must come from cache")
	assert.Equal(t, 1, cache.hits)

	_, err = svc.SetStatus(context.Background(), pkg.ID, domain.StatusApproved, domain.RoleAdmin)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cache.deletes, 1, "lifecycle writes must drop the cached listing")
}
