package reconcile

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// fakeStore is an in-memory packages collection with per-record atomicity,
// mirroring the document store contract.
type fakeStore struct {
	mu      sync.Mutex
	records []bson.M
	failIDs map[primitive.ObjectID]bool
	updates int
}

func newFakeStore(records ...bson.M) *fakeStore {
	return &fakeStore{records: records, failIDs: map[primitive.ObjectID]bool{}}
}

func (s *fakeStore) FindAllRaw(ctx context.Context) ([]bson.M, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]bson.M, 0, len(s.records))
	for _, rec := range s.records {
		cp := bson.M{}
		for k, v := range rec {
			cp[k] = v
		}
		snapshot = append(snapshot, cp)
	}
	return snapshot, nil
}

func (s *fakeStore) UpdateFieldsByID(ctx context.Context, id interface{}, set bson.M, unset []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if oid, ok := id.(primitive.ObjectID); ok && s.failIDs[oid] {
		return 0, errors.WithStack(domain.ErrStoreUnavailable)
	}
	s.updates++
	for _, rec := range s.records {
		if rec["_id"] == id {
			for k, v := range set {
				rec[k] = v
			}
			for _, f := range unset {
				delete(rec, f)
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeStore) get(id primitive.ObjectID) bson.M {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec["_id"] == id {
			return rec
		}
	}
	return nil
}

func newEngine(store *fakeStore, dir AccountDirectory) *Engine {
	logger := observability.NewLogger()
	return NewEngine(store, NewResolver(dir, logger), logger, 2)
}

// One clean record, one missing required fields, one still on the legacy
// ownership field.
func TestEngine_RepairScenario(t *testing.T) {
	vendor := account(domain.RoleVendor)
	dir := &fakeDirectory{accounts: []domain.Account{vendor}}

	clean := wellFormedRecord(vendor.ID)
	missing := wellFormedRecord(vendor.ID)
	delete(missing, "title")
	delete(missing, "price")
	legacy := wellFormedRecord(vendor.ID)
	delete(legacy, "vendorId")
	legacy["vendor"] = vendor.ID.Hex()

	store := newFakeStore(clean, missing, legacy)
	engine := newEngine(store, dir)

	report, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Repaired)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Unrepaired)

	fixed := store.get(missing["_id"].(primitive.ObjectID))
	assert.Equal(t, DefaultTitle, fixed["title"])
	assert.Equal(t, float64(0), fixed["price"])

	migrated := store.get(legacy["_id"].(primitive.ObjectID))
	assert.Equal(t, vendor.ID, migrated["vendorId"])
	assert.NotContains(t, migrated, "vendor")
}

func TestEngine_SecondRunRepairsNothing(t *testing.T) {
	admin := account(domain.RoleAdmin)
	dir := &fakeDirectory{accounts: []domain.Account{admin}}

	drifted := bson.M{"_id": primitive.NewObjectID(), "status": "live", "vendor": "old corp"}
	partial := bson.M{"_id": primitive.NewObjectID(), "title": "Alleppey Backwaters", "vendorId": admin.ID}
	store := newFakeStore(drifted, partial)
	engine := newEngine(store, dir)

	first, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Repaired)

	second, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Scanned)
	assert.Equal(t, 0, second.Repaired, "second consecutive run must find no issues")
	assert.Equal(t, 0, second.Failed)
}

func TestEngine_CleanRunReportsEmptyUnrepairedList(t *testing.T) {
	vendor := account(domain.RoleVendor)
	store := newFakeStore(wellFormedRecord(vendor.ID))

	report, err := newEngine(store, &fakeDirectory{accounts: []domain.Account{vendor}}).Run(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, report.Unrepaired)
	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"unrepaired":[]`)
}

func TestEngine_OwnershipPriorityPicksAdmin(t *testing.T) {
	vendor := account(domain.RoleVendor)
	admin := account(domain.RoleAdmin)
	dir := &fakeDirectory{accounts: []domain.Account{vendor, admin}}

	orphan := wellFormedRecord(primitive.NewObjectID())
	orphan["vendorId"] = "broken!!"
	store := newFakeStore(orphan)

	report, err := newEngine(store, dir).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Repaired)

	repaired := store.get(orphan["_id"].(primitive.ObjectID))
	assert.Equal(t, admin.ID, repaired["vendorId"], "admin must win over vendor")
}

func TestEngine_UnresolvableRecordLeftUntouched(t *testing.T) {
	orphanID := primitive.NewObjectID()
	orphan := bson.M{"_id": orphanID, "title": "Orphaned"}
	store := newFakeStore(orphan)

	report, err := newEngine(store, &fakeDirectory{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 0, report.Repaired)
	assert.Equal(t, []string{orphanID.Hex()}, report.Unrepaired)
	assert.Equal(t, 0, store.updates, "unrepairable records must not be written at all")
	assert.NotContains(t, store.get(orphanID), "vendorId")
}

func TestEngine_WriteFailureDoesNotAbortScan(t *testing.T) {
	vendor := account(domain.RoleVendor)
	dir := &fakeDirectory{accounts: []domain.Account{vendor}}

	bad := bson.M{"_id": primitive.NewObjectID(), "vendorId": vendor.ID}
	good := bson.M{"_id": primitive.NewObjectID(), "vendorId": vendor.ID}
	store := newFakeStore(bad, good)
	store.failIDs[bad["_id"].(primitive.ObjectID)] = true

	report, err := newEngine(store, dir).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Repaired)
	assert.Equal(t, 1, report.Failed)

	repaired := store.get(good["_id"].(primitive.ObjectID))
	assert.Equal(t, DefaultTitle, repaired["title"])
}

func TestEngine_CancelledContextReturnsPartialReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vendor := account(domain.RoleVendor)
	store := newFakeStore(wellFormedRecord(vendor.ID), wellFormedRecord(vendor.ID))
	report, err := newEngine(store, &fakeDirectory{accounts: []domain.Account{vendor}}).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, report.Scanned, 2)
}
