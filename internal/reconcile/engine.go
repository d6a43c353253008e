package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// PackageStore is the slice of the document store the engine needs: a
// point-in-time read of every raw record, and partial updates addressed by
// the record's immutable id.
type PackageStore interface {
	FindAllRaw(ctx context.Context) ([]bson.M, error)
	UpdateFieldsByID(ctx context.Context, id interface{}, set bson.M, unset []string) (int64, error)
}

// Engine scans the packages collection and repairs schema drift in place.
// The failure unit is one record: a record that cannot be repaired or
// written never aborts the run.
type Engine struct {
	store       PackageStore
	resolver    *Resolver
	logger      observability.Logger
	concurrency int
}

func NewEngine(store PackageStore, resolver *Resolver, logger observability.Logger, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{store: store, resolver: resolver, logger: logger, concurrency: concurrency}
}

// Run performs one reconciliation pass. The snapshot is a plain read, not a
// transaction: records fixed concurrently by another actor are simply
// re-read as already fixed, and anything corrected back to a bad state is
// caught on the next run. Every repair is idempotent, so running twice with
// no intervening writes repairs nothing the second time.
//
// Cancellation is honored between records; the report then covers the
// records that were actually processed.
func (e *Engine) Run(ctx context.Context) (domain.RepairReport, error) {
	records, err := e.store.FindAllRaw(ctx)
	if err != nil {
		return domain.RepairReport{}, errors.Wrap(err, "snapshot packages")
	}

	var mu sync.Mutex
	// Unrepaired starts non-nil so a clean report serializes as [].
	report := domain.RepairReport{Unrepaired: []string{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, raw := range records {
		if gctx.Err() != nil {
			break
		}
		raw := raw
		g.Go(func() error {
			e.repairOne(gctx, raw, &mu, &report)
			return nil
		})
	}
	g.Wait()

	observability.ReconcileRuns.Inc()
	observability.ReconcileScanned.Add(float64(report.Scanned))
	observability.ReconcileRepaired.Add(float64(report.Repaired))
	observability.ReconcileUnrepaired.Set(float64(len(report.Unrepaired)))

	e.logger.WithField("scanned", report.Scanned).
		WithField("repaired", report.Repaired).
		WithField("failed", report.Failed).
		WithField("unrepaired", len(report.Unrepaired)).
		Info("reconciliation pass finished")

	return report, ctx.Err()
}

func (e *Engine) repairOne(ctx context.Context, raw bson.M, mu *sync.Mutex, report *domain.RepairReport) {
	mu.Lock()
	report.Scanned++
	mu.Unlock()

	id, ok := raw["_id"]
	log := e.logger.WithField("record_id", recordID(id))
	if !ok {
		log.Warn("record has no _id, cannot address it for repair")
		mu.Lock()
		report.Failed++
		mu.Unlock()
		return
	}

	c := InspectPackage(raw)

	if c.OwnerMissing {
		owner, err := e.resolver.Resolve(ctx, c.LegacyOwnerCandidate, c.HasLegacyCandidate)
		switch {
		case errors.Is(err, domain.ErrUnresolvableOwnership):
			// No account exists to own this record. A fabricated id would
			// be worse than the drift, so the record stays untouched.
			log.Warn("no candidate account, record left unrepaired")
			mu.Lock()
			report.Unrepaired = append(report.Unrepaired, recordID(id))
			mu.Unlock()
			return
		case err != nil:
			log.WithError(err).Error("owner resolution failed")
			mu.Lock()
			report.Failed++
			mu.Unlock()
			return
		}
		c.Set["vendorId"] = owner
	}

	if c.Empty() {
		return
	}

	if _, err := e.store.UpdateFieldsByID(ctx, id, c.Set, c.Unset); err != nil {
		log.WithError(err).Error("repair write failed")
		mu.Lock()
		report.Failed++
		mu.Unlock()
		return
	}

	mu.Lock()
	report.Repaired++
	mu.Unlock()
}

func recordID(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprintf("%v", id)
}
