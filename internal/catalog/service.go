package catalog

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// Store is the packages collection as the lifecycle service sees it. The
// conditional updates carry their own state guards in the filter, so a
// transition raced by a concurrent writer modifies nothing instead of
// clobbering state.
type Store interface {
	Insert(ctx context.Context, pkg *domain.Package) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Package, error)
	List(ctx context.Context, f domain.PackageFilter) ([]domain.Package, error)
	UpdateStatusIfPending(ctx context.Context, id primitive.ObjectID, next domain.Status) (int64, error)
	SetAvailabilityIfApproved(ctx context.Context, id primitive.ObjectID, available bool, vendorScope *primitive.ObjectID) (int64, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID, vendorScope *primitive.ObjectID) (int64, error)
}

type ListingCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}

const (
	publicListingKey = "packages:public"
	publicListingTTL = 30 * time.Second
)

type Service struct {
	store  Store
	cache  ListingCache
	events EventPublisher
	logger observability.Logger
}

// NewService wires the package lifecycle service. cache and events may be
// nil; both are best-effort.
func NewService(store Store, cache ListingCache, events EventPublisher, logger observability.Logger) *Service {
	return &Service{store: store, cache: cache, events: events, logger: logger}
}

type CreateInput struct {
	Title       string
	Description string
	Destination string
	Duration    string
	Price       float64
}

// Create records a vendor submission. New packages always start pending and
// unavailable regardless of input.
func (s *Service) Create(ctx context.Context, in CreateInput, vendorID primitive.ObjectID) (*domain.Package, error) {
	var bad []string
	if in.Title == "" {
		bad = append(bad, "title")
	}
	if in.Destination == "" {
		bad = append(bad, "destination")
	}
	if vendorID.IsZero() {
		bad = append(bad, "vendorId")
	}
	if len(bad) > 0 {
		return nil, domain.NewValidationError(bad...)
	}

	pkg := &domain.Package{
		Title:       in.Title,
		Description: in.Description,
		Destination: in.Destination,
		Duration:    in.Duration,
		Price:       in.Price,
		Status:      domain.StatusPending,
		Available:   false,
		Views:       0,
		VendorID:    vendorID,
	}
	if pkg.Duration == "" {
		pkg.Duration = "1 day"
	}
	if err := s.store.Insert(ctx, pkg); err != nil {
		return nil, errors.Wrap(err, "persist package")
	}
	return pkg, nil
}

// Get fetches one package and bumps its view counter. The counter write is
// best-effort and never fails the read.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*domain.Package, error) {
	pkg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementViews(ctx, id); err != nil {
		s.logger.WithError(err).WithField("package_id", id.Hex()).Warn("view counter increment failed")
	}
	return pkg, nil
}

func (s *Service) List(ctx context.Context, f domain.PackageFilter) ([]domain.Package, error) {
	return s.store.List(ctx, f)
}

// ListPublic serves the customer-facing listing: approved and available
// packages, cached for a short window.
func (s *Service) ListPublic(ctx context.Context) ([]domain.Package, error) {
	if s.cache != nil {
		var cached []domain.Package
		if hit, err := s.cache.GetJSON(ctx, publicListingKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	pkgs, err := s.store.List(ctx, domain.PackageFilter{Status: domain.StatusApproved, AvailableOnly: true})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, publicListingKey, pkgs, publicListingTTL); err != nil {
			s.logger.WithError(err).Warn("public listing cache write failed")
		}
	}
	return pkgs, nil
}

// SetStatus moves a pending package to approved or rejected. Only admins
// may call this; anything else fails with no mutation.
func (s *Service) SetStatus(ctx context.Context, id primitive.ObjectID, next domain.Status, actor domain.Role) (*domain.Package, error) {
	pkg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CanSetStatus(pkg.Status, next, actor); err != nil {
		return nil, err
	}

	modified, err := s.store.UpdateStatusIfPending(ctx, id, next)
	if err != nil {
		return nil, errors.Wrap(err, "update package status")
	}
	if modified == 0 {
		// raced: someone else transitioned it between read and write
		current, rerr := s.store.FindByID(ctx, id)
		if rerr != nil {
			return nil, rerr
		}
		return nil, domain.PreconditionError("package is " + string(current.Status))
	}

	pkg.Status = next
	s.invalidatePublicListing(ctx)
	s.publishStatusEvent(ctx, pkg)
	return pkg, nil
}

// SetAvailability toggles the availability flag on an approved package.
func (s *Service) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool, actor domain.Role, actorID primitive.ObjectID) (*domain.Package, error) {
	pkg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CanSetAvailability(pkg, actor, actorID); err != nil {
		return nil, err
	}

	var vendorScope *primitive.ObjectID
	if actor == domain.RoleVendor {
		vendorScope = &actorID
	}
	modified, err := s.store.SetAvailabilityIfApproved(ctx, id, available, vendorScope)
	if err != nil {
		return nil, errors.Wrap(err, "set package availability")
	}
	if modified == 0 && pkg.Available != available {
		current, rerr := s.store.FindByID(ctx, id)
		if rerr != nil {
			return nil, rerr
		}
		return nil, domain.PreconditionError("package is " + string(current.Status))
	}

	pkg.Available = available
	s.invalidatePublicListing(ctx)
	return pkg, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, actor domain.Role, actorID primitive.ObjectID) error {
	pkg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.CanDelete(pkg, actor, actorID); err != nil {
		return err
	}

	var vendorScope *primitive.ObjectID
	if actor == domain.RoleVendor {
		vendorScope = &actorID
	}
	deleted, err := s.store.Delete(ctx, id, vendorScope)
	if err != nil {
		return errors.Wrap(err, "delete package")
	}
	if deleted == 0 {
		return domain.ErrNotFound
	}
	s.invalidatePublicListing(ctx)
	return nil
}

func (s *Service) invalidatePublicListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, publicListingKey); err != nil {
		s.logger.WithError(err).Warn("public listing cache invalidation failed")
	}
}

func (s *Service) publishStatusEvent(ctx context.Context, pkg *domain.Package) {
	if s.events == nil {
		return
	}
	key := "package.approved"
	if pkg.Status == domain.StatusRejected {
		key = "package.rejected"
	}
	payload := map[string]string{
		"packageId": pkg.ID.Hex(),
		"vendorId":  pkg.VendorID.Hex(),
		"status":    string(pkg.Status),
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		s.logger.WithError(err).Warn("package status event publish failed")
	}
}
