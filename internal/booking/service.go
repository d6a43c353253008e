package booking

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/idempotency"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// Store is the bookings collection: append-only writes, read passthrough.
type Store interface {
	Insert(ctx context.Context, b *domain.Booking) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
}

// PackageReader is used only to snapshot the package price at booking time.
type PackageReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Package, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}

// Service is the single ingestion contract behind every booking front door.
// Both API binaries call into this one path, so per-call atomicity and the
// idempotency window hold no matter which door a request came through.
type Service struct {
	store    Store
	packages PackageReader
	idem     *idempotency.Idempotency
	events   EventPublisher
	logger   observability.Logger
}

func NewService(store Store, packages PackageReader, idem *idempotency.Idempotency, events EventPublisher, logger observability.Logger) *Service {
	return &Service{store: store, packages: packages, idem: idem, events: events, logger: logger}
}

// CreateInput carries raw boundary values; ids arrive as strings because
// the caller is untrusted input, not the typed domain.
type CreateInput struct {
	UserID        string
	PackageID     string
	Status        string
	CustomerName  string
	CustomerEmail string
	Price         *float64
}

// Create accepts one booking request and persists exactly one record, or
// nothing. The returned bool is true when the request was answered from an
// earlier claim on the same idempotency key.
//
// packageId is not checked against the packages collection: a dangling
// reference is tolerated and only affects the price snapshot.
func (s *Service) Create(ctx context.Context, in CreateInput, idemKey string) (*domain.Booking, bool, error) {
	var bad []string
	userID, err := primitive.ObjectIDFromHex(in.UserID)
	if in.UserID == "" || err != nil {
		bad = append(bad, "userId")
	}
	packageID, err := primitive.ObjectIDFromHex(in.PackageID)
	if in.PackageID == "" || err != nil {
		bad = append(bad, "packageId")
	}
	if len(bad) > 0 {
		return nil, false, domain.NewValidationError(bad...)
	}

	status := in.Status
	if status == "" {
		status = domain.BookingConfirmed
	}

	b := &domain.Booking{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		PackageID:     packageID,
		Status:        status,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Price:         s.priceSnapshot(ctx, packageID, in.Price),
	}

	var holdsClaim bool
	if idemKey != "" && s.idem != nil {
		claimed, existing, err := s.idem.Claim(ctx, idemKey, b.ID.Hex())
		switch {
		case err != nil:
			// Degrade to per-call atomicity only; duplicates across
			// retries become possible again, which is the stored data's
			// baseline anyway.
			s.logger.WithError(err).Warn("idempotency store unreachable, proceeding without dedup")
		case !claimed:
			observability.BookingDuplicates.Inc()
			return s.replay(ctx, existing)
		default:
			holdsClaim = true
		}
	}

	if err := s.store.Insert(ctx, b); err != nil {
		// The claim points at a booking that was never persisted; drop it
		// so a retry with the same key can claim again.
		if holdsClaim {
			if rerr := s.idem.Release(ctx, idemKey, b.ID.Hex()); rerr != nil {
				s.logger.WithError(rerr).Warn("idempotency claim release failed, key blocked until TTL")
			}
		}
		return nil, false, errors.Wrap(err, "persist booking")
	}
	observability.BookingsCreated.Inc()

	if s.events != nil {
		payload := map[string]string{
			"bookingId": b.ID.Hex(),
			"packageId": b.PackageID.Hex(),
			"userId":    b.UserID.Hex(),
		}
		if err := s.events.Publish(ctx, "booking.created", payload); err != nil {
			s.logger.WithError(err).Warn("booking.created publish failed")
		}
	}

	return b, false, nil
}

func (s *Service) priceSnapshot(ctx context.Context, packageID primitive.ObjectID, override *float64) float64 {
	if override != nil {
		return *override
	}
	pkg, err := s.packages.FindByID(ctx, packageID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0
	}
	if err != nil {
		s.logger.WithError(err).Warn("price snapshot lookup failed, defaulting to 0")
		return 0
	}
	return pkg.Price
}

// replay resolves a lost idempotency claim to the booking the winning call
// persisted.
func (s *Service) replay(ctx context.Context, existingID string) (*domain.Booking, bool, error) {
	oid, err := primitive.ObjectIDFromHex(existingID)
	if err != nil {
		return nil, false, errors.WithDetail(errors.WithStack(domain.ErrConflict), "duplicate submission")
	}
	b, err := s.store.FindByID(ctx, oid)
	if errors.Is(err, domain.ErrNotFound) {
		// the winning call claimed the key but has not committed yet
		return nil, false, errors.WithDetail(errors.WithStack(domain.ErrConflict), "duplicate submission in flight")
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	return s.store.List(ctx, f)
}
