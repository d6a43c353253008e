package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// BookingRepository is the bookings collection. Ingestion is append-only:
// there is no update-in-place, only Insert and reads.
type BookingRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewBookingRepository(db *mongo.Database, logger observability.Logger) *BookingRepository {
	return &BookingRepository{
		coll:   db.Collection("bookings"),
		logger: logger,
	}
}

func (r *BookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	timer := storeTimer("bookings.insert")
	defer timer.ObserveDuration()

	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if b.BookingDate.IsZero() {
		b.BookingDate = now
	}
	b.CreatedAt = now

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return storeErr(err, "insert booking")
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	timer := storeTimer("bookings.find_by_id")
	defer timer.ObserveDuration()

	var b domain.Booking
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err, "find booking")
	}
	return &b, nil
}

func (r *BookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	timer := storeTimer("bookings.list")
	defer timer.ObserveDuration()

	filter := bson.M{}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.PackageID != nil {
		filter["packageId"] = *f.PackageID
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, storeErr(err, "list bookings")
	}
	var bookings []domain.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, storeErr(err, "decode bookings")
	}
	return bookings, nil
}
