package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// AccountDirectory reads the users collection. Accounts belong to the
// identity service; this adapter never writes them. "First" is the lowest
// _id so fallback-owner selection stays deterministic between runs.
type AccountDirectory struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAccountDirectory(db *mongo.Database, logger observability.Logger) *AccountDirectory {
	return &AccountDirectory{
		coll:   db.Collection("users"),
		logger: logger,
	}
}

func (d *AccountDirectory) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error) {
	timer := storeTimer("users.find_by_id")
	defer timer.ObserveDuration()
	return d.findOne(ctx, bson.M{"_id": id})
}

func (d *AccountDirectory) FindFirstByRole(ctx context.Context, role domain.Role) (*domain.Account, error) {
	timer := storeTimer("users.find_first_by_role")
	defer timer.ObserveDuration()
	return d.findOne(ctx, bson.M{"role": role})
}

func (d *AccountDirectory) FindAny(ctx context.Context) (*domain.Account, error) {
	timer := storeTimer("users.find_any")
	defer timer.ObserveDuration()
	return d.findOne(ctx, bson.M{})
}

func (d *AccountDirectory) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var acc domain.Account
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := d.coll.FindOne(ctx, filter, opts).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err, "find account")
	}
	return &acc, nil
}
