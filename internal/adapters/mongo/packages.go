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

// PackageRepository is the packages collection. Raw access (FindAllRaw,
// UpdateFieldsByID) exists for reconciliation, which must see records
// exactly as stored; everything else decodes into the typed entity.
type PackageRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewPackageRepository(db *mongo.Database, logger observability.Logger) *PackageRepository {
	return &PackageRepository{
		coll:   db.Collection("packages"),
		logger: logger,
	}
}

func (r *PackageRepository) FindAllRaw(ctx context.Context) ([]bson.M, error) {
	timer := storeTimer("packages.find_all_raw")
	defer timer.ObserveDuration()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr(err, "find all packages")
	}
	var records []bson.M
	if err := cur.All(ctx, &records); err != nil {
		return nil, storeErr(err, "decode package records")
	}
	return records, nil
}

// UpdateFieldsByID issues one minimal partial update addressed by the
// record's immutable _id, whatever representation that id has.
func (r *PackageRepository) UpdateFieldsByID(ctx context.Context, id interface{}, set bson.M, unset []string) (int64, error) {
	timer := storeTimer("packages.update_fields")
	defer timer.ObserveDuration()

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}
	if len(update) == 0 {
		return 0, nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return 0, storeErr(err, "update package fields")
	}
	return res.ModifiedCount, nil
}

func (r *PackageRepository) Insert(ctx context.Context, pkg *domain.Package) error {
	timer := storeTimer("packages.insert")
	defer timer.ObserveDuration()

	if pkg.ID.IsZero() {
		pkg.ID = primitive.NewObjectID()
	}
	pkg.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, pkg); err != nil {
		return storeErr(err, "insert package")
	}
	return nil
}

func (r *PackageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Package, error) {
	timer := storeTimer("packages.find_by_id")
	defer timer.ObserveDuration()

	var pkg domain.Package
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&pkg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err, "find package")
	}
	return &pkg, nil
}

func (r *PackageRepository) List(ctx context.Context, f domain.PackageFilter) ([]domain.Package, error) {
	timer := storeTimer("packages.list")
	defer timer.ObserveDuration()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.AvailableOnly {
		filter["available"] = true
	}
	if f.VendorID != nil {
		filter["vendorId"] = *f.VendorID
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, storeErr(err, "list packages")
	}
	var pkgs []domain.Package
	if err := cur.All(ctx, &pkgs); err != nil {
		return nil, storeErr(err, "decode packages")
	}
	return pkgs, nil
}

// UpdateStatusIfPending moves a pending package to next. The pending guard
// rides in the filter so the check-and-set is one atomic document update.
func (r *PackageRepository) UpdateStatusIfPending(ctx context.Context, id primitive.ObjectID, next domain.Status) (int64, error) {
	timer := storeTimer("packages.update_status")
	defer timer.ObserveDuration()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": domain.StatusPending},
		bson.M{"$set": bson.M{"status": next}},
	)
	if err != nil {
		return 0, storeErr(err, "update package status")
	}
	return res.ModifiedCount, nil
}

// SetAvailabilityIfApproved toggles availability; the approved guard (and
// the ownership guard, when vendorScope is set) ride in the filter.
func (r *PackageRepository) SetAvailabilityIfApproved(ctx context.Context, id primitive.ObjectID, available bool, vendorScope *primitive.ObjectID) (int64, error) {
	timer := storeTimer("packages.set_availability")
	defer timer.ObserveDuration()

	filter := bson.M{"_id": id, "status": domain.StatusApproved}
	if vendorScope != nil {
		filter["vendorId"] = *vendorScope
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"available": available}})
	if err != nil {
		return 0, storeErr(err, "set package availability")
	}
	return res.ModifiedCount, nil
}

func (r *PackageRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	timer := storeTimer("packages.increment_views")
	defer timer.ObserveDuration()

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return storeErr(err, "increment package views")
	}
	return nil
}

func (r *PackageRepository) Delete(ctx context.Context, id primitive.ObjectID, vendorScope *primitive.ObjectID) (int64, error) {
	timer := storeTimer("packages.delete")
	defer timer.ObserveDuration()

	filter := bson.M{"_id": id}
	if vendorScope != nil {
		filter["vendorId"] = *vendorScope
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, storeErr(err, "delete package")
	}
	return res.DeletedCount, nil
}
