package reconcile

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
)

// Defaults applied to required package attributes that are missing or
// malformed. Legacy records predate required-field enforcement, so every
// one of these has been seen absent in production data.
const (
	DefaultTitle       = "Untitled Package"
	DefaultDescription = "No description provided"
	DefaultDestination = "Not specified"
	DefaultDuration    = "1 day"
)

// Corrections is the validator's verdict on one raw package record: the
// minimal field set to write, the legacy fields to unset, and whether the
// ownership reference needs resolving.
type Corrections struct {
	Set   bson.M
	Unset []string

	// OwnerMissing is true when vendorId is absent, unparsable, or not an
	// id at all (embedded documents included). The resolver decides what
	// happens next; the validator never invents an owner.
	OwnerMissing bool

	// LegacyOwnerCandidate is a syntactically valid account id salvaged
	// from the superseded vendor field, valid only when HasLegacyCandidate.
	LegacyOwnerCandidate primitive.ObjectID
	HasLegacyCandidate   bool
}

func (c Corrections) Empty() bool {
	return len(c.Set) == 0 && len(c.Unset) == 0 && !c.OwnerMissing
}

// InspectPackage classifies one raw record. Pure: no I/O, no mutation of
// raw, and total. It never fails, it only reports.
//
// Applying Set/Unset to the record makes a second InspectPackage return an
// empty correction set; reconciliation's idempotence rests on that.
func InspectPackage(raw bson.M) Corrections {
	c := Corrections{Set: bson.M{}}

	ensureString(c.Set, raw, "title", DefaultTitle)
	ensureString(c.Set, raw, "description", DefaultDescription)
	ensureString(c.Set, raw, "destination", DefaultDestination)
	ensureString(c.Set, raw, "duration", DefaultDuration)

	if !isNumber(raw["price"]) {
		c.Set["price"] = float64(0)
	}
	if !isNumber(raw["views"]) {
		c.Set["views"] = int64(0)
	}

	if s, ok := raw["status"].(string); !ok || !domain.Status(s).Valid() {
		c.Set["status"] = string(domain.StatusPending)
	}

	switch v := raw["vendorId"].(type) {
	case primitive.ObjectID:
		// already the canonical representation
	case string:
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			c.Set["vendorId"] = oid
		} else {
			c.OwnerMissing = true
		}
	default:
		c.OwnerMissing = true
	}

	// The legacy vendor field is removed whenever present, but a usable id
	// inside it is the preferred fallback owner.
	if v, present := raw["vendor"]; present {
		c.Unset = append(c.Unset, "vendor")
		if oid, ok := asObjectID(v); ok {
			c.LegacyOwnerCandidate = oid
			c.HasLegacyCandidate = true
		}
	}

	return c
}

func ensureString(set bson.M, raw bson.M, field, fallback string) {
	if s, ok := raw[field].(string); !ok || s == "" {
		set[field] = fallback
	}
}

// isNumber accepts every numeric representation the bson decoder produces.
func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func asObjectID(v interface{}) (primitive.ObjectID, bool) {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t, true
	case string:
		oid, err := primitive.ObjectIDFromHex(t)
		return oid, err == nil
	}
	return primitive.NilObjectID, false
}
