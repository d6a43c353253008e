package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifecycle guards. These are pure legality checks; the services apply them
// before (and the store filters re-check them during) any write.
//
//	pending -> approved   (admin)
//	pending -> rejected   (admin)
//	approved: available true <-> false (admin or owning vendor)
//
// rejected has no outgoing transition here; resubmission is an external
// workflow.

// CanSetStatus reports whether actor may move a package from current to
// next. Errors are marked ErrPreconditionFailed.
func CanSetStatus(current, next Status, actor Role) error {
	if next != StatusApproved && next != StatusRejected {
		return PreconditionError(fmt.Sprintf("target status %q is not a legal transition", next))
	}
	if actor != RoleAdmin {
		return PreconditionError(fmt.Sprintf("role %q may not change package status", actor))
	}
	if current != StatusPending {
		return PreconditionError(fmt.Sprintf("package is %q, only pending packages can be %s", current, next))
	}
	return nil
}

// CanSetAvailability reports whether actor may toggle availability on pkg.
// Only approved packages have a meaningful availability flag.
func CanSetAvailability(pkg *Package, actor Role, actorID primitive.ObjectID) error {
	if pkg.Status != StatusApproved {
		return PreconditionError(fmt.Sprintf("package is %q, availability applies to approved packages only", pkg.Status))
	}
	switch actor {
	case RoleAdmin:
		return nil
	case RoleVendor:
		if pkg.VendorID == actorID {
			return nil
		}
		return PreconditionError("vendor does not own this package")
	default:
		return PreconditionError(fmt.Sprintf("role %q may not toggle availability", actor))
	}
}

// CanDelete mirrors the ownership rule for package removal.
func CanDelete(pkg *Package, actor Role, actorID primitive.ObjectID) error {
	switch actor {
	case RoleAdmin:
		return nil
	case RoleVendor:
		if pkg.VendorID == actorID {
			return nil
		}
		return PreconditionError("vendor does not own this package")
	default:
		return PreconditionError(fmt.Sprintf("role %q may not delete packages", actor))
	}
}
