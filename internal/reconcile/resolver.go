package reconcile

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// AccountDirectory is the read-only view of the users collection. "First"
// lookups must be deterministic for a given directory state.
type AccountDirectory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error)
	FindFirstByRole(ctx context.Context, role domain.Role) (*domain.Account, error)
	FindAny(ctx context.Context) (*domain.Account, error)
}

type Resolver struct {
	accounts AccountDirectory
	logger   observability.Logger
}

func NewResolver(accounts AccountDirectory, logger observability.Logger) *Resolver {
	return &Resolver{accounts: accounts, logger: logger}
}

// Resolve picks a fallback owner for a record whose ownership reference is
// missing or malformed. Search order: the legacy-field candidate if that
// account exists, then the first admin (always permitted to manage any
// package), then the first vendor (the domain-appropriate owner), then any
// account at all. With an empty directory it returns
// domain.ErrUnresolvableOwnership; the caller reports the record instead of
// fabricating an id.
func (r *Resolver) Resolve(ctx context.Context, candidate primitive.ObjectID, hasCandidate bool) (primitive.ObjectID, error) {
	if hasCandidate {
		acc, err := r.accounts.FindByID(ctx, candidate)
		if err == nil {
			return acc.ID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return primitive.NilObjectID, errors.Wrap(err, "legacy candidate lookup")
		}
		r.logger.WithField("candidate", candidate.Hex()).Debug("legacy owner candidate does not exist")
	}

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleVendor} {
		acc, err := r.accounts.FindFirstByRole(ctx, role)
		if err == nil {
			return acc.ID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return primitive.NilObjectID, errors.Wrapf(err, "lookup first %s", role)
		}
	}

	acc, err := r.accounts.FindAny(ctx)
	if err == nil {
		return acc.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return primitive.NilObjectID, errors.Wrap(err, "lookup any account")
	}

	return primitive.NilObjectID, errors.WithStack(domain.ErrUnresolvableOwnership)
}
