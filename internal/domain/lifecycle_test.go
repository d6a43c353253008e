package domain

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanSetStatus(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		next    Status
		actor   Role
		wantOK  bool
	}{
		{"admin approves pending", StatusPending, StatusApproved, RoleAdmin, true},
		{"admin rejects pending", StatusPending, StatusRejected, RoleAdmin, true},
		{"vendor cannot approve", StatusPending, StatusApproved, RoleVendor, false},
		{"user cannot reject", StatusPending, StatusRejected, RoleUser, false},
		{"cannot approve twice", StatusApproved, StatusApproved, RoleAdmin, false},
		{"rejected is terminal", StatusRejected, StatusApproved, RoleAdmin, false},
		{"pending is not a target", StatusApproved, StatusPending, RoleAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanSetStatus(tt.current, tt.next, tt.actor)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrPreconditionFailed))
			}
		})
	}
}

func TestCanSetAvailability(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	pending := &Package{Status: StatusPending, VendorID: owner}
	approved := &Package{Status: StatusApproved, VendorID: owner}

	assert.True(t, errors.Is(CanSetAvailability(pending, RoleAdmin, other), ErrPreconditionFailed),
		"availability on a pending package must fail")
	assert.NoError(t, CanSetAvailability(approved, RoleAdmin, other))
	assert.NoError(t, CanSetAvailability(approved, RoleVendor, owner))
	assert.True(t, errors.Is(CanSetAvailability(approved, RoleVendor, other), ErrPreconditionFailed))
	assert.True(t, errors.Is(CanSetAvailability(approved, RoleUser, owner), ErrPreconditionFailed))
}

func TestCanDelete(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	pkg := &Package{Status: StatusApproved, VendorID: owner}

	assert.NoError(t, CanDelete(pkg, RoleAdmin, other))
	assert.NoError(t, CanDelete(pkg, RoleVendor, owner))
	assert.True(t, errors.Is(CanDelete(pkg, RoleVendor, other), ErrPreconditionFailed))
	assert.True(t, errors.Is(CanDelete(pkg, RoleUser, owner), ErrPreconditionFailed))
}
