package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the approval state of a package. Availability is a separate
// toggle and only means anything while the package is approved.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	RoleUser   Role = "user"
)

type Package struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Destination string             `bson:"destination" json:"destination"`
	Duration    string             `bson:"duration" json:"duration"`
	Price       float64            `bson:"price" json:"price"`
	Status      Status             `bson:"status" json:"status"`
	Available   bool               `bson:"available" json:"available"`
	Views       int64              `bson:"views" json:"views"`
	VendorID    primitive.ObjectID `bson:"vendorId" json:"vendorId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Account lives in the users collection and is owned by another service.
// This core only ever reads it.
type Account struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  Role               `bson:"role" json:"role"`
}

const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	PackageID     primitive.ObjectID `bson:"packageId" json:"packageId"`
	Status        string             `bson:"status" json:"status"`
	CustomerName  string             `bson:"customerName,omitempty" json:"customerName,omitempty"`
	CustomerEmail string             `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	BookingDate   time.Time          `bson:"bookingDate" json:"bookingDate"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// PackageFilter and BookingFilter narrow store reads. Nil/zero fields mean
// "any".
type PackageFilter struct {
	Status        Status
	AvailableOnly bool
	VendorID      *primitive.ObjectID
}

type BookingFilter struct {
	UserID    *primitive.ObjectID
	PackageID *primitive.ObjectID
}

// RepairReport summarizes one reconciliation run. Unrepaired holds the ids
// of records whose ownership could not be resolved; Failed counts records
// whose corrective write was rejected by the store.
type RepairReport struct {
	Scanned    int      `json:"scanned"`
	Repaired   int      `json:"repaired"`
	Failed     int      `json:"failed"`
	Unrepaired []string `json:"unrepaired"`
}
