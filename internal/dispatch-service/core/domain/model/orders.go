package model

import "time"

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Stop is one end of a delivery: where, and who to call there.
type Stop struct {
	Address string
	Coord   Coordinate
	Contact string
}

type Order struct {
	ID           string // uuid
	TrackingCode string // human readable, assigned at creation

	CustomerID string // uuid, immutable after creation
	DriverID   string // uuid, empty until claimed, immutable once set

	Pickup  Stop
	Dropoff Stop

	PackageDesc   string
	PackageWeight *float64 // kg, optional
	Instructions  string
	VehicleClass  string

	// Quote computed once at creation, never recomputed.
	DistanceKm float64
	Price      int64

	Status Status

	CreatedAt   time.Time
	AcceptedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
}

const (
	RoleCustomer = "CUSTOMER"
	RoleDriver   = "DRIVER"
)

// Driver is the driver profile attached to a user account.
type Driver struct {
	UserID          string
	VehicleClass    string
	IsApproved      bool
	TotalDeliveries int64
}
