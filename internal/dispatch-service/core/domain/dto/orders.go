package dto

// CreateOrderRequestDto uses pointer fields so missing keys are
// distinguishable from zero values during validation.
type CreateOrderRequestDto struct {
	PickupAddress  *string  `json:"pickup_address"`
	PickupLat      *float64 `json:"pickup_lat"`
	PickupLng      *float64 `json:"pickup_lng"`
	PickupContact  *string  `json:"pickup_contact"`
	DropoffAddress *string  `json:"dropoff_address"`
	DropoffLat     *float64 `json:"dropoff_lat"`
	DropoffLng     *float64 `json:"dropoff_lng"`
	DropoffContact *string  `json:"dropoff_contact"`
	PackageDesc    *string  `json:"package_desc"`
	PackageWeight  *float64 `json:"package_weight,omitempty"`
	Instructions   *string  `json:"instructions,omitempty"`
	VehicleClass   *string  `json:"vehicle_class"`
}

type OrderResponseDto struct {
	OrderID      string   `json:"order_id"`
	TrackingCode string   `json:"tracking_code"`
	CustomerID   string   `json:"customer_id"`
	DriverID     string   `json:"driver_id,omitempty"`
	Status       string   `json:"status"`
	DistanceKm   float64  `json:"distance_km"`
	Price        int64    `json:"price"`
	VehicleClass string   `json:"vehicle_class"`
	PickupAddr   string   `json:"pickup_address"`
	DropoffAddr  string   `json:"dropoff_address"`
	PackageDesc  string   `json:"package_desc"`
	CreatedAt    string   `json:"created_at"`
	AcceptedAt   string   `json:"accepted_at,omitempty"`
	PickedUpAt   string   `json:"picked_up_at,omitempty"`
	DeliveredAt  string   `json:"delivered_at,omitempty"`
	CancelledAt  string   `json:"cancelled_at,omitempty"`
}

type AdvanceStatusRequestDto struct {
	Status *string `json:"status"`
}
