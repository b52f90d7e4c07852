package websocketdto

// NewOrderDto is the payload of order:new, broadcast to online drivers.
type NewOrderDto struct {
	OrderID      string  `json:"order_id"`
	TrackingCode string  `json:"tracking_code"`
	PickupAddr   string  `json:"pickup_address"`
	DropoffAddr  string  `json:"dropoff_address"`
	DistanceKm   float64 `json:"distance_km"`
	Price        int64   `json:"price"`
	VehicleClass string  `json:"vehicle_class"`
	PackageDesc  string  `json:"package_desc"`
}

type DriverInfo struct {
	DriverID        string `json:"driver_id"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	VehicleClass    string `json:"vehicle_class"`
	TotalDeliveries int64  `json:"total_deliveries"`
}

// OrderAcceptedDto is the payload of order:accepted, sent to the customer.
type OrderAcceptedDto struct {
	OrderID string     `json:"order_id"`
	Driver  DriverInfo `json:"driver"`
}

// OrderTakenDto withdraws the offer from the other drivers' screens.
type OrderTakenDto struct {
	OrderID string `json:"order_id"`
}

type OrderStatusDto struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type OrderCancelledDto struct {
	OrderID string `json:"order_id"`
}
