package pricing

import (
	"errors"
	"fmt"
	"math"

	"routa/internal/config"
	"routa/internal/dispatch-service/core/domain/model"
)

const earthRadiusKm = 6371

var (
	ErrInvalidLatitude     = errors.New("invalid latitude [-90, 90]")
	ErrInvalidLongitude    = errors.New("invalid longitude [-180, 180]")
	ErrUnknownVehicleClass = errors.New("unknown vehicle class")
)

// Rate is the price formula for one vehicle class: base + distanceKm * perKm.
type Rate struct {
	Base  float64
	PerKm float64
}

// Quote is the result of pricing a pickup/dropoff pair. Distance is rounded
// to one decimal place, price to the nearest integer currency unit. Both are
// fixed at order creation and never recomputed.
type Quote struct {
	DistanceKm float64
	Price      int64
}

// Quoter prices orders from a per-vehicle-class rate table. It holds no
// mutable state and is safe for concurrent use.
type Quoter struct {
	rates map[string]Rate
}

func NewQuoter(cfg *config.Pricingconfig) *Quoter {
	rates := make(map[string]Rate, len(cfg.Classes))
	for class, r := range cfg.Classes {
		rates[class] = Rate{Base: r.Base, PerKm: r.PerKm}
	}
	return &Quoter{rates: rates}
}

// VehicleClasses lists the classes the rate table knows about.
func (q *Quoter) VehicleClasses() []string {
	classes := make([]string, 0, len(q.rates))
	for class := range q.rates {
		classes = append(classes, class)
	}
	return classes
}

func (q *Quoter) HasClass(class string) bool {
	_, ok := q.rates[class]
	return ok
}

func (q *Quoter) Quote(class string, pickup, dropoff model.Coordinate) (Quote, error) {
	rate, ok := q.rates[class]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownVehicleClass, class)
	}

	if err := ValidateCoordinate(pickup); err != nil {
		return Quote{}, fmt.Errorf("invalid pickup: %w", err)
	}
	if err := ValidateCoordinate(dropoff); err != nil {
		return Quote{}, fmt.Errorf("invalid dropoff: %w", err)
	}

	distance := Distance(pickup, dropoff)
	price := int64(math.Round(rate.Base + distance*rate.PerKm))

	return Quote{DistanceKm: distance, Price: price}, nil
}

// Distance is the haversine great-circle distance between two points on a
// spherical earth, in km rounded to one decimal place.
func Distance(a, b model.Coordinate) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLng := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*10) / 10
}

func ValidateCoordinate(c model.Coordinate) error {
	if math.Abs(c.Latitude) > 90 {
		return ErrInvalidLatitude
	}
	if math.Abs(c.Longitude) > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

func toRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
