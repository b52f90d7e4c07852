package services

import (
	"errors"
	"fmt"
	"strings"

	"routa/internal/dispatch-service/core/domain/dto"
	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/pricing"
)

const MaxAddressLen = 255

var (
	ErrEmptyField      = errors.New("field is empty")
	ErrAddressTooLong  = errors.New("maximum 255 characters allowed")
	ErrNegativeWeight  = errors.New("weight must be positive")
	ErrInvalidStatus   = errors.New("unknown status")
	ErrNotDriverStatus = errors.New("status is not a driver transition")
)

func validateCreateOrder(req dto.CreateOrderRequestDto, quoter *pricing.Quoter) error {
	if err := validateStop(req.PickupAddress, req.PickupLat, req.PickupLng, req.PickupContact); err != nil {
		return fmt.Errorf("invalid pickup: %w", err)
	}
	if err := validateStop(req.DropoffAddress, req.DropoffLat, req.DropoffLng, req.DropoffContact); err != nil {
		return fmt.Errorf("invalid dropoff: %w", err)
	}
	if req.PackageDesc == nil || *req.PackageDesc == "" {
		return fmt.Errorf("invalid package description: %w", ErrEmptyField)
	}
	if req.PackageWeight != nil && *req.PackageWeight <= 0 {
		return fmt.Errorf("invalid package weight: %w", ErrNegativeWeight)
	}
	if err := validateVehicleClass(req.VehicleClass, quoter); err != nil {
		return fmt.Errorf("invalid vehicle class: %w", err)
	}
	return nil
}

func validateStop(addr *string, lat, lng *float64, contact *string) error {
	if addr == nil || *addr == "" || contact == nil || *contact == "" {
		return ErrEmptyField
	}
	if len(*addr) > MaxAddressLen {
		return ErrAddressTooLong
	}
	if lat == nil || lng == nil {
		return ErrEmptyField
	}
	return pricing.ValidateCoordinate(model.Coordinate{Latitude: *lat, Longitude: *lng})
}

func validateVehicleClass(class *string, quoter *pricing.Quoter) error {
	if class == nil || *class == "" {
		return ErrEmptyField
	}
	if !quoter.HasClass(strings.ToUpper(*class)) {
		return fmt.Errorf("%w, allowed classes are: %v", pricing.ErrUnknownVehicleClass, quoter.VehicleClasses())
	}
	return nil
}

// validateDriverStatus parses the target of an AdvanceStatus call. Drivers
// may only request the forward delivery states, never CANCELLED or PENDING.
func validateDriverStatus(s string) (model.Status, error) {
	status := model.Status(strings.ToUpper(s))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
	switch status {
	case model.StatusPickedUp, model.StatusInTransit, model.StatusDelivered:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotDriverStatus, s)
	}
}
