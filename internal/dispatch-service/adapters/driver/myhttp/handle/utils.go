package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"routa/internal/dispatch-service/core/domain/dto"
	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/pricing"
	"routa/internal/dispatch-service/core/services"
)

type errorResponse struct {
	Message string `json:"message"`
}

func JsonError(w http.ResponseWriter, status int, err error) {
	jsonResponse(w, status, errorResponse{Message: err.Error()})
}

func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// outcomeError maps a store rejection to the status the client acts on:
// 409 means "try a different order", 403 means "you can't do that".
func outcomeError(w http.ResponseWriter, outcome model.Outcome, msg string) {
	switch outcome {
	case model.OutcomeInvalidState:
		jsonResponse(w, http.StatusConflict, errorResponse{Message: msg})
	case model.OutcomeUnauthorized:
		jsonResponse(w, http.StatusForbidden, errorResponse{Message: "not authorized"})
	default:
		jsonResponse(w, http.StatusInternalServerError, errorResponse{Message: "server error"})
	}
}

var validationErrs = []error{
	services.ErrEmptyField,
	services.ErrAddressTooLong,
	services.ErrNegativeWeight,
	services.ErrInvalidStatus,
	services.ErrNotDriverStatus,
	pricing.ErrInvalidLatitude,
	pricing.ErrInvalidLongitude,
	pricing.ErrUnknownVehicleClass,
}

func isValidationError(err error) bool {
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func toOrderResponse(m model.Order) dto.OrderResponseDto {
	res := dto.OrderResponseDto{
		OrderID:      m.ID,
		TrackingCode: m.TrackingCode,
		CustomerID:   m.CustomerID,
		DriverID:     m.DriverID,
		Status:       string(m.Status),
		DistanceKm:   m.DistanceKm,
		Price:        m.Price,
		VehicleClass: m.VehicleClass,
		PickupAddr:   m.Pickup.Address,
		DropoffAddr:  m.Dropoff.Address,
		PackageDesc:  m.PackageDesc,
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
	if m.AcceptedAt != nil {
		res.AcceptedAt = m.AcceptedAt.Format(time.RFC3339)
	}
	if m.PickedUpAt != nil {
		res.PickedUpAt = m.PickedUpAt.Format(time.RFC3339)
	}
	if m.DeliveredAt != nil {
		res.DeliveredAt = m.DeliveredAt.Format(time.RFC3339)
	}
	if m.CancelledAt != nil {
		res.CancelledAt = m.CancelledAt.Format(time.RFC3339)
	}
	return res
}

func toOrderResponses(orders []model.Order) []dto.OrderResponseDto {
	res := make([]dto.OrderResponseDto, 0, len(orders))
	for _, m := range orders {
		res = append(res, toOrderResponse(m))
	}
	return res
}
