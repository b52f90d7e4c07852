package handle

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"routa/internal/mylogger"

	"routa/internal/dispatch-service/core/domain/dto"
	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/myerrors"
	"routa/internal/dispatch-service/core/ports"
)

type OrdersHandler struct {
	dispatchService ports.IDispatchService
	log             mylogger.Logger
}

func NewOrdersHandler(ds ports.IDispatchService, log mylogger.Logger) *OrdersHandler {
	return &OrdersHandler{
		dispatchService: ds,
		log:             log,
	}
}

func (oh *OrdersHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := r.Header.Get("X-UserId")

		req := dto.CreateOrderRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		order, err := oh.dispatchService.CreateOrder(r.Context(), customerID, req)
		if err != nil {
			if isValidationError(err) {
				JsonError(w, http.StatusBadRequest, err)
				return
			}
			JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			return
		}

		jsonResponse(w, http.StatusCreated, toOrderResponse(order))
	}
}

func (oh *OrdersHandler) AcceptOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := r.PathValue("order_id")
		driverID := r.Header.Get("X-UserId")

		order, outcome, err := oh.dispatchService.AcceptOrder(r.Context(), orderID, driverID)
		if err != nil {
			if errors.Is(err, myerrors.ErrNotFound) {
				JsonError(w, http.StatusNotFound, fmt.Errorf("order not found"))
				return
			}
			JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			return
		}
		if outcome != model.OutcomeApplied {
			outcomeError(w, outcome, "order is no longer available")
			return
		}

		jsonResponse(w, http.StatusOK, toOrderResponse(order))
	}
}

func (oh *OrdersHandler) AdvanceStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := r.PathValue("order_id")
		driverID := r.Header.Get("X-UserId")

		req := dto.AdvanceStatusRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if req.Status == nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("status is required"))
			return
		}

		order, outcome, err := oh.dispatchService.AdvanceStatus(r.Context(), orderID, driverID, model.Status(*req.Status))
		if err != nil {
			if errors.Is(err, myerrors.ErrNotFound) {
				JsonError(w, http.StatusNotFound, fmt.Errorf("order not found"))
				return
			}
			if isValidationError(err) {
				JsonError(w, http.StatusBadRequest, err)
				return
			}
			JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			return
		}
		if outcome != model.OutcomeApplied {
			outcomeError(w, outcome, "order is not in the right state for that transition")
			return
		}

		jsonResponse(w, http.StatusOK, toOrderResponse(order))
	}
}

func (oh *OrdersHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := r.PathValue("order_id")
		customerID := r.Header.Get("X-UserId")

		order, outcome, err := oh.dispatchService.CancelOrder(r.Context(), orderID, customerID)
		if err != nil {
			if errors.Is(err, myerrors.ErrNotFound) {
				JsonError(w, http.StatusNotFound, fmt.Errorf("order not found"))
				return
			}
			JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			return
		}
		if outcome != model.OutcomeApplied {
			outcomeError(w, outcome, "cannot cancel order at this stage")
			return
		}

		jsonResponse(w, http.StatusOK, toOrderResponse(order))
	}
}

func (oh *OrdersHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := r.PathValue("order_id")

		order, err := oh.dispatchService.GetOrder(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, myerrors.ErrNotFound) {
				JsonError(w, http.StatusNotFound, fmt.Errorf("order not found"))
				return
			}
			JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			return
		}

		jsonResponse(w, http.StatusOK, toOrderResponse(order))
	}
}

func (oh *OrdersHandler) GetMyOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := r.Header.Get("X-UserId")

		orders, err := oh.dispatchService.GetMyOrders(r.Context(), customerID)
		if err != nil {
			JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			return
		}
		jsonResponse(w, http.StatusOK, toOrderResponses(orders))
	}
}

func (oh *OrdersHandler) GetPendingOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := oh.dispatchService.GetPendingOrders(r.Context())
		if err != nil {
			JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			return
		}
		jsonResponse(w, http.StatusOK, toOrderResponses(orders))
	}
}

func (oh *OrdersHandler) GetDriverOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID := r.Header.Get("X-UserId")

		orders, err := oh.dispatchService.GetDriverOrders(r.Context(), driverID)
		if err != nil {
			JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			return
		}
		jsonResponse(w, http.StatusOK, toOrderResponses(orders))
	}
}
