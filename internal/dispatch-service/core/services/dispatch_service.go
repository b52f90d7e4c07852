package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"routa/internal/mylogger"

	"routa/internal/dispatch-service/core/domain/dto"
	"routa/internal/dispatch-service/core/domain/model"
	websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"
	"routa/internal/dispatch-service/core/myerrors"
	"routa/internal/dispatch-service/core/ports"
	"routa/internal/dispatch-service/core/pricing"

	"github.com/google/uuid"
)

const repoTimeout = time.Second * 15

// DispatchService orchestrates the order lifecycle: quote at creation,
// fan-out to online drivers, claim resolution, forward status progression and
// cancellation. Notifications go through the broker and are never fatal to
// the transition that triggered them.
type DispatchService struct {
	mylog       mylogger.Logger
	ordersRepo  ports.IOrdersRepo
	usersRepo   ports.IUsersRepo
	driversRepo ports.IDriversRepo
	broker      ports.IOrderEventsBroker
	presence    ports.IDriverPresence
	quoter      *pricing.Quoter
	pendingTTL  time.Duration
}

func NewDispatchService(
	log mylogger.Logger,
	ordersRepo ports.IOrdersRepo,
	usersRepo ports.IUsersRepo,
	driversRepo ports.IDriversRepo,
	broker ports.IOrderEventsBroker,
	presence ports.IDriverPresence,
	quoter *pricing.Quoter,
	pendingTTL time.Duration,
) ports.IDispatchService {
	return &DispatchService{
		mylog:       log,
		ordersRepo:  ordersRepo,
		usersRepo:   usersRepo,
		driversRepo: driversRepo,
		broker:      broker,
		presence:    presence,
		quoter:      quoter,
		pendingTTL:  pendingTTL,
	}
}

func (ds *DispatchService) CreateOrder(ctx context.Context, customerID string, req dto.CreateOrderRequestDto) (model.Order, error) {
	log := ds.mylog.Action("CreateOrder")

	if customerID == "" {
		return model.Order{}, fmt.Errorf("invalid customer id: %w", ErrEmptyField)
	}
	if err := validateCreateOrder(req, ds.quoter); err != nil {
		return model.Order{}, err
	}

	class := strings.ToUpper(*req.VehicleClass)
	pickup := model.Coordinate{Latitude: *req.PickupLat, Longitude: *req.PickupLng}
	dropoff := model.Coordinate{Latitude: *req.DropoffLat, Longitude: *req.DropoffLng}

	quote, err := ds.quoter.Quote(class, pickup, dropoff)
	if err != nil {
		return model.Order{}, err
	}

	order := model.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Pickup: model.Stop{
			Address: *req.PickupAddress,
			Coord:   pickup,
			Contact: *req.PickupContact,
		},
		Dropoff: model.Stop{
			Address: *req.DropoffAddress,
			Coord:   dropoff,
			Contact: *req.DropoffContact,
		},
		PackageDesc:   *req.PackageDesc,
		PackageWeight: req.PackageWeight,
		VehicleClass:  class,
		DistanceKm:    quote.DistanceKm,
		Price:         quote.Price,
		Status:        model.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if req.Instructions != nil {
		order.Instructions = *req.Instructions
	}

	// The daily sequence is read outside the insert, so two concurrent creates
	// can pick the same number and the unique index rejects the loser. A
	// conflict means another create got that number, so recounting and
	// retrying makes progress. Broadcast happens strictly after the durable
	// write.
	for {
		rctx, cancel := context.WithTimeout(ctx, repoTimeout)
		count, err := ds.ordersRepo.CountCreatedToday(rctx)
		cancel()
		if err != nil {
			log.Error("cannot count today's orders", err)
			return model.Order{}, err
		}
		order.TrackingCode = fmt.Sprintf("TRK-%s-%03d", time.Now().Format("20060102"), count+1)

		rctx, cancel = context.WithTimeout(ctx, repoTimeout)
		err = ds.ordersRepo.Create(rctx, order)
		cancel()
		if err == nil {
			break
		}
		if errors.Is(err, myerrors.ErrTrackingCodeTaken) && ctx.Err() == nil {
			continue
		}
		log.Error("cannot persist order", err)
		return model.Order{}, err
	}

	log.Info("order created",
		"order_id", order.ID,
		"tracking_code", order.TrackingCode,
		"distance_km", quote.DistanceKm,
		"price", quote.Price,
	)

	ds.notifyOnlineDrivers(ctx, websocketdto.EventOrderNew, websocketdto.NewOrderDto{
		OrderID:      order.ID,
		TrackingCode: order.TrackingCode,
		PickupAddr:   order.Pickup.Address,
		DropoffAddr:  order.Dropoff.Address,
		DistanceKm:   order.DistanceKm,
		Price:        order.Price,
		VehicleClass: order.VehicleClass,
		PackageDesc:  order.PackageDesc,
	})

	return order, nil
}

func (ds *DispatchService) AcceptOrder(ctx context.Context, orderID, driverID string) (model.Order, model.Outcome, error) {
	log := ds.mylog.Action("AcceptOrder").With("order_id", orderID, "driver_id", driverID)

	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	driver, err := ds.driversRepo.FindByUserID(rctx, driverID)
	if err != nil {
		log.Warn("no driver profile", "err", err)
		return model.Order{}, model.OutcomeUnauthorized, nil
	}
	if !driver.IsApproved {
		log.Warn("driver not approved")
		return model.Order{}, model.OutcomeUnauthorized, nil
	}
	if !ds.presence.IsDriverOnline(driverID) {
		log.Warn("driver not online")
		return model.Order{}, model.OutcomeUnauthorized, nil
	}

	rctx, cancel = context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	order, outcome, err := ds.ordersRepo.Claim(rctx, orderID, driverID)
	if err != nil {
		log.Error("claim failed", err)
		return model.Order{}, model.OutcomeNone, err
	}
	if outcome != model.OutcomeApplied {
		// Definitive rejection: someone else already took it.
		log.Info("claim rejected", "outcome", outcome.String())
		return model.Order{}, outcome, nil
	}

	log.Info("order claimed", "tracking_code", order.TrackingCode)

	info := websocketdto.DriverInfo{
		DriverID:        driverID,
		VehicleClass:    driver.VehicleClass,
		TotalDeliveries: driver.TotalDeliveries,
	}
	rctx, cancel = context.WithTimeout(ctx, repoTimeout)
	defer cancel()
	if user, err := ds.usersRepo.FindByID(rctx, driverID); err == nil {
		info.Name = user.Name
		info.Phone = user.Phone
	} else {
		log.Warn("cannot load driver contact details", "err", err)
	}

	ds.notifyUser(ctx, order.CustomerID, websocketdto.EventOrderAccepted, websocketdto.OrderAcceptedDto{
		OrderID: order.ID,
		Driver:  info,
	})
	// Withdraw the offer from every other driver's screen. Without this the
	// losers keep seeing an offer they can no longer accept.
	ds.notifyOnlineDrivers(ctx, websocketdto.EventOrderTaken, websocketdto.OrderTakenDto{OrderID: order.ID})

	return order, model.OutcomeApplied, nil
}

func (ds *DispatchService) AdvanceStatus(ctx context.Context, orderID, driverID string, newStatus model.Status) (model.Order, model.Outcome, error) {
	log := ds.mylog.Action("AdvanceStatus").With("order_id", orderID, "driver_id", driverID, "status", string(newStatus))

	target, err := validateDriverStatus(string(newStatus))
	if err != nil {
		return model.Order{}, model.OutcomeNone, err
	}

	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	order, outcome, err := ds.ordersRepo.AdvanceStatus(rctx, orderID, driverID, target)
	if err != nil {
		log.Error("advance failed", err)
		return model.Order{}, model.OutcomeNone, err
	}
	if outcome != model.OutcomeApplied {
		log.Info("advance rejected", "outcome", outcome.String())
		return model.Order{}, outcome, nil
	}

	log.Info("order status advanced")

	payload := websocketdto.OrderStatusDto{OrderID: order.ID, Status: string(order.Status)}
	// The customer may not have the order page open, anyone watching the
	// order must see it too. Both sends on purpose.
	ds.notifyUser(ctx, order.CustomerID, websocketdto.EventOrderStatus, payload)
	ds.notifyOrderSubscribers(ctx, order.ID, websocketdto.EventOrderStatus, payload)

	return order, model.OutcomeApplied, nil
}

func (ds *DispatchService) CancelOrder(ctx context.Context, orderID, customerID string) (model.Order, model.Outcome, error) {
	log := ds.mylog.Action("CancelOrder").With("order_id", orderID, "customer_id", customerID)

	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	order, outcome, err := ds.ordersRepo.Cancel(rctx, orderID, customerID)
	if err != nil {
		log.Error("cancel failed", err)
		return model.Order{}, model.OutcomeNone, err
	}
	if outcome != model.OutcomeApplied {
		log.Info("cancel rejected", "outcome", outcome.String())
		return model.Order{}, outcome, nil
	}

	log.Info("order cancelled")

	if order.DriverID != "" {
		ds.notifyUser(ctx, order.DriverID, websocketdto.EventOrderCancelled, websocketdto.OrderCancelledDto{OrderID: order.ID})
	}
	ds.notifyOrderSubscribers(ctx, order.ID, websocketdto.EventOrderCancelled, websocketdto.OrderCancelledDto{OrderID: order.ID})

	return order, model.OutcomeApplied, nil
}

func (ds *DispatchService) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()
	return ds.ordersRepo.FindByID(rctx, orderID)
}

func (ds *DispatchService) GetMyOrders(ctx context.Context, customerID string) ([]model.Order, error) {
	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()
	return ds.ordersRepo.ListByCustomer(rctx, customerID)
}

func (ds *DispatchService) GetPendingOrders(ctx context.Context) ([]model.Order, error) {
	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()
	return ds.ordersRepo.ListPending(rctx)
}

func (ds *DispatchService) GetDriverOrders(ctx context.Context, driverID string) ([]model.Order, error) {
	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()
	return ds.ordersRepo.ListByDriver(rctx, driverID)
}

// SweepStalePending cancels PENDING orders nobody claimed within the TTL.
// Customers that are offline reconcile through the pull endpoints, watchers
// get a push.
func (ds *DispatchService) SweepStalePending(ctx context.Context) error {
	log := ds.mylog.Action("SweepStalePending")

	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	ids, err := ds.ordersRepo.CancelStalePending(rctx, ds.pendingTTL)
	if err != nil {
		log.Error("cannot cancel stale orders", err)
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	log.Info("cancelled stale pending orders", "count", len(ids))
	for _, id := range ids {
		ds.notifyOrderSubscribers(ctx, id, websocketdto.EventOrderCancelled, websocketdto.OrderCancelledDto{OrderID: id})
	}
	return nil
}

func (ds *DispatchService) notifyUser(ctx context.Context, userID, eventType string, payload any) {
	event, err := marshalEvent(eventType, payload)
	if err != nil {
		ds.mylog.Error("cannot marshal event", err, "type", eventType)
		return
	}
	if err := ds.broker.PublishToUser(ctx, userID, event); err != nil {
		ds.mylog.Error("notification publish failed", err, "type", eventType, "user_id", userID)
	}
}

func (ds *DispatchService) notifyOnlineDrivers(ctx context.Context, eventType string, payload any) {
	event, err := marshalEvent(eventType, payload)
	if err != nil {
		ds.mylog.Error("cannot marshal event", err, "type", eventType)
		return
	}
	if err := ds.broker.PublishToOnlineDrivers(ctx, event); err != nil {
		ds.mylog.Error("notification publish failed", err, "type", eventType)
	}
}

func (ds *DispatchService) notifyOrderSubscribers(ctx context.Context, orderID, eventType string, payload any) {
	event, err := marshalEvent(eventType, payload)
	if err != nil {
		ds.mylog.Error("cannot marshal event", err, "type", eventType)
		return
	}
	if err := ds.broker.PublishToOrderSubscribers(ctx, orderID, event); err != nil {
		ds.mylog.Error("notification publish failed", err, "type", eventType, "order_id", orderID)
	}
}

func marshalEvent(eventType string, payload any) (websocketdto.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return websocketdto.Event{}, err
	}
	return websocketdto.Event{Type: eventType, Data: data}, nil
}
