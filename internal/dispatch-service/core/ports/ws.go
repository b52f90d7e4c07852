package ports

import websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"

// INotificationBus delivers events to live connections. At-most-once per
// connection: a party that is offline at send time never sees the event and
// reconciles by pulling current state.
type INotificationBus interface {
	ToUser(userID string, event websocketdto.Event)
	ToOnlineDrivers(event websocketdto.Event)
	ToOrderSubscribers(orderID string, event websocketdto.Event)
}

// IDriverPresence answers whether a driver currently holds an authenticated
// online connection.
type IDriverPresence interface {
	IsDriverOnline(driverID string) bool
}
