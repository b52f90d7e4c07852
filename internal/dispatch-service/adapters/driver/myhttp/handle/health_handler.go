package handle

import (
	"context"
	"net/http"

	"routa/internal/dispatch-service/core/ports"
)

type dbPinger interface {
	IsAlive(ctx context.Context) error
}

type HealthHandler struct {
	db     dbPinger
	broker ports.IOrderEventsBroker
}

func NewHealthHandler(db dbPinger, broker ports.IOrderEventsBroker) *HealthHandler {
	return &HealthHandler{
		db:     db,
		broker: broker,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Broker   string `json:"broker"`
}

func (hh *HealthHandler) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := healthResponse{Status: "ok", Database: "up", Broker: "up"}
		status := http.StatusOK

		if err := hh.db.IsAlive(r.Context()); err != nil {
			res.Status = "degraded"
			res.Database = "down"
			status = http.StatusServiceUnavailable
		}
		if !hh.broker.IsAlive() {
			res.Status = "degraded"
			res.Broker = "down"
			status = http.StatusServiceUnavailable
		}

		jsonResponse(w, status, res)
	}
}
