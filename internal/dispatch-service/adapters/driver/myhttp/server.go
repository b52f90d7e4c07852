package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"routa/internal/config"
	"routa/internal/mylogger"

	"routa/internal/dispatch-service/adapters/driven/bm"
	"routa/internal/dispatch-service/adapters/driven/db"
	"routa/internal/dispatch-service/adapters/driven/notification"
	"routa/internal/dispatch-service/adapters/driver/myhttp/handle"
	"routa/internal/dispatch-service/adapters/driver/myhttp/middleware"
	"routa/internal/dispatch-service/adapters/driver/myhttp/ws"
	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/ports"
	"routa/internal/dispatch-service/core/pricing"
	"routa/internal/dispatch-service/core/services"
	"routa/internal/dispatch-service/jobs"
)

const WaitTime = 10

type Server struct {
	mux     *http.ServeMux
	cfg     *config.Config
	srv     *http.Server
	mylog   mylogger.Logger
	db      *db.DB
	mb      ports.IOrderEventsBroker
	sweeper *jobs.StaleOrderSweeper
	ctx     context.Context
	appCtx  context.Context
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
		mux:    http.NewServeMux(),
	}
}

// Run wires the adapters together and starts listening. It returns when the
// server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	database, err := db.New(s.ctx, s.cfg.DB, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = database
	mylog.Info("Successful database connection")

	mb, err := bm.New(s.appCtx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	if err := s.Configure(); err != nil {
		return err
	}

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.DispatchServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.DispatchServicePort)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	if s.sweeper != nil {
		s.sweeper.Stop()
	}

	s.wg.Wait()

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close message broker", err)
		}
	}

	if s.db != nil {
		s.db.Close()
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure builds the adapter graph: repositories, the quoter, the websocket
// hub, the broker relay, services, handlers and routes.
func (s *Server) Configure() error {
	// Repositories
	ordersRepo := db.NewOrdersRepo(s.db)
	usersRepo := db.NewUsersRepo(s.db)
	driversRepo := db.NewDriversRepo(s.db)

	quoter := pricing.NewQuoter(s.cfg.Pricing)

	// Websocket hub doubles as the driver presence registry.
	hub := ws.NewHub(s.mylog)
	eventHandler := ws.NewEventHandler(s.cfg.App.JwtSecret)

	// Relay broker envelopes into this instance's hub.
	relay := notification.New(s.appCtx, &s.wg, s.mylog, hub, s.mb)
	if err := relay.Run(); err != nil {
		return fmt.Errorf("failed to start notification relay: %w", err)
	}

	// Services
	pendingTTL := time.Duration(s.cfg.Sweeper.PendingTTLMinutes) * time.Minute
	dispatchService := services.NewDispatchService(
		s.mylog, ordersRepo, usersRepo, driversRepo, s.mb, hub, quoter, pendingTTL,
	)
	authService := services.NewAuthService(s.mylog, usersRepo, driversRepo, quoter, s.cfg.App.JwtSecret)

	s.sweeper = jobs.NewStaleOrderSweeper(dispatchService, s.cfg.Sweeper.CronSpec, s.mylog)
	if err := s.sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start sweeper: %w", err)
	}

	// Handlers
	ordersHandler := handle.NewOrdersHandler(dispatchService, s.mylog)
	authHandler := handle.NewAuthHandler(authService, s.mylog)
	healthHandler := handle.NewHealthHandler(s.db, s.mb)

	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	// Routes
	s.mux.Handle("POST /auth/register", authHandler.Register())
	s.mux.Handle("POST /auth/login", authHandler.Login())

	s.mux.Handle("POST /orders", authMiddleware.Wrap(model.RoleCustomer, ordersHandler.CreateOrder()))
	s.mux.Handle("GET /orders/my-orders", authMiddleware.Wrap(model.RoleCustomer, ordersHandler.GetMyOrders()))
	s.mux.Handle("GET /orders/pending", authMiddleware.Wrap(model.RoleDriver, ordersHandler.GetPendingOrders()))
	s.mux.Handle("GET /orders/driver-orders", authMiddleware.Wrap(model.RoleDriver, ordersHandler.GetDriverOrders()))
	s.mux.Handle("GET /orders/{order_id}", authMiddleware.Wrap("", ordersHandler.GetOrder()))
	s.mux.Handle("PATCH /orders/{order_id}/accept", authMiddleware.Wrap(model.RoleDriver, ordersHandler.AcceptOrder()))
	s.mux.Handle("PATCH /orders/{order_id}/status", authMiddleware.Wrap(model.RoleDriver, ordersHandler.AdvanceStatus()))
	s.mux.Handle("PATCH /orders/{order_id}/cancel", authMiddleware.Wrap(model.RoleCustomer, ordersHandler.CancelOrder()))

	s.mux.Handle("GET /health", healthHandler.Health())

	// websocket route, auth happens in-band on the first frame
	s.mux.Handle("GET /ws", hub.WsHandler(eventHandler))

	return nil
}
