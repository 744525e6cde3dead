package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/greenroomhq/greenroom/internal/infrastructure/configs"
	"github.com/greenroomhq/greenroom/internal/infrastructure/logging"
	"github.com/greenroomhq/greenroom/internal/infrastructure/ratelimiter"
	healthHandler "github.com/greenroomhq/greenroom/internal/presentation/handler/health"
	meetingsHandler "github.com/greenroomhq/greenroom/internal/presentation/handler/meetings"
)

type Application struct {
	config          configs.Config
	meetingsHandler meetingsHandler.Handler
	healthHandler   healthHandler.Handler
	logger          *zap.SugaredLogger
	appLogger       logging.Logger
	ratelimiter     ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	meetingsHandler meetingsHandler.Handler,
	healthHandler healthHandler.Handler,
	logger *zap.SugaredLogger,
	appLogger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:          config,
		meetingsHandler: meetingsHandler,
		healthHandler:   healthHandler,
		logger:          logger,
		appLogger:       appLogger,
		ratelimiter:     ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.loggerMiddleware)
	r.Use(app.prometheusMiddleware)
	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		r.Route("/meetings", func(r chi.Router) {
			r.Post("/", app.meetingsHandler.CreateMeetingHandler)
			r.Post("/{roomId}/join", app.meetingsHandler.JoinHandler)
			r.Get("/{roomId}/waiting-list", app.meetingsHandler.WaitingListHandler)
			r.Post("/{roomId}/requests/{requestId}/admit", app.meetingsHandler.AdmitHandler)
			r.Post("/{roomId}/requests/{requestId}/deny", app.meetingsHandler.DenyHandler)
			r.Post("/{roomId}/clear", app.meetingsHandler.ClearHandler)
			r.Get("/{roomId}/events", app.meetingsHandler.EventsHandler)
		})

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/debug/vars", expvar.Handler())

	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
