package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/greenroomhq/greenroom/internal/admission"
	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/infrastructure/configs"
	"github.com/greenroomhq/greenroom/internal/infrastructure/env"
	"github.com/greenroomhq/greenroom/internal/infrastructure/events"
	"github.com/greenroomhq/greenroom/internal/infrastructure/logging"
	"github.com/greenroomhq/greenroom/internal/infrastructure/messaging"
	"github.com/greenroomhq/greenroom/internal/infrastructure/profanity"
	"github.com/greenroomhq/greenroom/internal/infrastructure/ratelimiter"
	"github.com/greenroomhq/greenroom/internal/infrastructure/tracing"
	"github.com/greenroomhq/greenroom/internal/infrastructure/ws"
	"github.com/greenroomhq/greenroom/internal/persistence/db"
	"github.com/greenroomhq/greenroom/internal/persistence/repository"
	"github.com/greenroomhq/greenroom/internal/presentation/api"
	"github.com/greenroomhq/greenroom/internal/presentation/handler/health"
	"github.com/greenroomhq/greenroom/internal/presentation/handler/meetings"
	"github.com/greenroomhq/greenroom/internal/provider"
	"github.com/greenroomhq/greenroom/internal/registry"
	"github.com/greenroomhq/greenroom/internal/token"
)

const (
	serviceName = "greenroom-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	appLogger := logging.NewLogger(logging.NewDefaultConfig())
	appLogger.Init()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	daily, err := provider.NewDailyProvider(provider.DailyConfig{
		BaseURL:        cfg.Provider.BaseURL,
		APIKey:         cfg.Provider.APIKey,
		RequestTimeout: cfg.Provider.RequestTimeout,
	})
	if err != nil {
		log.Fatal(err)
	}

	reg := registry.New(daily)
	defer reg.Close()

	issuer := token.NewIssuer(daily)

	roomManager := ws.NewRoomManager()
	wsCore := ws.NewCore(roomManager)
	go wsCore.Run()

	// The broker and the audit store are optional; without them decisions
	// still work, they just aren't recorded anywhere durable.
	var publisher *events.AdmissionPublisher

	rabbitMqURI := env.GetString("RABBITMQ_URI", "")
	if rabbitMqURI != "" {
		rabbitmq, err := messaging.NewRabbitMQ(rabbitMqURI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		log.Println("Starting RabbitMQ connection")

		publisher = events.NewAdmissionPublisher(rabbitmq)

		var auditRepo domain.AdmissionAuditRepository
		if cfg.Audit.Enabled {
			mongoCfg := db.NewMongoDefaultConfig()
			mongoClient, err := db.NewMongoClient(ctx, mongoCfg)
			if err != nil {
				log.Fatal(err)
			}
			defer db.DisconnectMongo(context.Background(), mongoClient)

			auditRepo = repository.NewAdmissionAuditLogRepository(db.GetDatabase(mongoClient, mongoCfg))
			if err := auditRepo.EnsureIndexes(ctx); err != nil {
				logger.Warnw("failed to ensure audit indexes", "error", err)
			}
		}

		consumer := events.NewAdmissionConsumer(rabbitmq, auditRepo)
		go consumer.Listen()
	}

	defaults := domain.DefaultRoomConfig()
	if cfg.Rooms.DefaultTTL > 0 {
		defaults.TTL = cfg.Rooms.DefaultTTL
	}
	if cfg.Rooms.MaxParticipants > 0 {
		defaults.MaxParticipants = cfg.Rooms.MaxParticipants
	}

	var eventPublisher admission.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}
	coordinator := admission.NewCoordinator(reg, issuer, wsCore, eventPublisher, daily)

	if cfg.Rooms.ReapInterval > 0 {
		reg.StartReaper(cfg.Rooms.ReapInterval, func(roomID string, pending int) {
			logger.Infow("room expired", "room_id", roomID, "pending_dropped", pending)
			if publisher != nil {
				if err := publisher.PublishRoomExpired(context.Background(), roomID, pending); err != nil {
					logger.Warnw("failed to publish room expired", "room_id", roomID, "error", err)
				}
			}
		})
	}

	meetingsHandler := meetings.NewHandler(coordinator, roomManager, wsCore, profanity.NewFilter(), defaults)
	healthHandler := health.NewHandler(reg)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, *meetingsHandler, *healthHandler, logger, appLogger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := otelhttp.NewHandler(app.Mount(), serviceName)
	logger.Fatal(app.Run(mux))
}
