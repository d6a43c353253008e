package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/Ashik-Muhammed/Travelita-sub002/internal/adapters/mongo"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/adapters/rabbit"
	redisadapter "github.com/Ashik-Muhammed/Travelita-sub002/internal/adapters/redis"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/booking"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/catalog"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/config"
	httphandler "github.com/Ashik-Muhammed/Travelita-sub002/internal/http"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/idempotency"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/rateLimit"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/reconcile"
)

// The partner door is deployed independently of the public API but writes
// to the same logical collections, through the same ingestion service.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "travelita-partner-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDatabase)

	packageRepo := mongoadapter.NewPackageRepository(db, logger)
	bookingRepo := mongoadapter.NewBookingRepository(db, logger)
	accounts := mongoadapter.NewAccountDirectory(db, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), cfg.IdempotencyTTL)
	rl := rateLimit.NewRateLimiter(redisCache)

	var events booking.EventPublisher
	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		pub, err := rabbit.NewPublisher(rabbitConn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		events = pub
	}

	bookingSvc := booking.NewService(bookingRepo, packageRepo, idemp, events, logger)
	catalogSvc := catalog.NewService(packageRepo, redisCache, nil, logger)
	engine := reconcile.NewEngine(packageRepo, reconcile.NewResolver(accounts, logger), logger, cfg.ReconcileConcurrency)

	handlers := httphandler.NewHandlers(bookingSvc, catalogSvc, engine, logger)
	r := httphandler.SetupPartnerRouter(handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.PartnerHTTPAddr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown partner server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
