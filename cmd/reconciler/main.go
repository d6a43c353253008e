package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/Ashik-Muhammed/Travelita-sub002/internal/adapters/mongo"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/adapters/rabbit"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/config"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/reconcile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "travelita-reconciler")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDatabase)

	packageRepo := mongoadapter.NewPackageRepository(db, logger)
	accounts := mongoadapter.NewAccountDirectory(db, logger)
	resolver := reconcile.NewResolver(accounts, logger)
	engine := reconcile.NewEngine(packageRepo, resolver, logger, cfg.ReconcileConcurrency)

	var (
		pub      *rabbit.Publisher
		consumer *rabbit.Consumer
	)
	if cfg.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer conn.Close()
		pub, err = rabbit.NewPublisher(conn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		consumer, err = rabbit.NewConsumer(conn, "reconciler.q", rabbit.KeyReconcileRequested)
		if err != nil {
			log.Fatalf("failed to create consumer: %v", err)
		}
	}

	worker := NewWorker(engine, pub, logger)

	if os.Getenv("RUN_ONCE") == "true" {
		worker.RunOnce(context.Background())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.Run(ctx, cfg.ReconcileInterval)
	if consumer != nil {
		go worker.ConsumeTriggers(ctx, consumer)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown reconciler")
}

// Worker runs reconciliation passes on a schedule and on demand. One pass
// at a time: on-demand triggers arriving mid-pass wait for the next tick of
// the request channel.
type Worker struct {
	engine *reconcile.Engine
	pub    *rabbit.Publisher
	logger observability.Logger
}

func NewWorker(engine *reconcile.Engine, pub *rabbit.Publisher, logger observability.Logger) *Worker {
	return &Worker{engine: engine, pub: pub, logger: logger}
}

func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) {
	report, err := w.engine.Run(ctx)
	if err != nil {
		w.logger.WithError(err).Error("reconciliation pass aborted")
		return
	}
	if w.pub != nil {
		if err := w.pub.Publish(ctx, rabbit.KeyReconcileCompleted, report); err != nil {
			w.logger.WithError(err).Warn("reconcile.completed publish failed")
		}
	}
}

// ConsumeTriggers runs a pass whenever an operator publishes
// reconcile.requested.
func (w *Worker) ConsumeTriggers(ctx context.Context, consumer *rabbit.Consumer) {
	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		w.logger.WithError(err).Error("failed to consume reconcile triggers")
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.logger.WithField("message_id", d.MessageId).Info("reconciliation requested")
			w.RunOnce(ctx)
			d.Ack(false)
		}
	}
}
