// cmd/dispatcher/main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coldreach/outreach-backend/internal/config"
	"github.com/coldreach/outreach-backend/internal/db"
	"github.com/coldreach/outreach-backend/internal/locker"
	"github.com/coldreach/outreach-backend/internal/mailer"
	"github.com/coldreach/outreach-backend/internal/model"
	"github.com/coldreach/outreach-backend/internal/queue"
	"github.com/coldreach/outreach-backend/internal/repository"
	"github.com/coldreach/outreach-backend/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal("failed to apply migrations:", err)
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	contactRepo := &repository.ContactRepository{DB: conn}
	senderRepo := &repository.SenderRepository{DB: conn}
	sequenceRepo := &repository.SequenceRepository{DB: conn}
	jobRepo := &repository.SendJobRepository{DB: conn}
	quotaRepo := &repository.QuotaRepository{DB: conn}

	expander := &service.Expander{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		SenderRepo:   senderRepo,
		SequenceRepo: sequenceRepo,
		Picker:       &service.RoundRobinPicker{},
		Footer:       cfg.Footer,
	}

	dispatcher := &service.Dispatcher{
		JobRepo:      jobRepo,
		SenderRepo:   senderRepo,
		ContactRepo:  contactRepo,
		SequenceRepo: sequenceRepo,
		QuotaRepo:    quotaRepo,
		Mailer:       mailer.NewProviderClient(cfg.ProviderURL),
		Credentials:  mailer.StoredCredentialResolver{},
		Config:       cfg.Dispatch,
		Footer:       cfg.Footer,
	}

	amqpQueue, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer amqpQueue.Close()

	// Activation events arrive from the API. Precondition failures are
	// dropped by the handler; only transient errors nack for requeue.
	err = amqpQueue.Subscribe(queue.ActivationQueueName, service.ActivationHandler(expander))
	if err != nil {
		log.Fatal("Failed to subscribe to activation events:", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	lock := locker.NewCycleLock(rdb, "dispatch:cycle", 2*cfg.Dispatch.Interval)

	log.Println("🚀 Dispatcher running, cycle every", cfg.Dispatch.Interval)

	ticker := time.NewTicker(cfg.Dispatch.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("dispatcher shutting down")
			return
		case <-ticker.C:
			runCycle(ctx, dispatcher, lock)
		}
	}
}

func runCycle(ctx context.Context, dispatcher *service.Dispatcher, lock *locker.CycleLock) {
	ok, err := lock.Acquire(ctx)
	if err != nil {
		log.Println("⚠️ cycle lock unavailable:", err)
		return
	}
	if !ok {
		log.Println("cycle skipped: another dispatcher holds the lock")
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			log.Println("⚠️ failed to release cycle lock:", err)
		}
	}()

	results, err := dispatcher.RunCycle(ctx)
	if err != nil {
		log.Println("⚠️ dispatch cycle failed:", err)
		return
	}

	sent, other := 0, 0
	for _, res := range results {
		if res.Status == model.JobStatusSent {
			sent++
		} else {
			other++
			log.Printf("job %s: %s %s", res.JobID, res.Status, res.Message)
		}
	}
	if len(results) > 0 {
		log.Printf("cycle complete: %d sent, %d deferred/failed/skipped", sent, other)
	}
}
