// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coldreach/outreach-backend/internal/config"
	"github.com/coldreach/outreach-backend/internal/controller"
	"github.com/coldreach/outreach-backend/internal/db"
	"github.com/coldreach/outreach-backend/internal/handler"
	"github.com/coldreach/outreach-backend/internal/queue"
	"github.com/coldreach/outreach-backend/internal/repository"
)

func main() {
	cfg := config.Load()

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal("failed to apply migrations:", err)
	}

	amqpQueue, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ:", err)
	}
	defer amqpQueue.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	jobRepo := &repository.SendJobRepository{DB: conn}

	campaignController := &controller.CampaignController{
		CampaignRepo: campaignRepo,
		Queue:        amqpQueue,
	}
	jobHandler := &handler.JobHandler{JobRepo: jobRepo}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/campaigns/{id}/activate", campaignController.ActivateCampaign)
	r.Post("/campaigns/{id}/pause", campaignController.PauseCampaign)
	r.Get("/campaigns/{id}/jobs", jobHandler.ListCampaignJobs)

	log.Println("🚀 Server running on", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
