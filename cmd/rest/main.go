package main

import (
	"context"
	"log"

	"smart-triage-be/internal/bootstrap"
	"smart-triage-be/internal/config"
	"smart-triage-be/internal/server"
	"smart-triage-be/internal/tracer"
	"smart-triage-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Ingestion Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	if container.AuditService != nil {
		go func() {
			log.Println("Background: Starting Audit Service...")
			if err := container.AuditService.Start(); err != nil {
				log.Printf("Background Audit Error: %v", err)
			}
		}()
	}

	// Warm the knowledge base without blocking startup. Collections that
	// are already populated are skipped by the pipeline.
	for _, collection := range cfg.Knowledge.Collections {
		if err := container.PublisherService.EnqueueIngest(collection, false); err != nil {
			log.Printf("Failed to enqueue ingest for %s: %v", collection, err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
