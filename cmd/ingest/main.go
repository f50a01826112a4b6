package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"smart-triage-be/internal/config"
	"smart-triage-be/internal/repository/knowledgestore"
	"smart-triage-be/internal/repository/unitofwork"
	"smart-triage-be/pkg/database"
	"smart-triage-be/pkg/embedding"
	"smart-triage-be/pkg/embedding/jina"
	"smart-triage-be/pkg/knowledge"

	"github.com/fatih/color"
)

// Offline corpus loader. Reads every reference document from the data
// directory, chunks and embeds it, and persists the chunks per collection.
// Safe to re-run: populated collections are skipped unless -force is set.
func main() {
	force := flag.Bool("force", false, "rebuild collections that already have chunks")
	only := flag.String("only", "", "comma-separated subset of collections to ingest")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	var batchProvider embedding.BatchEmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		batchProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		batchProvider = jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		batchProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	chunkStore := knowledgestore.NewAdapter(uowFactory)
	pipeline := knowledge.NewPipeline(
		knowledge.NewFileExtractor(),
		batchProvider,
		chunkStore,
		knowledge.PipelineConfig{
			ChunkSize:    cfg.Knowledge.ChunkSize,
			ChunkOverlap: cfg.Knowledge.ChunkOverlap,
			BatchSize:    cfg.Knowledge.BatchSize,
		},
		log.Default(),
	)

	collections := cfg.Knowledge.Collections
	if *only != "" {
		collections = strings.Split(*only, ",")
	}

	var sources []knowledge.Source
	for _, c := range collections {
		sources = append(sources, knowledge.FileSource(cfg.Knowledge.DataDir, strings.TrimSpace(c)))
	}

	color.Cyan("🚀 Ingesting %d collections from %s (force=%v)\n", len(sources), cfg.Knowledge.DataDir, *force)

	reports, err := pipeline.IngestAll(context.Background(), sources, *force)

	failed := 0
	for _, src := range sources {
		report, ok := reports[src.Collection]
		if !ok {
			color.Red("[%s] ingestion failed, no chunks stored", src.Collection)
			failed++
			continue
		}
		if report.Skipped {
			color.Yellow("[%s] already populated (%d chunks), skipped", report.Collection, report.StoredChunks)
			continue
		}
		if report.FailedChunks > 0 {
			color.Yellow("[%s] stored %d/%d chunks (%d embedding failures)",
				report.Collection, report.StoredChunks, report.TotalChunks, report.FailedChunks)
			continue
		}
		color.Green("[%s] stored %d chunks from %s", report.Collection, report.StoredChunks, report.Source)
	}

	if err != nil {
		color.Red("\nCompleted with errors: %v", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
	color.Green("\n✅ Ingestion complete")
}
