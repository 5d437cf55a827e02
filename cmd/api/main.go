package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"proxyfacts/pkg/api/proxy"
	"proxyfacts/pkg/core/config"
	"proxyfacts/pkg/core/docfetch"
	"proxyfacts/pkg/core/edgar"
	"proxyfacts/pkg/core/extract"
	"proxyfacts/pkg/core/llm"
	"proxyfacts/pkg/core/ratelimit"
	"proxyfacts/pkg/core/sched14a"
	"proxyfacts/pkg/core/statement"
)

func main() {
	// Load environment variables
	godotenv.Load()

	configPath := "config/proxyfacts.yaml"
	if p := os.Getenv("PROXYFACTS_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// A missing contact email does not stop the server: the handlers
	// surface it as a configuration error on every request instead.
	var handler *proxy.Handler
	if err := cfg.Validate(); err != nil {
		log.Printf("[WARNING] %v", err)
		log.Printf("  Starting anyway; every endpoint will answer 422 until it is configured.")
		handler = proxy.NewHandler(nil, nil, nil, nil)
	} else {
		handler = proxy.NewHandler(buildServices(cfg))
	}

	mux := http.NewServeMux()
	handler.Register(mux)

	fmt.Printf("proxyfacts API listening on %s\n", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, mux))
}

func buildServices(cfg config.Config) (*edgar.Client, *sched14a.Service, *statement.Extractor, *extract.Pipeline) {
	limiter := ratelimit.New(cfg.RateLimit, cfg.RatePeriod())
	client, err := edgar.NewClient(cfg.ContactEmail, limiter)
	if err != nil {
		log.Fatalf("edgar client: %v", err)
	}

	provider := llm.NewProvider(cfg.Provider, cfg.Model)
	repairProvider := llm.NewProvider(cfg.Provider, cfg.RepairModel)
	embedder := llm.NewEmbedder(cfg.EmbeddingProvider, cfg.EmbeddingModel)

	pipeline := extract.NewPipeline(docfetch.NewFetcher(client.FetchURL), provider, repairProvider, embedder)
	pipeline.Window = cfg.ChunkWindow
	pipeline.Overlap = cfg.ChunkOverlap
	pipeline.TopN = cfg.TopN
	pipeline.StepTopN = cfg.StepTopN
	if cfg.ReportingYear > 0 {
		pipeline.ReportingYear = cfg.ReportingYear
	}
	pipeline.Model = cfg.Model
	pipeline.RepairModel = cfg.RepairModel

	return client, sched14a.NewService(client), statement.NewExtractor(client.FetchURL), pipeline
}
