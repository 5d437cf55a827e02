package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"proxyfacts/pkg/core/config"
	"proxyfacts/pkg/core/docfetch"
	"proxyfacts/pkg/core/edgar"
	"proxyfacts/pkg/core/extract"
	"proxyfacts/pkg/core/llm"
	"proxyfacts/pkg/core/ratelimit"
	"proxyfacts/pkg/core/sched14a"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		tickersFlag = flag.String("tickers", "", "comma-separated tickers, e.g. CMCSA,AAPL")
		startYear   = flag.Int("start", 2019, "first filing year, inclusive")
		endYear     = flag.Int("end", 2020, "last filing year, inclusive")
		runExtract  = flag.Bool("extract", false, "run lite compensation extraction per discovered filing")
		configPath  = flag.String("config", "config/proxyfacts.yaml", "config file path")
	)
	flag.Parse()

	if *tickersFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: pipeline -tickers CMCSA,AAPL [-start 2019 -end 2020] [-extract]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	limiter := ratelimit.New(cfg.RateLimit, cfg.RatePeriod())
	client, err := edgar.NewClient(cfg.ContactEmail, limiter)
	if err != nil {
		log.Fatalf("edgar client: %v", err)
	}

	tickers := strings.Split(*tickersFlag, ",")
	ctx := context.Background()

	fmt.Printf("🔎 Discovering proxy statements for %d tickers, %d-%d...\n", len(tickers), *startYear, *endYear)
	rows, covered, err := sched14a.NewService(client).Discover(ctx, tickers, *startYear, *endYear)
	if err != nil {
		log.Fatalf("discovery: %v", err)
	}

	for _, row := range rows {
		fmt.Printf("%-6s %-10s %-12s %s\n", row.Ticker, row.Form, row.FilingDate.Format("2006-01-02"), row.DocURL)
	}

	alerts := sched14a.CoverageAudit(rows, covered, *startYear, *endYear)
	for _, alert := range alerts {
		fmt.Printf("⚠️  %s %d: %s (count=%d)\n", alert.Ticker, alert.Year, alert.Kind, alert.Count)
	}
	if len(alerts) == 0 {
		fmt.Println("✅ Coverage: exactly one proxy filing per company-year.")
	}

	if !*runExtract {
		return
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

	for _, row := range rows {
		result, err := pipeline.ExtractLite(ctx, row.DocURL)
		if err != nil {
			// One filing's failure never stops the rest of the batch.
			log.Printf("extract: %s %d: %v", row.Ticker, row.FilingDate.Year(), err)
			continue
		}
		if result.Structured() {
			fmt.Printf("%s %d:\n", row.Ticker, row.FilingDate.Year())
			for field, value := range result.Facts {
				fmt.Printf("  %s: %s\n", field, value)
			}
		} else {
			fmt.Printf("%s %d (unstructured after %d attempts): %s\n", row.Ticker, row.FilingDate.Year(), result.Attempts, result.Raw)
		}
	}
}
