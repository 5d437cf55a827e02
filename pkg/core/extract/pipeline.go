package extract

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"proxyfacts/pkg/core/docfetch"
	"proxyfacts/pkg/core/llm"
	"proxyfacts/pkg/core/utils"
)

const maxRepairAttempts = 5

var digitPattern = regexp.MustCompile(`\d`)

// Pipeline drives the chunk-embed-rank extraction over proxy statement
// documents. The provider answers the extraction prompts; the repair
// provider is the cheaper model used for reformat rungs and the raw
// fallback.
type Pipeline struct {
	fetcher        *docfetch.Fetcher
	provider       llm.Provider
	repairProvider llm.Provider
	embedder       llm.Embedder

	// Window and Overlap size the chunker; TopN and StepTopN bound the
	// ranked context for the single-shot and stepped full modes.
	Window   int
	Overlap  int
	TopN     int
	StepTopN int

	// ReportingYear marks the current reporting year: tables mentioning
	// it are comparison-year noise and are dropped before prompting.
	ReportingYear int

	Model       string
	RepairModel string

	newID func() string

	// Compiled form of the ReportingYear filter, rebuilt only when the
	// year changes.
	yearPattern    *regexp.Regexp
	yearPatternFor int
}

func NewPipeline(fetcher *docfetch.Fetcher, provider, repairProvider llm.Provider, embedder llm.Embedder) *Pipeline {
	return &Pipeline{
		fetcher:        fetcher,
		provider:       provider,
		repairProvider: repairProvider,
		embedder:       embedder,
		Window:         DefaultWindow,
		Overlap:        DefaultOverlap,
		TopN:           100,
		StepTopN:       50,
		ReportingYear:  time.Now().Year(),
		newID:          uuid.NewString,
	}
}

// reportingYearPattern matches the reporting year as its own token,
// including the split rendering ("20 24") that shows up in flattened
// tables. Compiled once per ReportingYear value, like digitPattern.
func (p *Pipeline) reportingYearPattern() *regexp.Regexp {
	if p.yearPattern == nil || p.yearPatternFor != p.ReportingYear {
		year := p.ReportingYear
		p.yearPattern = regexp.MustCompile(fmt.Sprintf(`\b%d\b|\b%02d\s%02d\b`, year, year/100, year%100))
		p.yearPatternFor = year
	}
	return p.yearPattern
}

// prepareBlob fetches a document and reduces it to the digit-bearing
// content: text lines with at least one digit, plus tables with digits
// that do not mention the current reporting year. Everything is joined
// into one space-separated blob.
func (p *Pipeline) prepareBlob(ctx context.Context, docURL string) (string, error) {
	doc, err := p.fetcher.Fetch(ctx, docURL)
	if err != nil {
		return "", err
	}

	yearPattern := p.reportingYearPattern()

	var parts []string
	for _, line := range strings.Split(doc.Text, "\n") {
		if digitPattern.MatchString(line) {
			parts = append(parts, line)
		}
	}
	for _, table := range doc.TableTexts {
		if digitPattern.MatchString(table) && !yearPattern.MatchString(table) {
			parts = append(parts, table)
		}
	}
	return strings.Join(parts, " "), nil
}

// summaryURL rewrites a primary document URL to its sibling R2.htm, the
// rendered compensation summary used by the lite path.
func summaryURL(docURL string) string {
	if i := strings.LastIndex(docURL, "/"); i >= 0 {
		return docURL[:i] + "/R2.htm"
	}
	return docURL
}

// ExtractLite runs the single-shot path against the filing's summary
// document. The returned result is always either structured facts or
// raw text: model output that never parses falls back to plain text
// after the repair ladder, it does not error. Only a failure to fetch
// the document itself is an error.
func (p *Pipeline) ExtractLite(ctx context.Context, docURL string) (*LiteResult, error) {
	blob, err := p.prepareBlob(ctx, summaryURL(docURL))
	if err != nil {
		return nil, err
	}

	result := &LiteResult{RunID: p.newID()}
	userPrompt := "Query: " + liteQuery + "\n Relevant texts:" + blob

	answer, err := p.provider.GenerateResponse(ctx, userPrompt, liteSystemPrompt, map[string]interface{}{
		"model":       p.Model,
		"temperature": 0.2,
		"top_p":       0.2,
		"max_tokens":  300,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction prompt failed: %w", err)
	}
	answer = strings.TrimSpace(answer)

	result.Attempts = 1
	var facts Facts
	if _, err := utils.SmartParse(answer, &facts); err == nil {
		result.Facts = facts
		return result, nil
	}
	log.Printf("extract: run %s initial parse failed, entering repair ladder", result.RunID)

	// Repair rungs are independent: each reformats the original
	// malformed answer, carrying no state from earlier rungs.
	repairPrompt := "Data:" + answer
	for attempt := 0; attempt < maxRepairAttempts; attempt++ {
		result.Attempts++
		repaired, err := p.repairProvider.GenerateResponse(ctx, repairPrompt, repairSystemPrompt, map[string]interface{}{
			"model":       p.RepairModel,
			"temperature": 0.7,
			"max_tokens":  200,
		})
		if err != nil {
			log.Printf("extract: run %s repair attempt %d failed: %v", result.RunID, attempt+1, err)
			continue
		}

		var facts Facts
		if _, err := utils.SmartParse(strings.TrimSpace(repaired), &facts); err == nil {
			result.Facts = facts
			return result, nil
		}
		log.Printf("extract: run %s repair attempt %d not parseable", result.RunID, attempt+1)
	}

	// Last resort: re-ask the original question on the cheap model and
	// hand the text back unparsed.
	raw, err := p.repairProvider.GenerateResponse(ctx, userPrompt, liteSystemPrompt, map[string]interface{}{
		"model":       p.RepairModel,
		"temperature": 0.2,
		"max_tokens":  200,
	})
	if err != nil {
		result.Raw = answer
		return result, nil
	}
	result.Raw = strings.TrimSpace(raw)
	return result, nil
}

// ExtractFull runs the chunk-embed-rank path over the primary document
// and issues the full compensation template in one prompt. The answer
// is cleaned of markdown fencing but otherwise surfaced as-is; this
// mode does not self-heal.
func (p *Pipeline) ExtractFull(ctx context.Context, docURL string) (string, error) {
	relevant, err := p.rankedContext(ctx, docURL, fullQuery, p.TopN)
	if err != nil {
		return "", err
	}

	answer, err := p.provider.GenerateResponse(ctx, "Query: "+fullQuery+"\n Relevant texts:"+relevant, fullSystemPrompt, map[string]interface{}{
		"model":       p.Model,
		"temperature": 0.2,
		"top_p":       0.2,
		"max_tokens":  700,
	})
	if err != nil {
		return "", fmt.Errorf("extraction prompt failed: %w", err)
	}

	cleaned := utils.CleanMarkdown(answer)
	if !utils.ValidateMarkdown(cleaned) {
		log.Printf("extract: full-mode answer failed markdown validation")
	}
	return cleaned, nil
}

// ExtractThreeStep runs the stepped variant for harder documents:
// metric names, then target/actual values per metric, then the
// weight/achievement/payout summary. Every step sees the same ranked
// context; steps 2 and 3 additionally embed the prior step's answer in
// their prompt. The steps are not reconciled against each other.
func (p *Pipeline) ExtractThreeStep(ctx context.Context, docURL string) (*ThreeStepResult, error) {
	relevant, err := p.rankedContext(ctx, docURL, stepOneQuery, p.StepTopN)
	if err != nil {
		return nil, err
	}

	options := func(maxTokens int) map[string]interface{} {
		return map[string]interface{}{
			"model":       p.Model,
			"temperature": 0.2,
			"top_p":       0.2,
			"max_tokens":  maxTokens,
		}
	}

	result := &ThreeStepResult{RunID: p.newID()}

	result.Metrics, err = p.provider.GenerateResponse(ctx,
		"Query: "+stepOneQuery+"\n Relevant texts:"+relevant,
		stepOneSystemPrompt, options(40))
	if err != nil {
		return nil, fmt.Errorf("metric-name step failed: %w", err)
	}

	result.Values, err = p.provider.GenerateResponse(ctx,
		fmt.Sprintf("Query: For each of these metrics %s, please give me the proxy target and actual values. Keep your response as short as possible.\n Relevant texts:%s", result.Metrics, relevant),
		stepSystemPrompt, options(200))
	if err != nil {
		return nil, fmt.Errorf("target/actual step failed: %w", err)
	}

	result.Summary, err = p.provider.GenerateResponse(ctx,
		fmt.Sprintf("Query: %s\n Prior extraction:%s\n Relevant texts:%s", stepThreeQuery, result.Values, relevant),
		stepSystemPrompt, options(450))
	if err != nil {
		return nil, fmt.Errorf("summary step failed: %w", err)
	}

	return result, nil
}

// rankedContext fetches the document, chunks it, and joins the topN
// most related chunks in rank order.
func (p *Pipeline) rankedContext(ctx context.Context, docURL, query string, topN int) (string, error) {
	blob, err := p.prepareBlob(ctx, docURL)
	if err != nil {
		return "", err
	}

	chunks := Chunks(strings.ReplaceAll(blob, "\n", " "), p.Window, p.Overlap)
	if len(chunks) == 0 {
		return "", fmt.Errorf("document %s produced no text to rank", docURL)
	}

	ranked, _, err := RankByRelatedness(ctx, p.embedder, query, chunks, topN)
	if err != nil {
		return "", err
	}
	return strings.Join(ranked, " "), nil
}
