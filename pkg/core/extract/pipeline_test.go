package extract

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"proxyfacts/pkg/core/docfetch"
)

// scriptedProvider records every call and answers from a script keyed
// by system prompt, so tests can distinguish extraction, repair and
// fallback calls.
type scriptedProvider struct {
	answers map[string]string
	calls   []scriptedCall
}

type scriptedCall struct {
	systemPrompt string
	options      map[string]interface{}
}

func (p *scriptedProvider) GenerateResponse(_ context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	p.calls = append(p.calls, scriptedCall{systemPrompt: systemPrompt, options: options})
	if answer, ok := p.answers[systemPrompt]; ok {
		return answer, nil
	}
	return "", nil
}

func (p *scriptedProvider) AdaptInstructions(raw string) string { return raw }

func summaryPageFetch(t *testing.T) docfetch.FetchFunc {
	t.Helper()
	return func(_ context.Context, url string) ([]byte, error) {
		if !strings.HasSuffix(url, "/R2.htm") {
			t.Errorf("lite path must fetch the sibling R2.htm, got %s", url)
		}
		return []byte(`<html><body>
<p>Total CEO compensation was $32,000,000 for fiscal 2022.</p>
<p>No digits in this line at all.</p>
<table><tr><td>Adjusted EBITDA</td><td>60%</td></tr></table>
<table><tr><td>Comparison period 2024</td><td>100</td></tr></table>
</body></html>`), nil
	}
}

func newLitePipeline(t *testing.T, provider, repair *scriptedProvider) *Pipeline {
	t.Helper()
	p := NewPipeline(docfetch.NewFetcher(summaryPageFetch(t)), provider, repair, nil)
	p.ReportingYear = 2024
	p.newID = func() string { return "run-1" }
	return p
}

func TestExtractLite_StructuredFirstTry(t *testing.T) {
	provider := &scriptedProvider{answers: map[string]string{
		liteSystemPrompt: "```json\n{\"CEO name\": \"Brian Roberts\", \"Year covered\": 2022, \"Names of metrics used to evaluate performance\": [\"Adjusted EBITDA\", \"FCF\"], \"Total CEO Compensation $\": \"NA\"}\n```",
	}}
	repair := &scriptedProvider{}

	result, err := newLitePipeline(t, provider, repair).ExtractLite(context.Background(), "https://www.sec.gov/Archives/edgar/data/1/2/proxy.htm")
	if err != nil {
		t.Fatalf("ExtractLite: %v", err)
	}

	if !result.Structured() || result.Attempts != 1 {
		t.Fatalf("expected structured result on first attempt, got %+v", result)
	}
	if got := result.Facts["CEO name"].Str; got != "Brian Roberts" {
		t.Errorf("CEO name = %q", got)
	}
	if got := result.Facts["Year covered"].Str; got != "2022" {
		t.Errorf("numeric field not kept as string: %q", got)
	}
	if got := result.Facts["Names of metrics used to evaluate performance"].List; len(got) != 2 {
		t.Errorf("metric list = %v", got)
	}
	if !result.Facts["Total CEO Compensation $"].IsNA() {
		t.Error("NA sentinel not recognized")
	}
	if len(repair.calls) != 0 {
		t.Errorf("repair provider called %d times on clean parse", len(repair.calls))
	}
}

func TestExtractLite_RepairLadderThenRawFallback(t *testing.T) {
	provider := &scriptedProvider{answers: map[string]string{
		liteSystemPrompt: "The CEO seems to be Brian Roberts but I cannot produce JSON.",
	}}
	repair := &scriptedProvider{answers: map[string]string{
		repairSystemPrompt: "still conversational, not a dictionary",
		liteSystemPrompt:   "raw fallback answer",
	}}

	result, err := newLitePipeline(t, provider, repair).ExtractLite(context.Background(), "https://www.sec.gov/Archives/edgar/data/1/2/proxy.htm")
	if err != nil {
		t.Fatalf("ExtractLite must not error on malformed output: %v", err)
	}

	if result.Structured() {
		t.Fatalf("expected raw fallback, got facts %v", result.Facts)
	}
	if result.Raw != "raw fallback answer" {
		t.Errorf("raw = %q", result.Raw)
	}
	// One initial attempt plus exactly five repair rungs.
	if result.Attempts != 1+maxRepairAttempts {
		t.Errorf("attempts = %d, want %d", result.Attempts, 1+maxRepairAttempts)
	}
	if len(provider.calls) != 1 {
		t.Errorf("primary model called %d times, want 1", len(provider.calls))
	}
	// Five repair calls plus the final fallback call on the cheap model.
	if len(repair.calls) != maxRepairAttempts+1 {
		t.Fatalf("cheap model called %d times, want %d", len(repair.calls), maxRepairAttempts+1)
	}

	for i := 0; i < maxRepairAttempts; i++ {
		call := repair.calls[i]
		if call.systemPrompt != repairSystemPrompt {
			t.Errorf("call %d is not a repair call", i)
		}
		if call.options["temperature"] != 0.7 || call.options["max_tokens"] != 200 {
			t.Errorf("repair sampling options wrong: %v", call.options)
		}
	}
	fallback := repair.calls[maxRepairAttempts]
	if fallback.systemPrompt != liteSystemPrompt || fallback.options["temperature"] != 0.2 {
		t.Errorf("fallback call wrong: %+v", fallback)
	}
}

func TestExtractLite_RepairRungRecovers(t *testing.T) {
	provider := &scriptedProvider{answers: map[string]string{
		liteSystemPrompt: "not json at all",
	}}
	repair := &scriptedProvider{answers: map[string]string{
		repairSystemPrompt: `{"CEO name": "Brian Roberts", "Year covered": "2022"}`,
	}}

	result, err := newLitePipeline(t, provider, repair).ExtractLite(context.Background(), "https://www.sec.gov/Archives/edgar/data/1/2/proxy.htm")
	if err != nil {
		t.Fatalf("ExtractLite: %v", err)
	}
	if !result.Structured() || result.Attempts != 2 {
		t.Fatalf("expected recovery on first repair rung, got %+v", result)
	}
}

func TestPrepareBlob_DigitAndYearFilters(t *testing.T) {
	p := newLitePipeline(t, &scriptedProvider{}, &scriptedProvider{})

	blob, err := p.prepareBlob(context.Background(), "https://www.sec.gov/Archives/edgar/data/1/2/R2.htm")
	if err != nil {
		t.Fatalf("prepareBlob: %v", err)
	}
	if !strings.Contains(blob, "$32,000,000") {
		t.Error("digit-bearing line dropped")
	}
	if strings.Contains(blob, "No digits in this line") {
		t.Error("digit-free line kept")
	}

	// Table content also flows through the page text, so the filters
	// show up as occurrence counts: the digit-bearing table appears via
	// its flattened form ("Adjusted EBITDA" alone has no digits and is
	// dropped at line level), while the reporting-year table appears
	// only once, through its line fragments.
	if got := strings.Count(blob, "Adjusted EBITDA 60%"); got != 1 {
		t.Errorf("digit-bearing table occurrences = %d, want 1", got)
	}
	if got := strings.Count(blob, "Comparison period 2024"); got != 1 {
		t.Errorf("reporting-year table not filtered, occurrences = %d", got)
	}
}

func TestReportingYearPattern_CachedPerYear(t *testing.T) {
	p := newLitePipeline(t, &scriptedProvider{}, &scriptedProvider{})

	first := p.reportingYearPattern()
	if p.reportingYearPattern() != first {
		t.Error("pattern recompiled for an unchanged year")
	}
	if !first.MatchString("fiscal 2024") || !first.MatchString("20 24") {
		t.Errorf("pattern %q misses the year tokens", first)
	}

	p.ReportingYear = 2025
	second := p.reportingYearPattern()
	if second == first {
		t.Fatal("pattern not rebuilt after the year changed")
	}
	if !second.MatchString("fiscal 2025") || second.MatchString("fiscal 2024") {
		t.Errorf("rebuilt pattern %q matches the wrong year", second)
	}
}

func TestFieldValue_Shapes(t *testing.T) {
	var facts Facts
	input := `{"s": "text", "n": 12.5, "l": ["a", "b"], "na": "na"}`
	if err := json.Unmarshal([]byte(input), &facts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if facts["s"].Str != "text" || facts["n"].Str != "12.5" {
		t.Errorf("scalar shapes wrong: %+v", facts)
	}
	if len(facts["l"].List) != 2 || facts["l"].String() != "a, b" {
		t.Errorf("list shape wrong: %+v", facts["l"])
	}
	if !facts["na"].IsNA() {
		t.Error("case-insensitive NA not recognized")
	}
}

func TestSummaryURL(t *testing.T) {
	got := summaryURL("https://www.sec.gov/Archives/edgar/data/1166691/000119312523083160/d472264ddef14a.htm")
	want := "https://www.sec.gov/Archives/edgar/data/1166691/000119312523083160/R2.htm"
	if got != want {
		t.Errorf("summaryURL = %s, want %s", got, want)
	}
}
