package sched14a

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"proxyfacts/pkg/core/edgar"
	"proxyfacts/pkg/core/ratelimit"
)

const comcastSubmissions = `{
	"cik": "1166691",
	"name": "COMCAST CORP",
	"filings": {"recent": {
		"accessionNumber": ["0001166691-20-000020", "0001193125-20-000010", "0001166691-19-000015", "0001166691-18-000012"],
		"filingDate": ["2020-04-24", "2020-02-10", "2019-04-26", "2018-04-20"],
		"reportDate": ["2020-06-10", "2020-03-01", "2019-06-05", "2018-06-11"],
		"form": ["DEF 14A", "10-K", "DEF 14A", "DEF 14A"],
		"primaryDocument": ["proxy2020.htm", "annual.htm", "proxy2019.htm", "proxy2018.htm"],
		"primaryDocDescription": ["DEF 14A", "FORM 10-K", "DEFINITIVE PROXY STATEMENT", "DEF 14A"],
		"fileNumber": ["001-32871", "001-32871", "001-32871", "001-32871"],
		"filmNumber": ["20812001", "20555001", "19771001", "18661001"]
	}}
}`

func newTestService(t *testing.T) *Service {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files/company_tickers.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"0": {"cik_str": 1166691, "ticker": "CMCSA", "title": "COMCAST CORP"}}`))
	})
	mux.HandleFunc("/submissions/CIK0001166691.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(comcastSubmissions))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := edgar.NewClient("analyst@example.com", ratelimit.New(100, time.Second))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.SetEndpoints(
		server.URL+"/files/company_tickers.json",
		server.URL+"/submissions/CIK%s.json",
		server.URL+"/api/xbrl/companyfacts/CIK%s.json",
		server.URL+"/api/xbrl/companyconcept/CIK%s/us-gaap/%s.json",
	)
	return NewService(client)
}

func TestDiscover_ComcastTwoYearWindow(t *testing.T) {
	service := newTestService(t)

	// Unknown ticker skipped, batch continues.
	rows, covered, err := service.Discover(context.Background(), []string{"cmcsa", "NOPE"}, 2019, 2020)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(covered) != 1 || covered[0] != "CMCSA" {
		t.Fatalf("covered = %v", covered)
	}

	// 2018 proxy and the 10-K fall outside the filter; two proxies
	// remain, most recent first.
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].FilingDate.Year() != 2020 || rows[1].FilingDate.Year() != 2019 {
		t.Errorf("rows not most-recent-first: %v, %v", rows[0].FilingDate, rows[1].FilingDate)
	}

	first := rows[0]
	if first.Ticker != "CMCSA" || first.Title != "COMCAST CORP" || first.CIK != "0001166691" {
		t.Errorf("company columns wrong: %+v", first)
	}
	wantDoc := "https://www.sec.gov/Archives/edgar/data/1166691/000116669120000020/proxy2020.htm"
	if first.DocURL != wantDoc {
		t.Errorf("DocURL = %s, want %s", first.DocURL, wantDoc)
	}
	wantSummary := "https://www.sec.gov/Archives/edgar/data/1166691/000116669120000020/R2.htm"
	if first.SummaryURL != wantSummary {
		t.Errorf("SummaryURL = %s, want %s", first.SummaryURL, wantSummary)
	}
	if first.FilmNumber != "20812001" || first.ReportDate.Year() != 2020 {
		t.Errorf("filing columns wrong: %+v", first)
	}
}

func TestCoverageAudit(t *testing.T) {
	rows := []Row{
		{Ticker: "CMCSA", FilingDate: time.Date(2019, 4, 26, 0, 0, 0, 0, time.UTC)},
		{Ticker: "CMCSA", FilingDate: time.Date(2020, 4, 24, 0, 0, 0, 0, time.UTC)},
		{Ticker: "CMCSA", FilingDate: time.Date(2020, 11, 2, 0, 0, 0, 0, time.UTC)},
	}

	alerts := CoverageAudit(rows, []string{"CMCSA"}, 2019, 2021)

	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %+v", alerts)
	}
	// 2019 has exactly one filing: silent. 2020 has two, 2021 none.
	if alerts[0].Kind != AlertMultiple || alerts[0].Year != 2020 || alerts[0].Count != 2 {
		t.Errorf("first alert = %+v", alerts[0])
	}
	if alerts[1].Kind != AlertMissing || alerts[1].Year != 2021 || alerts[1].Count != 0 {
		t.Errorf("second alert = %+v", alerts[1])
	}
}

func TestCoverageAudit_SingleFilingPerYearIsSilent(t *testing.T) {
	rows := []Row{
		{Ticker: "CMCSA", FilingDate: time.Date(2019, 4, 26, 0, 0, 0, 0, time.UTC)},
		{Ticker: "CMCSA", FilingDate: time.Date(2020, 4, 24, 0, 0, 0, 0, time.UTC)},
	}
	if alerts := CoverageAudit(rows, []string{"CMCSA"}, 2019, 2020); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
}
