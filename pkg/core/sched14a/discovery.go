// Package sched14a discovers a batch of companies' definitive proxy
// statements (Schedule 14A) over a year range and audits the per-year
// filing coverage.
package sched14a

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"proxyfacts/pkg/core/edgar"
)

// Row is one discovered proxy filing, denormalized for display: the
// company columns are repeated on every row.
type Row struct {
	Ticker          string
	Title           string
	CIK             string
	Form            string
	FilingDate      time.Time
	Description     string
	DocURL          string
	SummaryURL      string
	AccessionNumber string
	FileNumber      string
	FilmNumber      string
	ReportDate      time.Time
}

// Service runs proxy discovery against the filing archive.
type Service struct {
	client *edgar.Client
}

func NewService(client *edgar.Client) *Service {
	return &Service{client: client}
}

// Discover resolves each ticker and collects its definitive proxy
// filings whose filing date falls in [startYear, endYear], most recent
// first within each company. Unknown tickers are skipped, and a
// transport failure on one company's index skips that company only;
// neither aborts the batch. The second return value lists the tickers
// that actually resolved, which is the population CoverageAudit should
// be run over.
func (s *Service) Discover(ctx context.Context, tickers []string, startYear, endYear int) ([]Row, []string, error) {
	var rows []Row
	var covered []string

	for _, raw := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			continue
		}

		company, ok, err := s.client.Resolve(ctx, ticker)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			log.Printf("sched14a: ticker %s not in identifier table, skipping", ticker)
			continue
		}
		covered = append(covered, ticker)

		index, err := s.client.FetchIndex(ctx, company)
		if err != nil {
			log.Printf("sched14a: failed to fetch index for %s: %v", ticker, err)
			continue
		}

		proxies := edgar.FilterByFilingYearRange(edgar.ProxyFilings(index), startYear, endYear)
		sort.SliceStable(proxies, func(i, j int) bool {
			return proxies[i].FilingDate.After(proxies[j].FilingDate)
		})

		for _, filing := range proxies {
			rows = append(rows, Row{
				Ticker:          company.Ticker,
				Title:           company.Title,
				CIK:             company.CIK,
				Form:            filing.Form,
				FilingDate:      filing.FilingDate,
				Description:     filing.PrimaryDocDescription,
				DocURL:          filing.DocURL(company.CIK),
				SummaryURL:      filing.SummaryURL(company.CIK),
				AccessionNumber: filing.AccessionNumber,
				FileNumber:      filing.FileNumber,
				FilmNumber:      filing.FilmNumber,
				ReportDate:      filing.ReportDate,
			})
		}
	}

	return rows, covered, nil
}

// AlertKind classifies a coverage anomaly.
type AlertKind string

const (
	AlertMissing  AlertKind = "missing_files"
	AlertMultiple AlertKind = "multiple_files"
)

// Alert flags a (ticker, year) whose proxy-filing count deviates from
// the expected exactly-one.
type Alert struct {
	Ticker string
	Year   int
	Count  int
	Kind   AlertKind
}

// CoverageAudit checks each (ticker, year) pair for the expected
// cardinality of exactly one proxy filing. Zero raises a missing-files
// alert, more than one a multiple-files alert. Duplicates are reported,
// never resolved: which filing is authoritative is an operator call.
func CoverageAudit(rows []Row, tickers []string, startYear, endYear int) []Alert {
	counts := make(map[string]map[int]int)
	for _, row := range rows {
		if counts[row.Ticker] == nil {
			counts[row.Ticker] = make(map[int]int)
		}
		counts[row.Ticker][row.FilingDate.Year()]++
	}

	var alerts []Alert
	for _, raw := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		for year := startYear; year <= endYear; year++ {
			count := counts[ticker][year]
			switch {
			case count == 0:
				alerts = append(alerts, Alert{Ticker: ticker, Year: year, Count: 0, Kind: AlertMissing})
			case count > 1:
				alerts = append(alerts, Alert{Ticker: ticker, Year: year, Count: count, Kind: AlertMultiple})
			}
		}
	}
	return alerts
}
