package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	companyFactsURL   = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"
	companyConceptURL = "https://data.sec.gov/api/xbrl/companyconcept/CIK%s/us-gaap/%s.json"
)

// Fact is one dated us-gaap observation from the company-facts endpoint,
// flattened out of the facts/units nesting.
type Fact struct {
	Tag       string    `json:"tag"`
	Label     string    `json:"label"`
	Unit      string    `json:"unit"`
	Start     time.Time `json:"start,omitempty"`
	End       time.Time `json:"end"`
	Value     float64   `json:"value"`
	Accession string    `json:"accession"`
	FiscalYr  int       `json:"fiscal_year"`
	Period    string    `json:"fiscal_period"`
	Form      string    `json:"form"`
}

type factsResponse struct {
	CIK        int    `json:"cik"`
	EntityName string `json:"entityName"`
	Facts      struct {
		USGAAP map[string]struct {
			Label string `json:"label"`
			Units map[string][]factObservation `json:"units"`
		} `json:"us-gaap"`
	} `json:"facts"`
}

type factObservation struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
}

// CompanyFacts fetches the full us-gaap fact set for a company and
// flattens it into dated rows. Duplicate observations (same tag, end date
// and value, refiled across submissions) are dropped, keeping the first.
func (c *Client) CompanyFacts(ctx context.Context, company Company) ([]Fact, error) {
	body, err := c.fetchURL(ctx, fmt.Sprintf(c.factsFmt, company.CIK))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company facts for %s: %w", company.Ticker, err)
	}

	var resp factsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse company facts for %s: %w", company.Ticker, err)
	}

	seen := make(map[string]bool)
	var facts []Fact
	for tag, detail := range resp.Facts.USGAAP {
		for unit, observations := range detail.Units {
			for _, obs := range observations {
				key := fmt.Sprintf("%s|%s|%g", tag, obs.End, obs.Val)
				if seen[key] {
					continue
				}
				seen[key] = true

				start, _ := time.Parse("2006-01-02", obs.Start)
				end, _ := time.Parse("2006-01-02", obs.End)
				facts = append(facts, Fact{
					Tag:       tag,
					Label:     detail.Label,
					Unit:      unit,
					Start:     start,
					End:       end,
					Value:     obs.Val,
					Accession: obs.Accn,
					FiscalYr:  obs.FY,
					Period:    obs.FP,
					Form:      obs.Form,
				})
			}
		}
	}
	return facts, nil
}

// ConceptValue is one USD observation from the company-concept endpoint.
type ConceptValue struct {
	Start     string  `json:"start"`
	End       string  `json:"end"`
	Val       float64 `json:"val"`
	Accession string  `json:"accn"`
	Form      string  `json:"form"`
}

// CompanyConcept fetches the USD series for one us-gaap concept, for
// example "Assets".
func (c *Client) CompanyConcept(ctx context.Context, company Company, concept string) ([]ConceptValue, error) {
	body, err := c.fetchURL(ctx, fmt.Sprintf(c.conceptFmt, company.CIK, concept))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch concept %s for %s: %w", concept, company.Ticker, err)
	}

	var resp struct {
		Units map[string][]ConceptValue `json:"units"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse concept %s for %s: %w", concept, company.Ticker, err)
	}
	return resp.Units["USD"], nil
}

// FactsPivot is facts pivoted to label rows and period-end columns, the
// tabular shape the presentation layer consumes.
type FactsPivot struct {
	Labels []string                      `json:"labels"`
	Dates  []string                      `json:"dates"`
	Cells  map[string]map[string]float64 `json:"cells"` // label -> end date -> value
}

// PivotFactsByForm keeps the facts reported under filings of the given
// form (matched by accession number against the filing index) and pivots
// them to fact label rows by period-end columns. Used for annual (10-K)
// and quarterly (10-Q) fact tables.
func PivotFactsByForm(facts []Fact, index []Filing, form string) *FactsPivot {
	accessions := make(map[string]bool)
	for _, f := range index {
		if f.Form == form {
			accessions[f.AccessionNumber] = true
		}
	}

	pivot := &FactsPivot{Cells: make(map[string]map[string]float64)}
	seenLabel := make(map[string]bool)
	seenDate := make(map[string]bool)

	for _, fact := range facts {
		if !accessions[fact.Accession] || fact.End.IsZero() {
			continue
		}
		date := fact.End.Format("2006-01-02")
		label := fact.Label
		if label == "" {
			label = fact.Tag
		}

		if pivot.Cells[label] == nil {
			pivot.Cells[label] = make(map[string]float64)
		}
		pivot.Cells[label][date] = fact.Value

		if !seenLabel[label] {
			seenLabel[label] = true
			pivot.Labels = append(pivot.Labels, label)
		}
		if !seenDate[date] {
			seenDate[date] = true
			pivot.Dates = append(pivot.Dates, date)
		}
	}
	return pivot
}
