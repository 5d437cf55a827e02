// Package statement locates and parses the financial statement
// sub-documents of a filing: the FilingSummary.xml manifest names the
// rendered R-files, and each R-file is a styled HTML table whose cells
// carry taxonomy anchors, unit headers and sign classes.
package statement

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const archiveBaseURL = "https://www.sec.gov/Archives/edgar/data"

// FetchFunc retrieves one archive URL. Production code passes
// (*edgar.Client).FetchURL so every fetch stays rate limited.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Reason classifies why a statement could not be produced. Callers treat
// every reason as "statement absent"; the distinction exists for logs.
type Reason string

const (
	ReasonManifestFetch Reason = "manifest_fetch_failed"
	ReasonNoAlias       Reason = "no_matching_alias"
	ReasonDocFetch      Reason = "document_fetch_failed"
	ReasonParse         Reason = "document_parse_failed"
	ReasonEmpty         Reason = "no_rows_parsed"
)

// UnavailableError reports an absent statement together with the reason.
// "Not filed" and "malformed" both degrade to absence for the caller,
// but stay distinguishable for diagnostics.
type UnavailableError struct {
	Kind   Kind
	Reason Reason
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("statement %s unavailable (%s): %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("statement %s unavailable (%s)", e.Kind, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err marks an absent statement.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

// Extractor parses financial statements out of a filing's rendered
// sub-documents.
type Extractor struct {
	fetch   FetchFunc
	baseURL string
}

// NewExtractor creates an Extractor using the given fetch function.
func NewExtractor(fetch FetchFunc) *Extractor {
	return &Extractor{fetch: fetch, baseURL: archiveBaseURL}
}

// NewExtractorWithBase creates an Extractor rooted at a different
// archive base URL. Tests point this at a local server.
func NewExtractorWithBase(fetch FetchFunc, baseURL string) *Extractor {
	return &Extractor{fetch: fetch, baseURL: strings.TrimRight(baseURL, "/")}
}

// filingBase is the directory holding all of one filing's documents.
func (e *Extractor) filingBase(cik, accession string) string {
	return e.baseURL + "/" +
		strings.TrimLeft(cik, "0") + "/" +
		strings.ReplaceAll(accession, "-", "")
}

type filingSummary struct {
	Reports []manifestReport `xml:"MyReports>Report"`
}

type manifestReport struct {
	HtmlFileName string `xml:"HtmlFileName"`
	XmlFileName  string `xml:"XmlFileName"`
	ShortName    string `xml:"ShortName"`
	LongName     string `xml:"LongName"`
}

// fileName prefers the HTML rendering, falling back to XML.
func (r manifestReport) fileName() string {
	if r.HtmlFileName != "" {
		return r.HtmlFileName
	}
	return r.XmlFileName
}

// ListStatementFiles fetches the FilingSummary.xml manifest and returns
// the statement sub-documents: entries whose long name contains
// "Statement" and which carry both a short name and a resolvable file
// name, keyed by lowercase short name.
func (e *Extractor) ListStatementFiles(ctx context.Context, cik, accession string) (map[string]string, error) {
	manifestURL := e.filingBase(cik, accession) + "/FilingSummary.xml"
	body, err := e.fetch(ctx, manifestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filing manifest: %w", err)
	}

	var summary filingSummary
	if err := xml.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse filing manifest: %w", err)
	}

	files := make(map[string]string)
	for _, report := range summary.Reports {
		name := report.fileName()
		if name == "" || report.ShortName == "" {
			continue
		}
		if !strings.Contains(report.LongName, "Statement") {
			continue
		}
		files[strings.ToLower(report.ShortName)] = name
	}
	return files, nil
}

// Extract locates and parses one statement kind for the given filing.
// Any failure along the way (manifest, fetch, parse, zero rows) returns
// an UnavailableError; an empty table is never returned.
func (e *Extractor) Extract(ctx context.Context, cik, accession string, kind Kind) (*Table, error) {
	files, err := e.ListStatementFiles(ctx, cik, accession)
	if err != nil {
		return nil, &UnavailableError{Kind: kind, Reason: ReasonManifestFetch, Err: err}
	}

	// First alias with a manifest entry wins; the alias order encodes
	// which spellings are most common.
	var fileName string
	for _, alias := range Aliases(kind) {
		if name, ok := files[alias]; ok {
			fileName = name
			break
		}
	}
	if fileName == "" {
		return nil, &UnavailableError{Kind: kind, Reason: ReasonNoAlias}
	}

	docURL := e.filingBase(cik, accession) + "/" + fileName
	body, err := e.fetch(ctx, docURL)
	if err != nil {
		return nil, &UnavailableError{Kind: kind, Reason: ReasonDocFetch, Err: err}
	}

	table, err := parseStatement(body)
	if err != nil {
		return nil, &UnavailableError{Kind: kind, Reason: ReasonParse, Err: err}
	}
	if len(table.Rows) == 0 {
		return nil, &UnavailableError{Kind: kind, Reason: ReasonEmpty}
	}
	return table, nil
}

// parseStatement parses one rendered statement document. The .xml
// renderings are tag-compatible with the HTML ones, so both go through
// the same HTML parser.
func parseStatement(body []byte) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement document: %w", err)
	}

	dates := parseStatementDates(doc)

	var rows []Row
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		multiplier, special := parseUnitHeader(table)

		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			anchor := tr.Find("td.pl a, td.pl.custom a").First()
			if anchor.Length() == 0 {
				return
			}
			tag := tagFromAnchor(anchor.AttrOr("onclick", ""))
			if tag == "" {
				return
			}

			values := make([]*float64, len(dates))
			tr.Find("td.text, td.nump, td.num").Each(func(i int, cell *goquery.Selection) {
				class := cell.AttrOr("class", "")
				if strings.Contains(class, "text") || i >= len(values) {
					return
				}

				v, ok := cleanNumericCell(cell.Text())
				if !ok {
					return
				}
				if special {
					// Header declared a non-standard base unit;
					// rendered values are reported a thousandfold
					// too large.
					v /= 1000
				} else {
					v *= multiplier
				}
				// The "num" class renders parenthesized values.
				if !strings.Contains(class, "nump") {
					v = -v
				}
				values[i] = &v
			})

			row := Row{Tag: tag, Values: values}
			if row.hasValues() {
				rows = append(rows, row)
			}
		})
	})

	return &Table{Dates: dates, Rows: dedupeRows(rows)}, nil
}

// parseStatementDates reads the document-level column headers: the
// th.th cells hold date strings, spanning cells like "12 Months Ended"
// fail to parse and drop out.
func parseStatementDates(doc *goquery.Document) []time.Time {
	var dates []time.Time
	doc.Find("th.th").Each(func(_ int, th *goquery.Selection) {
		div := th.Find("div").First()
		if div.Length() == 0 {
			return
		}
		if d, ok := parseHeaderDate(div.Text()); ok {
			dates = append(dates, d)
		}
	})
	return dates
}

// parseUnitHeader reads the table's first header cell for the declared
// reporting unit. Returns the multiplier and whether the header flags
// the special "unless otherwise specified" base unit.
func parseUnitHeader(table *goquery.Selection) (float64, bool) {
	header := table.Find("th").First()
	if header.Length() == 0 {
		return 1, false
	}
	text := header.Text()

	multiplier := 1.0
	if strings.Contains(text, "in Millions") {
		multiplier = 1000
	}
	special := strings.Contains(text, "unless otherwise specified")
	return multiplier, special
}

// tagFromAnchor pulls the taxonomy element id out of the row anchor's
// onclick attribute, e.g.
// "Show(... 'defref_us-gaap_Assets', window);" -> "us-gaap_Assets".
func tagFromAnchor(onclick string) string {
	i := strings.LastIndex(onclick, "defref_")
	if i < 0 {
		return ""
	}
	tag := onclick[i+len("defref_"):]
	if j := strings.Index(tag, "',"); j >= 0 {
		tag = tag[:j]
	}
	return tag
}
