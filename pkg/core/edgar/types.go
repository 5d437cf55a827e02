// Package edgar provides the SEC EDGAR client used for filing discovery:
// ticker resolution, per-company filing indexes and proxy-statement
// filtering, plus the XBRL facts endpoints.
package edgar

import (
	"strings"
	"time"
)

// Company identifies one registrant from the SEC ticker table.
// CIK is the zero-padded 10-digit form used by the submissions API.
type Company struct {
	Ticker string `json:"ticker"`
	CIK    string `json:"cik"`
	Title  string `json:"title"`
}

// Filing is one submission event, denormalized from the parallel arrays
// the submissions endpoint returns. Slice order preserves upstream order,
// which is most-recent-first.
type Filing struct {
	AccessionNumber       string    `json:"accession_number"`
	Form                  string    `json:"form"`
	FilingDate            time.Time `json:"filing_date"`
	ReportDate            time.Time `json:"report_date"`
	PrimaryDocument       string    `json:"primary_document"`
	PrimaryDocDescription string    `json:"primary_doc_description"`
	FileNumber            string    `json:"file_number"`
	FilmNumber            string    `json:"film_number"`
}

// definitiveProxyDescriptions is the fixed set of primary-document
// descriptions that mark a definitive (non-preliminary) proxy. Form type
// alone is ambiguous: preliminary, definitive and special proxies all
// carry the "14A" substring.
var definitiveProxyDescriptions = []string{
	"DEF 14A",
	"PREC14A",
	"FORM DEF 14A",
	"FORM PREC14A",
	"DEFINITIVE PROXY STATEMENT",
}

// DocURL derives the archive URL of the filing's primary document:
// {archive}/{cik without leading zeros}/{accession without dashes}/{doc}.
func (f Filing) DocURL(cik string) string {
	return archiveBaseURL + "/" +
		strings.TrimLeft(cik, "0") + "/" +
		strings.ReplaceAll(f.AccessionNumber, "-", "") + "/" +
		f.PrimaryDocument
}

// SummaryURL is the sibling R2.htm rendering of the filing, the compact
// summary document the lite extraction path reads.
func (f Filing) SummaryURL(cik string) string {
	docURL := f.DocURL(cik)
	if i := strings.LastIndex(docURL, "/"); i >= 0 {
		return docURL[:i] + "/R2.htm"
	}
	return docURL
}

// FilterByForm returns the filings whose form type contains the given
// substring, preserving upstream order.
func FilterByForm(filings []Filing, form string) []Filing {
	var out []Filing
	for _, f := range filings {
		if strings.Contains(f.Form, form) {
			out = append(out, f)
		}
	}
	return out
}

// MostRecentAccession returns the accession number of the first filing
// matching the form substring. The submissions API returns filings
// most-recent-first, so first match means most recent; the index is never
// re-sorted here and callers rely on that.
func MostRecentAccession(filings []Filing, form string) (string, bool) {
	for _, f := range filings {
		if strings.Contains(f.Form, form) {
			return f.AccessionNumber, true
		}
	}
	return "", false
}

// ProxyFilings returns the definitive proxy statements: form contains
// "14A" and the primary-document description matches one of the known
// definitive-proxy strings.
func ProxyFilings(filings []Filing) []Filing {
	var out []Filing
	for _, f := range filings {
		if !strings.Contains(f.Form, "14A") {
			continue
		}
		for _, desc := range definitiveProxyDescriptions {
			if strings.Contains(f.PrimaryDocDescription, desc) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// FilterByFilingYearRange keeps filings whose filing date falls in
// [startYear, endYear], inclusive. Filings with no parseable filing date
// are dropped.
func FilterByFilingYearRange(filings []Filing, startYear, endYear int) []Filing {
	var out []Filing
	for _, f := range filings {
		if f.FilingDate.IsZero() {
			continue
		}
		y := f.FilingDate.Year()
		if y >= startYear && y <= endYear {
			out = append(out, f)
		}
	}
	return out
}
