package edgar

import (
	"testing"
	"time"
)

func dateOf(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func sampleIndex() []Filing {
	// Upstream order: most recent first.
	return []Filing{
		{AccessionNumber: "0001-24-000004", Form: "10-K", FilingDate: dateOf("2024-02-01")},
		{AccessionNumber: "0001-23-000003", Form: "DEF 14A", FilingDate: dateOf("2023-04-10"), PrimaryDocDescription: "DEF 14A"},
		{AccessionNumber: "0001-23-000002", Form: "PRE 14A", FilingDate: dateOf("2023-03-01"), PrimaryDocDescription: "PRELIMINARY PROXY"},
		{AccessionNumber: "0001-22-000001", Form: "DEF 14A", FilingDate: dateOf("2022-04-12"), PrimaryDocDescription: "DEFINITIVE PROXY STATEMENT"},
		{AccessionNumber: "0001-21-000009", Form: "10-Q", FilingDate: dateOf("2021-10-30")},
	}
}

func TestFilterByForm_SubstringMatch(t *testing.T) {
	got := FilterByForm(sampleIndex(), "14A")
	if len(got) != 3 {
		t.Fatalf("expected 3 filings containing 14A, got %d", len(got))
	}
	for _, f := range got {
		if f.Form != "DEF 14A" && f.Form != "PRE 14A" {
			t.Errorf("unexpected form %q in 14A subset", f.Form)
		}
	}
}

func TestMostRecentAccession_FirstMatchInUpstreamOrder(t *testing.T) {
	accession, ok := MostRecentAccession(sampleIndex(), "14A")
	if !ok {
		t.Fatal("expected a 14A accession")
	}
	// First match in upstream (most-recent-first) order, no re-sort.
	if accession != "0001-23-000003" {
		t.Errorf("expected first matching accession 0001-23-000003, got %s", accession)
	}

	if _, ok := MostRecentAccession(sampleIndex(), "S-1"); ok {
		t.Error("expected no match for S-1")
	}
}

func TestProxyFilings_RequiresFormAndDescription(t *testing.T) {
	got := ProxyFilings(sampleIndex())
	if len(got) != 2 {
		t.Fatalf("expected 2 definitive proxies, got %d", len(got))
	}
	// The PRE 14A with a preliminary description must be excluded even
	// though its form contains 14A.
	for _, f := range got {
		if f.Form == "PRE 14A" {
			t.Errorf("preliminary proxy leaked through the description filter")
		}
	}
}

func TestFilterByFilingYearRange(t *testing.T) {
	proxies := ProxyFilings(sampleIndex())

	got := FilterByFilingYearRange(proxies, 2023, 2024)
	if len(got) != 1 || got[0].FilingDate.Year() != 2023 {
		t.Fatalf("expected only the 2023 proxy, got %+v", got)
	}

	// Filings without a parseable date are dropped.
	withZero := append([]Filing{{Form: "DEF 14A"}}, proxies...)
	got = FilterByFilingYearRange(withZero, 2000, 2100)
	if len(got) != 2 {
		t.Errorf("expected zero-date filing dropped, got %d filings", len(got))
	}
}

func TestDocURLDerivation(t *testing.T) {
	f := Filing{
		AccessionNumber: "0001193125-23-083160",
		PrimaryDocument: "d472264ddef14a.htm",
	}
	got := f.DocURL("0001166691")
	want := "https://www.sec.gov/Archives/edgar/data/1166691/000119312523083160/d472264ddef14a.htm"
	if got != want {
		t.Errorf("DocURL mismatch:\n got %s\nwant %s", got, want)
	}

	summary := f.SummaryURL("0001166691")
	wantSummary := "https://www.sec.gov/Archives/edgar/data/1166691/000119312523083160/R2.htm"
	if summary != wantSummary {
		t.Errorf("SummaryURL mismatch:\n got %s\nwant %s", summary, wantSummary)
	}
}

func TestPivotFactsByForm(t *testing.T) {
	index := []Filing{
		{AccessionNumber: "accn-1", Form: "10-K"},
		{AccessionNumber: "accn-2", Form: "10-Q"},
	}
	facts := []Fact{
		{Tag: "Assets", Label: "Total Assets", End: dateOf("2023-12-31"), Value: 100, Accession: "accn-1"},
		{Tag: "Revenues", Label: "Revenues", End: dateOf("2023-12-31"), Value: 50, Accession: "accn-1"},
		{Tag: "Assets", Label: "Total Assets", End: dateOf("2023-09-30"), Value: 90, Accession: "accn-2"},
	}

	pivot := PivotFactsByForm(facts, index, "10-K")
	if len(pivot.Labels) != 2 || len(pivot.Dates) != 1 {
		t.Fatalf("expected 2 labels x 1 date, got %d x %d", len(pivot.Labels), len(pivot.Dates))
	}
	if pivot.Cells["Total Assets"]["2023-12-31"] != 100 {
		t.Errorf("annual pivot missing Total Assets value")
	}
	if _, ok := pivot.Cells["Total Assets"]["2023-09-30"]; ok {
		t.Errorf("quarterly observation leaked into annual pivot")
	}
}
