// Package proxy provides the HTTP API over the proxy-statement
// pipeline: discovery, coverage audit, statement extraction and the
// compensation extraction modes.
package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"proxyfacts/pkg/core/edgar"
	"proxyfacts/pkg/core/extract"
	"proxyfacts/pkg/core/sched14a"
	"proxyfacts/pkg/core/statement"
)

// Handler holds the wired pipeline services. When the contact email is
// not configured the services are nil and every endpoint answers with a
// configuration error instead: SEC EDGAR refuses anonymous traffic, so
// there is nothing useful the API could do.
type Handler struct {
	client     *edgar.Client
	discovery  *sched14a.Service
	statements *statement.Extractor
	pipeline   *extract.Pipeline
}

func NewHandler(client *edgar.Client, discovery *sched14a.Service, statements *statement.Extractor, pipeline *extract.Pipeline) *Handler {
	return &Handler{
		client:     client,
		discovery:  discovery,
		statements: statements,
		pipeline:   pipeline,
	}
}

// Register wires the endpoints onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/proxy/discover", h.HandleDiscover)
	mux.HandleFunc("/api/proxy/statement", h.HandleStatement)
	mux.HandleFunc("/api/proxy/extract/lite", h.HandleExtractLite)
	mux.HandleFunc("/api/proxy/extract/full", h.HandleExtractFull)
	mux.HandleFunc("/api/proxy/facts", h.HandleFacts)
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")
}

// requireClient enforces the contact-email configuration requirement as
// a 4xx, not a 5xx: the request is fine, the deployment is not.
func (h *Handler) requireClient(w http.ResponseWriter) bool {
	if h.client != nil {
		return true
	}
	http.Error(w, "contact email not configured: set contact_email or EDGAR_CONTACT_EMAIL (SEC EDGAR usage policy)", http.StatusUnprocessableEntity)
	return false
}

// DiscoverResponse is the discovery endpoint payload: the filing rows
// plus the per-year coverage alerts.
type DiscoverResponse struct {
	Rows   []sched14a.Row   `json:"rows"`
	Alerts []sched14a.Alert `json:"alerts"`
}

// HandleDiscover handles GET /api/proxy/discover?tickers=CMCSA,AAPL&start=2019&end=2020.
func (h *Handler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if !h.requireClient(w) {
		return
	}

	tickers := splitTickers(r.URL.Query().Get("tickers"))
	if len(tickers) == 0 {
		http.Error(w, "tickers parameter is required", http.StatusBadRequest)
		return
	}
	startYear, endYear, err := yearRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, covered, err := h.discovery.Discover(r.Context(), tickers, startYear, endYear)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(DiscoverResponse{
		Rows:   rows,
		Alerts: sched14a.CoverageAudit(rows, covered, startYear, endYear),
	})
}

// StatementResponse carries one extracted statement, or its absence
// with the reason.
type StatementResponse struct {
	Present bool             `json:"present"`
	Reason  string           `json:"reason,omitempty"`
	Table   *statement.Table `json:"table,omitempty"`
}

// HandleStatement handles GET /api/proxy/statement?cik=...&accession=...&kind=balance_sheet.
func (h *Handler) HandleStatement(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if !h.requireClient(w) {
		return
	}

	q := r.URL.Query()
	cik, accession := q.Get("cik"), q.Get("accession")
	kind := statement.Kind(q.Get("kind"))
	if cik == "" || accession == "" || len(statement.Aliases(kind)) == 0 {
		http.Error(w, "cik, accession and a valid kind are required", http.StatusBadRequest)
		return
	}

	table, err := h.statements.Extract(r.Context(), cik, accession, kind)
	if err != nil {
		var unavailable *statement.UnavailableError
		if errors.As(err, &unavailable) {
			// Absent is an expected outcome, not a server error.
			json.NewEncoder(w).Encode(StatementResponse{
				Present: false,
				Reason:  string(unavailable.Reason),
			})
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	json.NewEncoder(w).Encode(StatementResponse{Present: true, Table: table})
}

// HandleExtractLite handles GET /api/proxy/extract/lite?doc_url=...
func (h *Handler) HandleExtractLite(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if !h.requireClient(w) {
		return
	}

	docURL := r.URL.Query().Get("doc_url")
	if docURL == "" {
		http.Error(w, "doc_url parameter is required", http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.ExtractLite(r.Context(), docURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":     result.RunID,
		"structured": result.Structured(),
		"facts":      result.Facts,
		"raw":        result.Raw,
		"attempts":   result.Attempts,
	})
}

// HandleExtractFull handles GET /api/proxy/extract/full?doc_url=...&mode=steps.
// The answer is markdown; html carries the goldmark rendering for
// direct display.
func (h *Handler) HandleExtractFull(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if !h.requireClient(w) {
		return
	}

	docURL := r.URL.Query().Get("doc_url")
	if docURL == "" {
		http.Error(w, "doc_url parameter is required", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("mode") == "steps" {
		result, err := h.pipeline.ExtractThreeStep(r.Context(), docURL)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(result)
		return
	}

	markdown, err := h.pipeline.ExtractFull(r.Context(), docURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	var rendered bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &rendered); err != nil {
		rendered.Reset()
	}
	json.NewEncoder(w).Encode(map[string]string{
		"markdown": markdown,
		"html":     rendered.String(),
	})
}

// HandleFacts handles GET /api/proxy/facts?ticker=CMCSA. With
// form=10-K or form=10-Q the facts are joined against the filing index
// and answered as a label-by-period pivot instead of flat rows.
func (h *Handler) HandleFacts(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if !h.requireClient(w) {
		return
	}

	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		http.Error(w, "ticker parameter is required", http.StatusBadRequest)
		return
	}

	company, ok, err := h.client.Resolve(r.Context(), ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if !ok {
		http.Error(w, "unknown ticker", http.StatusNotFound)
		return
	}

	facts, err := h.client.CompanyFacts(r.Context(), company)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if form := r.URL.Query().Get("form"); form != "" {
		index, err := h.client.FetchIndex(r.Context(), company)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"company": company,
			"form":    form,
			"pivot":   edgar.PivotFactsByForm(facts, index, form),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"company": company,
		"facts":   facts,
	})
}

func splitTickers(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func yearRange(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	start, err := strconv.Atoi(q.Get("start"))
	if err != nil {
		return 0, 0, fmt.Errorf("start parameter must be a year")
	}
	end, err := strconv.Atoi(q.Get("end"))
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("end parameter must be a year >= start")
	}
	return start, end, nil
}
