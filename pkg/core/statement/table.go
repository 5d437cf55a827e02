package statement

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Table is a parsed financial statement: rows are taxonomy line-item
// tags, columns are statement dates, cells are scaled signed values.
// A Table always has at least one row; an unparseable or empty statement
// surfaces as an UnavailableError instead.
type Table struct {
	Dates []time.Time
	Rows  []Row
}

// Row is one line item. Values align with Table.Dates; nil marks a cell
// the filing did not report for that date.
type Row struct {
	Tag    string
	Values []*float64
}

// monthAbbrevs expands three-letter month tokens to the full names the
// date parser expects, mirroring the header normalization step.
var monthAbbrevs = map[string]string{
	"Jan": "January", "Feb": "February", "Mar": "March", "Apr": "April",
	"May": "May", "Jun": "June", "Jul": "July", "Aug": "August",
	"Sep": "September", "Oct": "October", "Nov": "November", "Dec": "December",
}

// standardizeDate rewrites a column header like "Dec. 31, 2023" to
// "December 31, 2023": abbreviations expanded, periods stripped.
func standardizeDate(header string) string {
	fields := strings.Fields(header)
	for i, field := range fields {
		token := strings.TrimSuffix(field, ".")
		if full, ok := monthAbbrevs[token]; ok {
			fields[i] = full
		} else {
			fields[i] = strings.ReplaceAll(field, ".", "")
		}
	}
	return strings.Join(fields, " ")
}

// parseHeaderDate parses a normalized statement column header. Headers
// that are not dates (spanning cells like "12 Months Ended") fail to
// parse and are skipped by the caller.
func parseHeaderDate(header string) (time.Time, bool) {
	normalized := standardizeDate(strings.TrimSpace(header))
	for _, layout := range []string{"January 2, 2006", "January 2 2006", "2006-01-02"} {
		if d, err := time.Parse(layout, normalized); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// cleanNumericCell strips currency symbols, thousands separators,
// parenthesis markers and whitespace, keeping only digits and decimal
// points. Returns false when nothing numeric remains.
func cleanNumericCell(text string) (float64, bool) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// hasValues reports whether the row carries at least one numeric cell.
func (r Row) hasValues() bool {
	for _, v := range r.Values {
		if v != nil {
			return true
		}
	}
	return false
}

// signature renders the row's tag and values into a dedup key.
func (r Row) signature() string {
	var b strings.Builder
	b.WriteString(r.Tag)
	for _, v := range r.Values {
		if v == nil {
			b.WriteString("|_")
		} else {
			fmt.Fprintf(&b, "|%g", *v)
		}
	}
	return b.String()
}

// dedupeRows removes duplicate rows, keeping the first occurrence.
// Duplicates arise when the same tag anchor appears in both the main and
// parenthetical sections of a rendered statement.
func dedupeRows(rows []Row) []Row {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := row.signature()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
