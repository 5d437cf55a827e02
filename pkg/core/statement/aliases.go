package statement

// Kind selects one of the three financial statement types.
type Kind string

const (
	BalanceSheet      Kind = "balance_sheet"
	IncomeStatement   Kind = "income_statement"
	CashFlowStatement Kind = "cash_flow_statement"
)

// statementAliases maps each statement kind to the human-readable short
// names filers use in FilingSummary.xml. The order is load-bearing: the
// extractor takes the first alias with a manifest entry, so more common
// spellings come first. Do not sort.
var statementAliases = map[Kind][]string{
	BalanceSheet: {
		"balance sheet",
		"balance sheets",
		"statement of financial position",
		"consolidated balance sheets",
		"consolidated balance sheet",
		"consolidated financial position",
		"consolidated balance sheets - southern",
		"consolidated statements of financial position",
		"consolidated statement of financial position",
		"consolidated statements of financial condition",
		"combined and consolidated balance sheet",
		"condensed consolidated balance sheets",
		"consolidated balance sheets, as of december 31",
		"dow consolidated balance sheets",
		"consolidated balance sheets (unaudited)",
		"balance sheets (parenthetical)",
	},
	IncomeStatement: {
		"income statement",
		"income statements",
		"statement of earnings (loss)",
		"statements of consolidated income",
		"consolidated statements of operations",
		"consolidated statement of operations",
		"consolidated statements of earnings",
		"consolidated statement of earnings",
		"consolidated statements of income",
		"consolidated statement of income",
		"consolidated income statements",
		"consolidated income statement",
		"condensed consolidated statements of earnings",
		"consolidated results of operations",
		"consolidated statements of income (loss)",
		"consolidated statements of income - southern",
		"consolidated statements of operations and comprehensive income",
		"consolidated statements of comprehensive income",
		"statements of operations",
	},
	CashFlowStatement: {
		"cash flows statement",
		"cash flows statements",
		"statement of cash flows",
		"statements of cash flows",
		"statements of consolidated cash flows",
		"consolidated statements of cash flows",
		"consolidated statement of cash flows",
		"consolidated statement of cash flow",
		"consolidated cash flows statements",
		"consolidated cash flow statements",
		"condensed consolidated statements of cash flows",
		"consolidated statements of cash flows (unaudited)",
		"consolidated statements of cash flows - southern",
	},
}

// Aliases returns the ordered alias list for a statement kind.
func Aliases(kind Kind) []string {
	return statementAliases[kind]
}
