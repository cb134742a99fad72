// Package partner holds the static per partner configuration. Adding a
// partner is a data change here, never a code branch elsewhere. The catalogue
// is built once at init and read only afterwards, so concurrent runs share it
// without locking
package partner

import (
	perr "donorpipe/internal/platform/errors"
)

// Report selects which column catalogue a partner's exports use
type Report string

// Report shapes currently produced upstream
const (
	ReportContribution Report = "contribution"
	ReportRecurring    Report = "recurring_commitment"
)

// Config is one partner's static configuration
type Config struct {
	ID string
	// SearchKey is the mailbox query that selects this partner's report email
	SearchKey string
	// Report picks the column catalogue
	Report Report
	// Destination defaults, overridable per request
	DefaultDataset string
	DefaultTable   string
}

var catalogue = map[string]Config{
	"whitestork": {
		ID:             "whitestork",
		SearchKey:      `subject:"EveryAction Scheduled Report - Exactius_Contribution_Report - whitestork"`,
		Report:         ReportContribution,
		DefaultDataset: "staging",
		DefaultTable:   "contribution_report",
	},
	"exactius": {
		ID:             "exactius",
		SearchKey:      `subject:"EveryAction Scheduled Report - Exactius_Contribution_Report - exactius"`,
		Report:         ReportContribution,
		DefaultDataset: "staging",
		DefaultTable:   "contribution_report",
	},
	"styt": {
		ID:             "styt",
		SearchKey:      `subject:"EveryAction Scheduled Report - Exactius_Styt_Contribution_Report"`,
		Report:         ReportContribution,
		DefaultDataset: "staging",
		DefaultTable:   "contribution_report",
	},
	"whitestork_recurring": {
		ID:             "whitestork_recurring",
		SearchKey:      `subject:"EveryAction Scheduled Report - Recurring_Commitment_Report - whitestork"`,
		Report:         ReportRecurring,
		DefaultDataset: "staging",
		DefaultTable:   "recurring_commitments",
	},
}

// Lookup returns the config for id. Unknown partners are a config error
// surfaced immediately to the caller, never retried
func Lookup(id string) (Config, error) {
	c, ok := catalogue[id]
	if !ok {
		return Config{}, perr.WithField(perr.InvalidArgf("unknown partner %q", id), "partner")
	}
	return c, nil
}

// IDs returns the known partner ids, for diagnostics
func IDs() []string {
	out := make([]string, 0, len(catalogue))
	for id := range catalogue {
		out = append(out, id)
	}
	return out
}
