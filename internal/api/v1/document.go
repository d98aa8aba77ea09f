package v1

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Document levels as declared on the wire. Older feeds omit the level field
// entirely; see internal/core/classify for the fallback rules.
const (
	LevelElectoralDistrict = "ELECTORAL-DISTRICT"
	LevelPollingDivision   = "POLLING-DIVISION"
	LevelPostalVote        = "POSTAL-VOTE"
)

// Summary carries the vote totals of a single result document.
// Field names are the external wire contract and must stay bit-exact.
type Summary struct {
	Valid       int64 `json:"valid"`
	Rejected    int64 `json:"rejected"`
	Polled      int64 `json:"polled"`
	TotalVoters int64 `json:"total_voters"`

	// PercentPolled is derived. At aggregate scopes it is always recomputed
	// from polled/total_voters; the uploaded value is never trusted there.
	PercentPolled decimal.Decimal `json:"percent_polled"`
}

// DerivePercent returns the summary with percent_polled recomputed as
// 100 * polled / total_voters, rounded to two places. Zero when no voters.
func (s Summary) DerivePercent() Summary {
	if s.TotalVoters <= 0 {
		s.PercentPolled = decimal.Zero
		return s
	}
	s.PercentPolled = decimal.NewFromInt(s.Polled).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(s.TotalVoters)).
		Round(2)
	return s
}

// Add returns the componentwise sum of the two summaries' counts.
// percent_polled is not summed; callers derive it once over the result.
func (s Summary) Add(o Summary) Summary {
	return Summary{
		Valid:       s.Valid + o.Valid,
		Rejected:    s.Rejected + o.Rejected,
		Polled:      s.Polled + o.Polled,
		TotalVoters: s.TotalVoters + o.TotalVoters,
	}
}

// PartyResult is one candidate's line in a result document.
// Candidate is the opaque identifier the feed supplies; it doubles as the
// display name and as the ranking tie-break key.
type PartyResult struct {
	Candidate  string          `json:"candidate"`
	PartyName  string          `json:"party_name"`
	PartyCode  string          `json:"party_code"`
	Votes      int64           `json:"votes"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ResultDocument is the unit of ingestion: one uploaded result at electoral
// district, polling division, or postal vote granularity.
type ResultDocument struct {
	// Level is the declared granularity (see Level* constants). Older
	// document shapes omit it; ResultType/Type and the name fields exist
	// only so the classifier can recognize those.
	Level      string `json:"level,omitempty"`
	ResultType string `json:"result_type,omitempty"`
	Type       string `json:"type,omitempty"`

	// EDCode identifies the electoral district. Required on every document.
	EDCode string `json:"ed_code"`
	EDName string `json:"ed_name,omitempty"`

	// DistrictName is an alternate name field seen on older documents.
	DistrictName string `json:"district_name,omitempty"`

	// PDCode identifies the polling division. Required for PD documents only.
	PDCode string `json:"pd_code,omitempty"`
	PDName string `json:"pd_name,omitempty"`

	Summary *Summary      `json:"summary,omitempty"`
	ByParty []PartyResult `json:"by_party,omitempty"`
}

// Name returns the best available district name, preferring ed_name over the
// legacy district_name field. Empty when the document carries neither.
func (d *ResultDocument) Name() string {
	if d.EDName != "" {
		return d.EDName
	}
	return d.DistrictName
}

// Validate checks the document's numeric sanity. Presence of required keys
// (ed_code, pd_code for PD) is enforced by the ingest engine, which needs to
// report those as distinct error kinds.
func (d *ResultDocument) Validate() error {
	if d.Summary != nil {
		s := d.Summary
		if s.Valid < 0 || s.Rejected < 0 || s.Polled < 0 || s.TotalVoters < 0 {
			return fmt.Errorf("summary counts must be non-negative")
		}
	}
	for i := range d.ByParty {
		if d.ByParty[i].Votes < 0 {
			return fmt.Errorf("by_party[%d].votes must be non-negative", i)
		}
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *ResultDocument) Clone() *ResultDocument {
	if d == nil {
		return nil
	}
	cp := *d
	if d.Summary != nil {
		s := *d.Summary
		cp.Summary = &s
	}
	if d.ByParty != nil {
		cp.ByParty = make([]PartyResult, len(d.ByParty))
		copy(cp.ByParty, d.ByParty)
	}
	return &cp
}
