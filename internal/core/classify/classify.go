package classify

import (
	"strings"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
)

// Level is the classified granularity of a result document.
type Level string

const (
	ElectoralDistrict Level = "ED"
	PollingDivision   Level = "PD"
	PostalVote        Level = "PV"
	Unknown           Level = "UNKNOWN"
)

// Classify determines the granularity of a document. Pure function; no side
// effects.
//
// The declared level field wins when present. When it is absent or
// unrecognized (older document shapes), the fallback rules apply in priority
// order:
//
//  1. postal marker: result_type/type equals "postal", or any of the name
//     fields contains "postal" (case-insensitive) → PV
//  2. pd_code present → PD
//  3. ed_code and summary present, no pd_code → ED
//  4. otherwise Unknown
func Classify(doc *v1.ResultDocument) Level {
	if doc == nil {
		return Unknown
	}

	switch doc.Level {
	case v1.LevelElectoralDistrict:
		return ElectoralDistrict
	case v1.LevelPollingDivision:
		return PollingDivision
	case v1.LevelPostalVote:
		return PostalVote
	}

	if isPostal(doc) {
		return PostalVote
	}
	if doc.PDCode != "" {
		return PollingDivision
	}
	if doc.EDCode != "" && doc.Summary != nil {
		return ElectoralDistrict
	}
	return Unknown
}

func isPostal(doc *v1.ResultDocument) bool {
	if strings.EqualFold(doc.ResultType, "postal") || strings.EqualFold(doc.Type, "postal") {
		return true
	}
	for _, name := range []string{doc.EDName, doc.DistrictName, doc.PDName} {
		if name != "" && strings.Contains(strings.ToLower(name), "postal") {
			return true
		}
	}
	return false
}
