package tally

import (
	v1 "github.com/tally-lab/island-tally/internal/api/v1"
)

// DistrictTotals resolves one district's vote totals.
//
// A stored ED result is authoritative: it is the certified count and always
// wins over any partial PV/PD sum, even when the partial sum is numerically
// larger. Without an ED result the totals are the componentwise sum of every
// postal vote and polling division summary. percent_polled is derived from
// the resolved counts in both branches; the uploaded value is never trusted
// at this scope.
func DistrictTotals(rec *v1.DistrictRecord) v1.Summary {
	if rec == nil {
		return v1.Summary{}.DerivePercent()
	}

	if rec.ED != nil && rec.ED.Summary != nil {
		return rec.ED.Summary.DerivePercent()
	}

	var total v1.Summary
	for _, doc := range rec.PV {
		if doc != nil && doc.Summary != nil {
			total = total.Add(*doc.Summary)
		}
	}
	for _, doc := range rec.PD {
		if doc != nil && doc.Summary != nil {
			total = total.Add(*doc.Summary)
		}
	}
	return total.DerivePercent()
}

// IslandTotals sums every district's already-resolved totals. Resolving per
// district first is what prevents double counting when a district has both an
// ED result and PV/PD partials. percent_polled is derived once over the sums.
func IslandTotals(snap v1.Snapshot) v1.Summary {
	var total v1.Summary
	for _, rec := range snap {
		total = total.Add(DistrictTotals(rec))
	}
	return total.DerivePercent()
}
