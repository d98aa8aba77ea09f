package tally

import (
	"sort"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
)

const (
	// StoredPartyLimit caps by_party at storage time: every stored document
	// keeps only its top entries, ranked before the upsert, not at query time.
	StoredPartyLimit = 5

	// DefaultTopN is the ranking depth when a caller does not ask for one.
	DefaultTopN = 5
)

// SortParties orders parties strictly descending by votes. Ties break
// ascending by candidate identifier so repeated runs produce the same order.
func SortParties(parties []v1.PartyResult) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].Votes != parties[j].Votes {
			return parties[i].Votes > parties[j].Votes
		}
		return parties[i].Candidate < parties[j].Candidate
	})
}

// TruncateParties returns a sorted copy of parties limited to the top n.
// The input slice is not modified.
func TruncateParties(parties []v1.PartyResult, n int) []v1.PartyResult {
	if n <= 0 {
		n = DefaultTopN
	}
	out := make([]v1.PartyResult, len(parties))
	copy(out, parties)
	SortParties(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopParties returns the district's top n candidates from its best available
// source: the ED result when present, else the postal vote result, else the
// first polling division (lowest pd_code, so the choice is deterministic).
// Polling divisions are not summed together here; only the first is
// consulted.
func TopParties(rec *v1.DistrictRecord, n int) []v1.PartyResult {
	return TruncateParties(rankingSource(rec), n)
}

// IslandTopParties accumulates votes per candidate across every district's
// selected by_party source and returns the top n by summed votes. Party
// metadata comes from the candidate's first occurrence, walking districts in
// code order so the pick is reproducible. Percentages are not recomputed
// across districts; island ranking compares raw vote totals only.
func IslandTopParties(snap v1.Snapshot, n int) []v1.PartyResult {
	if n <= 0 {
		n = DefaultTopN
	}

	codes := make([]string, 0, len(snap))
	for code := range snap {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	totals := make(map[string]*v1.PartyResult)
	for _, code := range codes {
		for _, p := range rankingSource(snap[code]) {
			if acc, ok := totals[p.Candidate]; ok {
				acc.Votes += p.Votes
				continue
			}
			totals[p.Candidate] = &v1.PartyResult{
				Candidate: p.Candidate,
				PartyName: p.PartyName,
				PartyCode: p.PartyCode,
				Votes:     p.Votes,
			}
		}
	}

	ranked := make([]v1.PartyResult, 0, len(totals))
	for _, p := range totals {
		ranked = append(ranked, *p)
	}
	SortParties(ranked)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// rankingSource picks the by_party list for a district: ED, else PV, else the
// polling division with the lowest code.
func rankingSource(rec *v1.DistrictRecord) []v1.PartyResult {
	if rec == nil {
		return nil
	}
	if rec.ED != nil && len(rec.ED.ByParty) > 0 {
		return rec.ED.ByParty
	}

	pvKeys := make([]string, 0, len(rec.PV))
	for k := range rec.PV {
		pvKeys = append(pvKeys, k)
	}
	sort.Strings(pvKeys)
	for _, k := range pvKeys {
		if doc := rec.PV[k]; doc != nil && len(doc.ByParty) > 0 {
			return doc.ByParty
		}
	}

	pdKeys := make([]string, 0, len(rec.PD))
	for k := range rec.PD {
		pdKeys = append(pdKeys, k)
	}
	sort.Strings(pdKeys)
	for _, k := range pdKeys {
		if doc := rec.PD[k]; doc != nil && len(doc.ByParty) > 0 {
			return doc.ByParty
		}
	}
	return nil
}
