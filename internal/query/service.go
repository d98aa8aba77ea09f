package query

import (
	"sort"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
	"github.com/tally-lab/island-tally/internal/core/tally"
	"github.com/tally-lab/island-tally/internal/store"
)

// Service answers read queries over the district store. Totals and rankings
// are computed on demand from a consistent snapshot, never cached.
type Service struct {
	store       *store.DistrictStore
	defaultTopN int
}

func NewService(st *store.DistrictStore, defaultTopN int) *Service {
	if st == nil {
		panic("query: store must not be nil")
	}
	if defaultTopN <= 0 {
		defaultTopN = tally.DefaultTopN
	}
	return &Service{store: st, defaultTopN: defaultTopN}
}

// Snapshot returns the entire current store.
func (s *Service) Snapshot() v1.Snapshot {
	return s.store.Snapshot()
}

// Districts returns every district record ordered by code.
func (s *Service) Districts() []*v1.DistrictRecord {
	snap := s.store.Snapshot()
	codes := make([]string, 0, len(snap))
	for code := range snap {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]*v1.DistrictRecord, 0, len(codes))
	for _, code := range codes {
		out = append(out, snap[code])
	}
	return out
}

// District returns one district's merged record.
func (s *Service) District(code string) (*v1.DistrictRecord, bool) {
	return s.store.Get(code)
}

// DistrictSummary returns a district's resolved totals: the ED summary when
// certified results exist, the PV+PD sum otherwise.
func (s *Service) DistrictSummary(code string) (v1.Summary, bool) {
	rec, ok := s.store.Get(code)
	if !ok {
		return v1.Summary{}, false
	}
	return tally.DistrictTotals(rec), true
}

// IslandSummary returns island-wide totals across all districts.
func (s *Service) IslandSummary() v1.Summary {
	return tally.IslandTotals(s.store.Snapshot())
}

// TopCandidates returns a district's top n candidates.
func (s *Service) TopCandidates(code string, n int) ([]v1.PartyResult, bool) {
	rec, ok := s.store.Get(code)
	if !ok {
		return nil, false
	}
	if n <= 0 {
		n = s.defaultTopN
	}
	return tally.TopParties(rec, n), true
}

// IslandTopCandidates returns the island-wide top n candidates by summed
// votes.
func (s *Service) IslandTopCandidates(n int) []v1.PartyResult {
	if n <= 0 {
		n = s.defaultTopN
	}
	return tally.IslandTopParties(s.store.Snapshot(), n)
}
