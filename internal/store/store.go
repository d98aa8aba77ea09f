package store

import (
	"sync"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
	"github.com/tally-lab/island-tally/internal/core/classify"
	"github.com/tally-lab/island-tally/internal/core/tally"
)

// DistrictStore is the authoritative in-memory map from district code to
// that district's merged PV/PD/ED records. It is created empty at process
// start, mutated only by successful ingests, and never persisted.
//
// The store guards itself with an RWMutex so query reads never race a
// mutation. The ingest engine additionally serializes upsert+broadcast as one
// atomic unit; see internal/ingest.
type DistrictStore struct {
	mu        sync.RWMutex
	districts map[string]*v1.DistrictRecord
}

func New() *DistrictStore {
	return &DistrictStore{districts: make(map[string]*v1.DistrictRecord)}
}

// Upsert merges a classified document into its district record and returns a
// deep copy of the updated record. Replace-by-key per slot, so re-ingesting
// the same document is idempotent:
//
//   - ED replaces the single ed slot unconditionally
//   - PD replaces the entry at pd[pd_code]
//   - PV replaces the single postal slot, keyed by district code
//
// The stored by_party list is truncated to the top entries before the record
// is mutated. The district record is created lazily on first ingest and never
// deleted; its name follows the latest document that supplies a non-empty one.
func (s *DistrictStore) Upsert(level classify.Level, doc *v1.ResultDocument) *v1.DistrictRecord {
	stored := doc.Clone()
	stored.ByParty = tally.TruncateParties(stored.ByParty, tally.StoredPartyLimit)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.districts[stored.EDCode]
	if !ok {
		rec = &v1.DistrictRecord{EDCode: stored.EDCode}
		s.districts[stored.EDCode] = rec
	}
	if name := stored.Name(); name != "" {
		rec.DistrictName = name
	}

	switch level {
	case classify.ElectoralDistrict:
		rec.ED = stored
	case classify.PollingDivision:
		if rec.PD == nil {
			rec.PD = make(map[string]*v1.ResultDocument)
		}
		rec.PD[stored.PDCode] = stored
	case classify.PostalVote:
		if rec.PV == nil {
			rec.PV = make(map[string]*v1.ResultDocument)
		}
		// One postal slot per district; a later batch replaces the prior one.
		rec.PV[stored.EDCode] = stored
	}

	return rec.Clone()
}

// Get returns a deep copy of one district record.
func (s *DistrictStore) Get(code string) (*v1.DistrictRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.districts[code]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Snapshot returns a deep copy of the entire store. Callers own the result;
// mutating it cannot affect the store or other snapshot holders.
func (s *DistrictStore) Snapshot() v1.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(v1.Snapshot, len(s.districts))
	for code, rec := range s.districts {
		snap[code] = rec.Clone()
	}
	return snap
}

// Len reports how many districts have received at least one result.
func (s *DistrictStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.districts)
}
