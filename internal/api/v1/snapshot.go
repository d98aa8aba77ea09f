package v1

// DistrictRecord is the merged view of one district's uploads. The uppercase
// ED/PV/PD JSON keys are the shape observers have always received and are
// kept for compatibility.
type DistrictRecord struct {
	EDCode       string `json:"ed_code"`
	DistrictName string `json:"district_name"`

	// ED holds the certified final result. At most one; a later upload
	// replaces it.
	ED *ResultDocument `json:"ED,omitempty"`

	// PV holds postal vote results keyed by district code. The shape permits
	// several entries but the engine writes a single slot per district.
	PV map[string]*ResultDocument `json:"PV,omitempty"`

	// PD holds polling division results keyed by pd_code.
	PD map[string]*ResultDocument `json:"PD,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *DistrictRecord) Clone() *DistrictRecord {
	if r == nil {
		return nil
	}
	cp := &DistrictRecord{
		EDCode:       r.EDCode,
		DistrictName: r.DistrictName,
		ED:           r.ED.Clone(),
	}
	if r.PV != nil {
		cp.PV = make(map[string]*ResultDocument, len(r.PV))
		for k, doc := range r.PV {
			cp.PV[k] = doc.Clone()
		}
	}
	if r.PD != nil {
		cp.PD = make(map[string]*ResultDocument, len(r.PD))
		for k, doc := range r.PD {
			cp.PD[k] = doc.Clone()
		}
	}
	return cp
}

// Snapshot is the complete store keyed by district code. Observers receive it
// whole on every change; there is no delta protocol.
type Snapshot map[string]*DistrictRecord

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	cp := make(Snapshot, len(s))
	for code, rec := range s {
		cp[code] = rec.Clone()
	}
	return cp
}
