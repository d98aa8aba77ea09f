package tally

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
)

func doc(valid, rejected, polled, voters int64) *v1.ResultDocument {
	return &v1.ResultDocument{
		Summary: &v1.Summary{Valid: valid, Rejected: rejected, Polled: polled, TotalVoters: voters},
	}
}

func TestDistrictTotals_EDIsAuthoritative(t *testing.T) {
	// The certified result wins even though the partials sum to less.
	rec := &v1.DistrictRecord{
		EDCode: "01",
		ED:     doc(100, 5, 105, 200),
		PV:     map[string]*v1.ResultDocument{"01": doc(30, 1, 31, 60)},
		PD:     map[string]*v1.ResultDocument{"01-A": doc(50, 2, 52, 100)},
	}

	got := DistrictTotals(rec)
	require.Equal(t, int64(100), got.Valid)
	require.Equal(t, int64(5), got.Rejected)
	require.Equal(t, int64(105), got.Polled)
	require.Equal(t, int64(200), got.TotalVoters)
}

func TestDistrictTotals_SumsPVAndPDWithoutED(t *testing.T) {
	rec := &v1.DistrictRecord{
		EDCode: "01",
		PV:     map[string]*v1.ResultDocument{"01": doc(10, 1, 11, 50)},
		PD: map[string]*v1.ResultDocument{
			"01-A": doc(20, 2, 22, 100),
			"01-B": doc(30, 3, 33, 100),
		},
	}

	got := DistrictTotals(rec)
	require.Equal(t, int64(60), got.Valid)
	require.Equal(t, int64(6), got.Rejected)
	require.Equal(t, int64(66), got.Polled)
	require.Equal(t, int64(250), got.TotalVoters)
}

func TestDistrictTotals_PercentIsDerivedNotEchoed(t *testing.T) {
	// The uploaded percent_polled is wrong on purpose; the resolved totals
	// must recompute it from the counts.
	d := doc(500, 10, 510, 1000)
	d.Summary.PercentPolled = decimal.NewFromInt(99)
	rec := &v1.DistrictRecord{EDCode: "D1", ED: d}

	got := DistrictTotals(rec)
	require.True(t, got.PercentPolled.Equal(decimal.NewFromFloat(51.0)),
		"expected 51, got %s", got.PercentPolled)
}

func TestDistrictTotals_ZeroVoters(t *testing.T) {
	rec := &v1.DistrictRecord{
		EDCode: "01",
		PD:     map[string]*v1.ResultDocument{"01-A": doc(0, 0, 0, 0)},
	}
	got := DistrictTotals(rec)
	require.True(t, got.PercentPolled.IsZero())
}

func TestDistrictTotals_NilRecord(t *testing.T) {
	got := DistrictTotals(nil)
	require.Equal(t, int64(0), got.Valid)
	require.True(t, got.PercentPolled.IsZero())
}

func TestIslandTotals_NoDoubleCounting(t *testing.T) {
	// District 01 has both a certified result and partials; only the
	// certified total may contribute. District 02 has partials only.
	snap := v1.Snapshot{
		"01": {
			EDCode: "01",
			ED:     doc(100, 0, 100, 400),
			PV:     map[string]*v1.ResultDocument{"01": doc(40, 0, 40, 100)},
			PD:     map[string]*v1.ResultDocument{"01-A": doc(40, 0, 40, 100)},
		},
		"02": {
			EDCode: "02",
			PD:     map[string]*v1.ResultDocument{"02-A": doc(50, 0, 50, 100)},
		},
	}

	got := IslandTotals(snap)
	require.Equal(t, int64(150), got.Valid)
	require.Equal(t, int64(150), got.Polled)
	require.Equal(t, int64(500), got.TotalVoters)
	require.True(t, got.PercentPolled.Equal(decimal.NewFromInt(30)),
		"expected 30, got %s", got.PercentPolled)
}

func TestIslandTotals_EmptySnapshot(t *testing.T) {
	got := IslandTotals(v1.Snapshot{})
	require.Equal(t, int64(0), got.Valid)
	require.True(t, got.PercentPolled.IsZero())
}

func TestSummaryDerivePercent_Rounding(t *testing.T) {
	s := v1.Summary{Polled: 1, TotalVoters: 3}.DerivePercent()
	require.True(t, s.PercentPolled.Equal(decimal.NewFromFloat(33.33)),
		"expected 33.33, got %s", s.PercentPolled)
}
