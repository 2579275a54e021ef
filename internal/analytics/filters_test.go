package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAll(t *testing.T) {
	for _, v := range []string{"", "  ", "all", "ALL", "Alle", "alle"} {
		require.True(t, IsAll(v), v)
	}
	for _, v := range []string{"Norge", "Sales", "allegro"} {
		require.False(t, IsAll(v), v)
	}
}

func TestApply_NoFilterIsIdentity(t *testing.T) {
	ds := sampleDataset()
	for _, f := range []Filters{{}, {Country: "Alle", Department: "all", Seniority: "", JobFamily: "ALLE"}} {
		got := f.Apply(ds.Employees)
		require.Equal(t, ds.Employees, got)
	}
}

func TestApply_MonotoneAndOrderPreserving(t *testing.T) {
	ds := sampleDataset()
	cases := []struct {
		name    string
		filters Filters
		wantIDs []string
	}{
		{"country", Filters{Country: "Norge"}, []string{"E1", "E2", "E3", "E4"}},
		{"department", Filters{Department: "Engineering"}, []string{"E1", "E3", "E4"}},
		{"department and seniority", Filters{Department: "Engineering", Seniority: "Director"}, []string{"E4"}},
		{"job family", Filters{JobFamily: "Management"}, []string{"E4"}},
		{"no match", Filters{Country: "Danmark"}, nil},
		{"conflicting", Filters{Department: "Sales", JobFamily: "Management"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filters.Apply(ds.Employees)
			require.LessOrEqual(t, len(got), len(ds.Employees))
			var ids []string
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			require.Equal(t, tc.wantIDs, ids)
			require.Equal(t, got, tc.filters.Apply(ds.Employees))
		})
	}
}

func TestNewView_SplitsActive(t *testing.T) {
	v := NewView(sampleDataset(), Filters{Department: "Engineering"})
	require.Len(t, v.All, 3)
	require.Len(t, v.Active, 2)
	for _, e := range v.Active {
		require.True(t, e.Active())
	}
}

func TestFilters_HashAndLabel(t *testing.T) {
	a := Filters{Country: "Norge"}
	require.Equal(t, a.Hash(), Filters{Country: " Norge ", Department: "Alle"}.Hash())
	require.NotEqual(t, a.Hash(), Filters{Country: "Sverige"}.Hash())
	require.Equal(t, Filters{}.Hash(), Filters{Country: "all"}.Hash())

	require.Equal(t, "Norge", a.Label())
	require.Equal(t, "hele organisasjonen", Filters{}.Label())
}

func TestNewView_SeniorityIgnoresCase(t *testing.T) {
	ds := sampleDataset()
	want := NewView(ds, Filters{Seniority: "Mid"})
	require.Len(t, want.Active, 2)

	for _, sel := range []string{"mid", " MID ", "Mid"} {
		v := NewView(ds, Filters{Seniority: sel})
		require.Equal(t, want.Active, v.Active, sel)
		require.Equal(t, "Mid", v.Filters.Seniority)
		require.Equal(t, want.Filters.Hash(), Filters{Seniority: sel}.Hash())
	}

	require.Empty(t, NewView(ds, Filters{Seniority: "Intern"}).Active)
}

func TestNormalize_TrimsSelections(t *testing.T) {
	f := Filters{Country: " Norge ", Department: "Engineering ", Seniority: "director", JobFamily: " Management"}.Normalize()
	require.Equal(t, Filters{Country: "Norge", Department: "Engineering", Seniority: "Director", JobFamily: "Management"}, f)
	require.Equal(t, "Alle", Filters{Seniority: " Alle "}.Normalize().Seniority)
}
