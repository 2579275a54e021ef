package analytics

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/hrpulse/config"
	"github.com/vinodismyname/hrpulse/internal/dataset"
)

func TestOptions(t *testing.T) {
	ds := sampleDataset()
	ds.Employees[1].Country = "Sverige"
	opts := Options(ds)
	require.Equal(t, []string{"Norge", "Sverige"}, opts.Countries)
	require.Equal(t, []string{"Engineering", "Sales"}, opts.Departments)
	require.Equal(t, []string{"Individual Contributor", "Management"}, opts.JobFamilies)
	require.Equal(t, []string{"Junior", "Mid", "Senior", "Lead", "Director", "VP", "C-Level"}, opts.Seniority)
}

func TestExecutiveSummary(t *testing.T) {
	s := snapshotOf(sampleDataset(), Filters{})
	text := ExecutiveSummary(s, Filters{}, DefaultThresholds())
	require.Contains(t, text, "### Nøkkelinnsikter for hele organisasjonen")
	require.Contains(t, text, "**Headcount:** 3 ansatte")
	require.Contains(t, text, "(På mål)")

	s[MetricAvgEngagement] = 5
	require.Contains(t, ExecutiveSummary(s, Filters{Country: "Norge"}, DefaultThresholds()), "(Under mål)")
}

func TestHighRiskEmployees_SortedBySalary(t *testing.T) {
	ds := uniform(5, func(i int, e *dataset.Employee) {
		e.Salary = float64(500000 + i*10000)
		if i != 2 {
			e.FlightRisk = dataset.RiskHigh
		}
	})
	rows := HighRiskEmployees(NewView(ds, Filters{}))
	require.Len(t, rows, 4)
	for i := 1; i < len(rows); i++ {
		require.GreaterOrEqual(t, rows[i-1].Salary, rows[i].Salary)
	}
	require.Equal(t, 540000.0, rows[0].Salary)
	require.Equal(t, "Mid", rows[0].Seniority)
}

func TestUnderpaidEmployees(t *testing.T) {
	ds := uniform(4, func(i int, e *dataset.Employee) {
		e.Salary = []float64{480000, 600000, 530000, 0}[i]
		if i == 3 {
			e.BandMin, e.BandMax = 0, 0
		}
	})
	rows := UnderpaidEmployees(NewView(ds, Filters{}))
	require.Len(t, rows, 2)
	require.Equal(t, 0.8, rows[0].CompaRatio)
	require.InDelta(t, 0.88, rows[1].CompaRatio, 0.001)

	_, ok := ListEmployees(NewView(ds, Filters{}), "unknown")
	require.False(t, ok)
}

func TestRecruitmentFunnel(t *testing.T) {
	ds := sampleDataset()
	f := RecruitmentFunnel(ds, Filters{})
	require.Equal(t, Funnel{Requisitions: 2, Screened: 80, Interviewed: 15, Hired: 2, InterviewRate: 18.75, HireRate: 13.33}, f)

	f = RecruitmentFunnel(ds, Filters{Country: "Norge", Department: "Engineering"})
	require.Equal(t, 1, f.Hired)
	require.Equal(t, 20.0, f.InterviewRate)

	require.Equal(t, Funnel{}, RecruitmentFunnel(ds, Filters{Department: "HR"}))
}

func TestLoadTuning(t *testing.T) {
	tu, err := LoadTuning("")
	require.NoError(t, err)
	require.Equal(t, DefaultTuning(), tu)

	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  turnover_max: 12\n  mobility_min: 5\nsimulator:\n  risk_reduction_cap: 60\n"), 0o600))
	tu, err = LoadTuning(path)
	require.NoError(t, err)
	require.Equal(t, 12.0, tu.Thresholds.TurnoverMax)
	require.Equal(t, 5.0, tu.Thresholds.MobilityMin)
	require.Equal(t, 6.5, tu.Thresholds.EngagementMin)
	require.Equal(t, 60.0, tu.Simulator.RiskReductionCap)
	require.Equal(t, 1.8, tu.Simulator.ReplacementCostFactor)

	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  compa_ratio_min: 1.2\n"), 0o600))
	_, err = LoadTuning(path)
	require.Error(t, err)

	_, err = LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestTranscriptStore(t *testing.T) {
	s := NewTranscriptStore(2)
	s.clock = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	id, n := s.Append("", Exchange{Question: "q1", Topic: TopicGeneral})
	require.NotEmpty(t, id)
	require.Equal(t, 1, n)

	_, n = s.Append(id, Exchange{Question: "q2"})
	require.Equal(t, 2, n)
	_, n = s.Append(id, Exchange{Question: "q3"})
	require.Equal(t, 2, n)

	h, ok := s.History(id)
	require.True(t, ok)
	require.Equal(t, "q2", h[0].Question)
	require.Equal(t, "q3", h[1].Question)
	require.False(t, h[0].AskedAt.IsZero())

	_, ok = s.History("missing")
	require.False(t, ok)
}

func TestTranscriptStore_DefaultCap(t *testing.T) {
	s := NewTranscriptStore(0)
	var id string
	var n int
	for i := range config.DefaultTranscriptMaxExchanges + 5 {
		id, n = s.Append(id, Exchange{Question: fmt.Sprintf("q%d", i)})
	}
	require.Equal(t, config.DefaultTranscriptMaxExchanges, n)
	h, ok := s.History(id)
	require.True(t, ok)
	require.Equal(t, "q5", h[0].Question)
}
