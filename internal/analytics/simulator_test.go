package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/hrpulse/internal/dataset"
)

func TestRiskReduction_MonotoneAndClamped(t *testing.T) {
	m := DefaultSimulatorModel()

	prev := -1.0
	for pct := 0.0; pct <= 60; pct += 2.5 {
		r := m.RiskReduction(Scenario{SalaryIncreasePct: pct})
		require.GreaterOrEqual(t, r, prev)
		prev = r
	}
	prev = -1.0
	for h := 0.0; h <= 200; h += 5 {
		r := m.RiskReduction(Scenario{SalaryIncreasePct: 5, TrainingHours: h})
		require.GreaterOrEqual(t, r, prev)
		prev = r
	}
	without := m.RiskReduction(Scenario{SalaryIncreasePct: 5, TrainingHours: 10})
	with := m.RiskReduction(Scenario{SalaryIncreasePct: 5, TrainingHours: 10, EngagementProgram: true})
	require.Equal(t, without+10, with)

	require.Equal(t, 80.0, m.RiskReduction(Scenario{SalaryIncreasePct: 50}))
	require.Equal(t, 80.0, m.RiskReduction(Scenario{SalaryIncreasePct: 20, TrainingHours: 400, EngagementProgram: true}))
	require.Equal(t, 0.0, m.RiskReduction(Scenario{}))
}

func highRiskView(n int) View {
	ds := uniform(n, func(i int, e *dataset.Employee) {
		e.FlightRisk = dataset.RiskHigh
		if i%2 == 1 {
			e.Department = "Sales"
		}
	})
	return NewView(ds, Filters{})
}

func TestSimulate_Projection(t *testing.T) {
	v := highRiskView(4)
	p := DefaultSimulatorModel().Simulate(v, Scenario{
		Department: "Engineering", SalaryIncreasePct: 5, TrainingHours: 10, EngagementProgram: true,
	})

	require.Equal(t, 2, p.HighRiskHeadcount)
	require.Equal(t, 600000.0, p.AvgSalary)
	require.Equal(t, 25.0, p.RiskReductionPct)
	require.InDelta(t, 0.5, p.RetainedHeadcount, 1e-9)
	require.InDelta(t, 1.5, p.RemainingHighRisk, 1e-9)
	require.InDelta(t, 2160000.0, p.CurrentCost, 1e-6)
	require.InDelta(t, 120000.0, p.InterventionCost, 1e-6)
	require.InDelta(t, 540000.0, p.ProjectedSavings, 1e-6)
	require.InDelta(t, 420000.0, p.NetBenefit, 1e-6)
	require.True(t, p.Profitable)
	require.NotNil(t, p.ROI)
	require.InDelta(t, 350.0, *p.ROI, 1e-6)
	require.InDelta(t, 1740000.0, p.CostAfter, 1e-6)
	require.Contains(t, p.Summary, "ROI på tiltak: 350%")
	require.Equal(t, "Kostnad Før vs Etter Tiltak", p.Chart.Title)
}

func TestSimulate_NoInterventionHasNoROI(t *testing.T) {
	p := DefaultSimulatorModel().Simulate(highRiskView(3), Scenario{})
	require.Nil(t, p.ROI)
	require.Equal(t, 0.0, p.InterventionCost)
	require.Equal(t, p.CurrentCost, p.CostAfter)
	require.False(t, p.Profitable)
}

func TestSimulate_EmptyGroup(t *testing.T) {
	p := DefaultSimulatorModel().Simulate(highRiskView(3), Scenario{Seniority: "VP", SalaryIncreasePct: 10})
	require.Zero(t, p.HighRiskHeadcount)
	require.Zero(t, p.CurrentCost)
	require.Nil(t, p.ROI)
}

func TestSimulate_TargetSeniorityIgnoresCase(t *testing.T) {
	v := highRiskView(4)
	for _, sel := range []string{"Mid", "mid", " MID "} {
		p := DefaultSimulatorModel().Simulate(v, Scenario{Department: "Engineering", Seniority: sel, SalaryIncreasePct: 5})
		require.Equal(t, 2, p.HighRiskHeadcount, sel)
	}
}
