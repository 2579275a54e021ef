package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// Scenario is one what-if intervention over a sub-selection of the view.
type Scenario struct {
	Department        string  `json:"department,omitempty"`
	Seniority         string  `json:"seniority,omitempty"`
	SalaryIncreasePct float64 `json:"salary_increase_pct"`
	TrainingHours     float64 `json:"training_hours"`
	EngagementProgram bool    `json:"engagement_program"`
}

// Projection is the simulated outcome. ROI is nil when the intervention has
// no cost.
type Projection struct {
	HighRiskHeadcount int       `json:"high_risk_headcount"`
	AvgSalary         float64   `json:"avg_salary"`
	RiskReductionPct  float64   `json:"risk_reduction_pct"`
	RetainedHeadcount float64   `json:"retained_headcount"`
	RemainingHighRisk float64   `json:"remaining_high_risk"`
	CurrentCost       float64   `json:"current_cost"`
	InterventionCost  float64   `json:"intervention_cost"`
	ProjectedSavings  float64   `json:"projected_savings"`
	NetBenefit        float64   `json:"net_benefit"`
	Profitable        bool      `json:"profitable"`
	ROI               *float64  `json:"roi_pct,omitempty"`
	CostAfter         float64   `json:"cost_after"`
	Summary           string    `json:"summary"`
	Chart             ChartSpec `json:"chart"`
}

// RiskReduction is the capped linear effect of the three interventions.
func (m SimulatorModel) RiskReduction(s Scenario) float64 {
	r := m.SalaryEffectPerPct*s.SalaryIncreasePct + m.TrainingEffectPerHour*s.TrainingHours
	if s.EngagementProgram {
		r += m.ProgramEffect
	}
	return math.Min(r, m.RiskReductionCap)
}

// Simulate projects the scenario over the high flight-risk employees of the
// view's active rows, narrowed by the scenario's department and seniority.
func (m SimulatorModel) Simulate(v View, s Scenario) Projection {
	group := filterRows(v.Active, func(e dataset.Employee) bool {
		if !IsAll(s.Department) && e.Department != strings.TrimSpace(s.Department) {
			return false
		}
		if !IsAll(s.Seniority) && !matchSeniority(s.Seniority, e.Seniority) {
			return false
		}
		return e.FlightRisk == dataset.RiskHigh
	})

	n := float64(len(group))
	avg := mean(group, func(e dataset.Employee) float64 { return e.Salary })
	p := Projection{HighRiskHeadcount: len(group), AvgSalary: avg}

	p.RiskReductionPct = m.RiskReduction(s)
	p.RetainedHeadcount = n * p.RiskReductionPct / 100
	p.RemainingHighRisk = n - p.RetainedHeadcount
	p.CurrentCost = n * avg * m.ReplacementCostFactor

	p.InterventionCost = s.SalaryIncreasePct/100*avg*n + s.TrainingHours*m.TrainingCostPerHour*n
	if s.EngagementProgram {
		p.InterventionCost += m.ProgramFixedCost
	}
	p.ProjectedSavings = p.RetainedHeadcount * avg * m.ReplacementCostFactor
	p.NetBenefit = p.ProjectedSavings - p.InterventionCost
	p.Profitable = p.NetBenefit > 0
	p.CostAfter = p.CurrentCost - p.ProjectedSavings + p.InterventionCost

	if p.InterventionCost > 0 {
		roi := p.NetBenefit / p.InterventionCost * 100
		p.ROI = &roi
		p.Summary = fmt.Sprintf("ROI på tiltak: %.0f%% - For hver krone investert får dere %.2f NOK tilbake", roi, 1+roi/100)
	} else {
		p.Summary = "Ingen tiltak valgt; ROI kan ikke beregnes."
	}

	p.Chart = ChartSpec{
		Kind: KindBar, Title: "Kostnad Før vs Etter Tiltak", X: "scenario", Y: "Kostnad (NOK)", Orientation: Vertical,
		Series: []Series{{Name: "Total Kostnad", Points: []Point{
			{Label: "Før tiltak", Value: p.CurrentCost},
			{Label: "Etter tiltak", Value: p.CostAfter},
		}}},
	}
	return p
}
