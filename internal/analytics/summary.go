package analytics

import (
	"fmt"
	"slices"
	"sort"

	"github.com/vinodismyname/hrpulse/config"
	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// FilterOptions are the selectable values for each categorical filter.
type FilterOptions struct {
	Countries   []string `json:"countries"`
	Departments []string `json:"departments"`
	Seniority   []string `json:"seniority_levels"`
	JobFamilies []string `json:"job_families"`
}

// Options lists the distinct values of the active employees, sorted, with
// seniority in level order.
func Options(ds *dataset.Dataset) FilterOptions {
	active := ds.ActiveEmployees()
	return FilterOptions{
		Countries:   distinct(active, byCountry),
		Departments: distinct(active, byDepartment),
		Seniority:   seniorityOrder(),
		JobFamilies: distinct(active, func(e dataset.Employee) string { return e.JobFamily }),
	}
}

func distinct(rows []dataset.Employee, key func(dataset.Employee) string) []string {
	seen := map[string]struct{}{}
	for _, e := range rows {
		seen[key(e)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ExecutiveSummary renders the headline insights for the selection.
func ExecutiveSummary(s Snapshot, f Filters, t Thresholds) string {
	status := "På mål"
	if s[MetricAvgEngagement] < t.EngagementMin {
		status = "Under mål"
	}
	return fmt.Sprintf(`### Nøkkelinnsikter for %s

**Workforce Overview:**
- **Headcount:** %s ansatte med gjennomsnittlig ansiennitet på %.1f år
- **Turnover:** %.1f%% årlig rate (%s frivillige avganger)
- **Estimert kostnad av attrition:** %s NOK

**Engagement & Risk:**
- **Engasjementsscore:** %.1f/10 (%s)
- **Flight risk:** %s ansatte (%.1f%%) har høy risiko for å slutte

**Rekruttering:**
- **Time-to-hire:** Gjennomsnittlig %.0f dager

**Helse & Fravær:**
- **Sykefraværsrate:** %.1f%%`,
		f.Label(),
		countText(s[MetricHeadcount]), s[MetricAvgTenure],
		s[MetricTurnoverRate], countText(s[MetricVoluntaryTurnover]),
		thousands(s[MetricCostOfAttrition]),
		s[MetricAvgEngagement], status,
		countText(s[MetricHighFlightRisk]), s[MetricFlightRiskPct],
		s[MetricAvgTimeToHire],
		s[MetricSickLeaveRate])
}

// EmployeeRow is the tabular projection of an employee used in listings.
type EmployeeRow struct {
	ID              string  `json:"employee_id"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	Country         string  `json:"country"`
	Seniority       string  `json:"seniority_level"`
	TenureYears     float64 `json:"tenure_years"`
	EngagementScore float64 `json:"engagement_score"`
	Salary          float64 `json:"salary"`
	CompaRatio      float64 `json:"compa_ratio"`
	FlightRisk      string  `json:"flight_risk"`
}

// RowOf projects e into an EmployeeRow.
func RowOf(e dataset.Employee) EmployeeRow {
	return EmployeeRow{
		ID:              e.ID,
		Name:            e.Name,
		Department:      e.Department,
		Country:         e.Country,
		Seniority:       e.Seniority.String(),
		TenureYears:     e.TenureYears,
		EngagementScore: e.EngagementScore,
		Salary:          e.Salary,
		CompaRatio:      round2(e.CompaRatio()),
		FlightRisk:      e.FlightRisk,
	}
}

// Employee listings.
const (
	ListHighRisk  = "high_risk"
	ListUnderpaid = "underpaid"
)

// HighRiskEmployees returns the active High flight-risk employees, highest
// salary first.
func HighRiskEmployees(v View) []EmployeeRow {
	rows := filterRows(v.Active, func(e dataset.Employee) bool { return e.FlightRisk == dataset.RiskHigh })
	slices.SortStableFunc(rows, func(a, b dataset.Employee) int {
		switch {
		case a.Salary > b.Salary:
			return -1
		case a.Salary < b.Salary:
			return 1
		}
		return 0
	})
	return toRows(rows)
}

// UnderpaidEmployees returns active employees with a compa ratio below the
// underpaid ceiling, lowest ratio first. Employees without a salary band are
// skipped.
func UnderpaidEmployees(v View) []EmployeeRow {
	rows := filterRows(v.Active, func(e dataset.Employee) bool {
		return e.BandMidpoint() != 0 && e.CompaRatio() < config.UnderpaidCompaCeiling
	})
	slices.SortStableFunc(rows, func(a, b dataset.Employee) int {
		switch ca, cb := a.CompaRatio(), b.CompaRatio(); {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		}
		return 0
	})
	return toRows(rows)
}

// ListEmployees dispatches to the named listing; ok is false for unknown
// names.
func ListEmployees(v View, list string) ([]EmployeeRow, bool) {
	switch list {
	case ListHighRisk:
		return HighRiskEmployees(v), true
	case ListUnderpaid:
		return UnderpaidEmployees(v), true
	}
	return nil, false
}

func toRows(rows []dataset.Employee) []EmployeeRow {
	out := make([]EmployeeRow, len(rows))
	for i, e := range rows {
		out[i] = RowOf(e)
	}
	return out
}

// Funnel aggregates candidates across the selected requisitions. Each filled
// requisition counts as one hire.
type Funnel struct {
	Requisitions  int     `json:"requisitions"`
	Screened      int     `json:"screened"`
	Interviewed   int     `json:"interviewed"`
	Hired         int     `json:"hired"`
	InterviewRate float64 `json:"interview_rate_pct"`
	HireRate      float64 `json:"hire_rate_pct"`
}

// RecruitmentFunnel narrows requisitions by department and country and sums
// the funnel stages.
func RecruitmentFunnel(ds *dataset.Dataset, f Filters) Funnel {
	reqs := FilterRequisitions(ds.Recruitment, f)
	var out Funnel
	for _, r := range reqs {
		out.Screened += r.CandidatesScreened
		out.Interviewed += r.CandidatesInterviewed
	}
	out.Requisitions = len(reqs)
	out.Hired = len(reqs)
	out.InterviewRate = round2(pct(float64(out.Interviewed), float64(out.Screened)))
	out.HireRate = round2(pct(float64(out.Hired), float64(out.Interviewed)))
	return out
}
