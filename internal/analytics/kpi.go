package analytics

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vinodismyname/hrpulse/config"
	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// Metric names of a Snapshot.
const (
	MetricHeadcount             = "headcount"
	MetricAvgTenure             = "avg_tenure"
	MetricAvgSalary             = "avg_salary"
	MetricTurnoverRate          = "turnover_rate"
	MetricVoluntaryTurnover     = "voluntary_turnover"
	MetricVoluntaryTurnoverRate = "voluntary_turnover_rate"
	MetricAvgEngagement         = "avg_engagement"
	MetricAvgPerformance        = "avg_performance"
	MetricHighFlightRisk        = "high_flight_risk"
	MetricFlightRiskPct         = "flight_risk_pct"
	MetricAvgTimeToHire         = "avg_time_to_hire"
	MetricSickLeaveRate         = "sick_leave_rate"
	MetricInternalMobility      = "internal_mobility"
	MetricCostOfAttrition       = "cost_of_attrition"
	MetricGenderM               = "gender_m"
	MetricGenderF               = "gender_f"
	MetricGenderBalance         = "gender_balance"
	MetricSpanOfControl         = "span_of_control"
	MetricAvgTrainingHours      = "avg_training_hours"
	MetricAvgCompaRatio         = "avg_compa_ratio"
	MetricLeadershipCount       = "leadership_count"
	MetricLeadershipFemalePct   = "leadership_female_pct"
)

// Snapshot maps metric name to value. It is recomputed from scratch for every
// selection and never persisted.
type Snapshot map[string]float64

// Input carries the filtered employee views and the satellite tables a
// snapshot is computed from.
type Input struct {
	// Active is the filtered employees without a termination date.
	Active []dataset.Employee
	// All is the filtered employees including terminated rows.
	All []dataset.Employee

	SickLeave    []dataset.SickLeaveRecord
	Recruitment  []dataset.Requisition
	Terminations []dataset.TerminationRecord

	Filters     Filters
	WorkingDays float64
}

// InputFor builds the KPI input for a view.
func InputFor(v View) Input {
	return Input{
		Active:       v.Active,
		All:          v.All,
		SickLeave:    v.Data.SickLeave,
		Recruitment:  v.Data.Recruitment,
		Terminations: v.Data.Terminations,
		Filters:      v.Filters,
		WorkingDays:  config.WorkingDaysPerYear,
	}
}

type metric struct {
	name string
	fn   func(in *Input) float64
}

// metrics is evaluated in order; each entry reads only the input so a failure
// in one cannot affect another.
var metrics = []metric{
	{MetricHeadcount, func(in *Input) float64 { return float64(len(in.Active)) }},
	{MetricAvgTenure, func(in *Input) float64 { return mean(in.Active, func(e dataset.Employee) float64 { return e.TenureYears }) }},
	{MetricAvgSalary, func(in *Input) float64 { return mean(in.Active, func(e dataset.Employee) float64 { return e.Salary }) }},
	{MetricTurnoverRate, turnoverRate},
	{MetricVoluntaryTurnover, func(in *Input) float64 { return float64(voluntaryCount(in)) }},
	{MetricVoluntaryTurnoverRate, func(in *Input) float64 { return pct(float64(voluntaryCount(in)), float64(len(in.Active))) }},
	{MetricAvgEngagement, func(in *Input) float64 { return mean(in.Active, func(e dataset.Employee) float64 { return e.EngagementScore }) }},
	{MetricAvgPerformance, func(in *Input) float64 { return mean(in.Active, func(e dataset.Employee) float64 { return e.PerformanceRating }) }},
	{MetricHighFlightRisk, func(in *Input) float64 { return float64(countHighRisk(in.Active)) }},
	{MetricFlightRiskPct, func(in *Input) float64 { return pct(float64(countHighRisk(in.Active)), float64(len(in.Active))) }},
	{MetricAvgTimeToHire, avgTimeToHire},
	{MetricSickLeaveRate, sickLeaveRate},
	{MetricInternalMobility, func(in *Input) float64 {
		return pct(float64(count(in.Active, func(e dataset.Employee) bool { return e.InternalMoves > 0 })), float64(len(in.Active)))
	}},
	{MetricCostOfAttrition, func(in *Input) float64 {
		var sum float64
		for _, t := range narrowTerminations(in) {
			sum += t.ReplacementCost
		}
		return sum
	}},
	{MetricGenderM, func(in *Input) float64 { return float64(countGender(in.Active, dataset.GenderMale)) }},
	{MetricGenderF, func(in *Input) float64 { return float64(countGender(in.Active, dataset.GenderFemale)) }},
	{MetricGenderBalance, func(in *Input) float64 {
		return pct(float64(countGender(in.Active, dataset.GenderFemale)), float64(len(in.Active)))
	}},
	{MetricSpanOfControl, spanOfControl},
	{MetricAvgTrainingHours, func(in *Input) float64 { return mean(in.Active, func(e dataset.Employee) float64 { return e.TrainingHoursYTD }) }},
	{MetricAvgCompaRatio, func(in *Input) float64 { return mean(in.Active, dataset.Employee.CompaRatio) }},
	{MetricLeadershipCount, func(in *Input) float64 { return float64(len(leaders(in.Active))) }},
	{MetricLeadershipFemalePct, func(in *Input) float64 {
		l := leaders(in.Active)
		return pct(float64(countGender(l, dataset.GenderFemale)), float64(len(l)))
	}},
}

// MetricNames lists every snapshot metric in computation order.
func MetricNames() []string {
	out := make([]string, len(metrics))
	for i, m := range metrics {
		out[i] = m.name
	}
	return out
}

// Compute derives the full snapshot. A metric that panics or yields NaN or
// Inf is logged and reported as 0; the remaining metrics are unaffected.
func Compute(ctx context.Context, in Input) Snapshot {
	if in.WorkingDays <= 0 {
		in.WorkingDays = config.WorkingDaysPerYear
	}
	snap := make(Snapshot, len(metrics))
	for _, m := range metrics {
		snap[m.name] = evaluate(ctx, m, &in)
	}
	return snap
}

func evaluate(ctx context.Context, m metric, in *Input) (v float64) {
	log := zerolog.Ctx(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("metric", m.name).Str("panic", fmt.Sprint(r)).Msg("kpi failed; using 0")
			v = 0
		}
	}()
	v = m.fn(in)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		log.Warn().Str("metric", m.name).Msg("kpi not finite; using 0")
		return 0
	}
	return v
}

// turnoverRate annualizes terminations against the mid-period headcount.
func turnoverRate(in *Input) float64 {
	n := float64(len(in.All))
	if n == 0 {
		return 0
	}
	t := float64(count(in.All, func(e dataset.Employee) bool { return !e.Active() }))
	den := n - t/2
	if den <= 0 {
		return 0
	}
	return t / den * 100
}

// narrowTerminations restricts termination records to the filtered employees
// only when a country is selected.
func narrowTerminations(in *Input) []dataset.TerminationRecord {
	if !in.Filters.HasCountry() {
		return in.Terminations
	}
	ids := idSet(in.All)
	out := make([]dataset.TerminationRecord, 0, len(in.Terminations))
	for _, t := range in.Terminations {
		if _, ok := ids[t.EmployeeID]; ok {
			out = append(out, t)
		}
	}
	return out
}

func voluntaryCount(in *Input) int {
	n := 0
	for _, t := range narrowTerminations(in) {
		if t.Reason == dataset.ReasonVoluntary {
			n++
		}
	}
	return n
}

// avgTimeToHire narrows requisitions by department only.
func avgTimeToHire(in *Input) float64 {
	var sum float64
	var n int
	dept := strings.TrimSpace(in.Filters.Department)
	for _, r := range in.Recruitment {
		if in.Filters.HasDepartment() && r.Department != dept {
			continue
		}
		sum += r.DaysToFill
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// sickLeaveRate sums sick days of the filtered active employees over their
// working-day capacity.
func sickLeaveRate(in *Input) float64 {
	ids := idSet(in.Active)
	var days float64
	for _, s := range in.SickLeave {
		if _, ok := ids[s.EmployeeID]; ok {
			days += s.SickDays
		}
	}
	capacity := in.WorkingDays * float64(len(in.Active))
	if capacity <= 0 {
		return 0
	}
	return days / capacity * 100
}

func spanOfControl(in *Input) float64 {
	managers := len(leaders(in.Active))
	if managers == 0 {
		return 0
	}
	return float64(len(in.Active)-managers) / float64(managers)
}

func leaders(rows []dataset.Employee) []dataset.Employee {
	out := make([]dataset.Employee, 0)
	for _, e := range rows {
		if e.IsManager() {
			out = append(out, e)
		}
	}
	return out
}

func countHighRisk(rows []dataset.Employee) int {
	return count(rows, func(e dataset.Employee) bool { return e.FlightRisk == dataset.RiskHigh })
}

func countGender(rows []dataset.Employee, g string) int {
	return count(rows, func(e dataset.Employee) bool { return e.Gender == g })
}

func count(rows []dataset.Employee, pred func(dataset.Employee) bool) int {
	n := 0
	for _, e := range rows {
		if pred(e) {
			n++
		}
	}
	return n
}

func mean(rows []dataset.Employee, field func(dataset.Employee) float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, e := range rows {
		sum += field(e)
	}
	return sum / float64(len(rows))
}

// pct returns num/den*100, or 0 when den is not positive.
func pct(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}
