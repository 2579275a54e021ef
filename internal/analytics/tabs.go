package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vinodismyname/hrpulse/config"
	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// Dashboard tabs.
const (
	TabOverview     = "overview"
	TabTurnover     = "turnover"
	TabWorkforce    = "workforce"
	TabCompensation = "compensation"
	TabRecruitment  = "recruitment"
)

// ErrUnknownTab is returned for tab names outside Tabs().
var ErrUnknownTab = errors.New("analytics: unknown tab")

// ChartOptions tunes tab chart construction.
type ChartOptions struct {
	Thresholds  Thresholds
	TrendMonths int
}

type tabBuilder func(v View, o ChartOptions) []ChartSpec

var tabs = []struct {
	name  string
	build tabBuilder
}{
	{TabOverview, overviewCharts},
	{TabTurnover, turnoverCharts},
	{TabWorkforce, workforceCharts},
	{TabCompensation, compensationCharts},
	{TabRecruitment, recruitmentCharts},
}

// Tabs lists the dashboard tabs in display order.
func Tabs() []string {
	out := make([]string, len(tabs))
	for i, t := range tabs {
		out[i] = t.name
	}
	return out
}

// TabCharts builds the chart descriptors of one tab for the view.
func TabCharts(v View, tab string, o ChartOptions) ([]ChartSpec, error) {
	if o.TrendMonths <= 0 {
		o.TrendMonths = config.DefaultTrendMonths
	}
	name := strings.ToLower(strings.TrimSpace(tab))
	for _, t := range tabs {
		if t.name == name {
			return t.build(v, o), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
}

func overviewCharts(v View, o ChartOptions) []ChartSpec {
	engagement := func(e dataset.Employee) float64 { return e.EngagementScore }
	return []ChartSpec{
		{
			Kind: KindBar, Title: "Headcount per Avdeling", X: "count", Y: "department", Orientation: Horizontal,
			Series: single(sortByValue(groupCount(v.Active, byDepartment), true)),
		},
		{
			Kind: KindPie, Title: "Fordeling per Land", X: "country", Y: "count",
			Series: single(groupCount(v.Active, byCountry)),
		},
		{
			Kind: KindBar, Title: "Senioritetspyramide", X: "seniority_level", Y: "count", Orientation: Vertical,
			Series: single(orderBy(groupCount(v.Active, bySeniority), seniorityOrder(), false)),
		},
		{
			Kind: KindBar, Title: "Engasjement per Avdeling", X: "engagement_score", Y: "department", Orientation: Horizontal,
			Series:    single(sortByValue(groupMean(v.Active, byDepartment, engagement), true)),
			Threshold: &ReferenceLine{Axis: "x", Value: o.Thresholds.EngagementMin, Label: fmt.Sprintf("Mål: %g", o.Thresholds.EngagementMin)},
		},
	}
}

// joinedTermination is a termination record with the department and country
// of the employee it references.
type joinedTermination struct {
	dataset.TerminationRecord
	Department string
	Country    string
}

// joinTerminations resolves termination records against all employees of the
// dataset, dropping records whose employee is unknown. A country filter
// narrows the result.
func joinTerminations(v View) []joinedTermination {
	out := make([]joinedTermination, 0, len(v.Data.Terminations))
	for _, t := range v.Data.Terminations {
		e, ok := v.Data.Employee(t.EmployeeID)
		if !ok {
			continue
		}
		if v.Filters.HasCountry() && e.Country != strings.TrimSpace(v.Filters.Country) {
			continue
		}
		out = append(out, joinedTermination{TerminationRecord: t, Department: e.Department, Country: e.Country})
	}
	return out
}

func turnoverCharts(v View, o ChartOptions) []ChartSpec {
	joined := joinTerminations(v)

	// Rate per department: only departments present in both the terminations
	// and the filtered active headcount are reported.
	terms := map[string]float64{}
	for _, t := range joined {
		terms[t.Department]++
	}
	var rates []Point
	for _, hc := range groupCount(v.Active, byDepartment) {
		if n, ok := terms[hc.Label]; ok {
			rates = append(rates, Point{Label: hc.Label, Value: n / hc.Value * 100})
		}
	}

	reasons := map[string]float64{}
	if v.Filters.HasCountry() {
		for _, t := range joined {
			reasons[t.Reason]++
		}
	} else {
		for _, t := range v.Data.Terminations {
			reasons[t.Reason]++
		}
	}

	cost := map[string]float64{}
	for _, t := range joined {
		cost[t.TerminationDate.Format("2006-01")] += t.ReplacementCost
	}

	return []ChartSpec{
		{
			Kind: KindBar, Title: "Turnover Rate per Avdeling (%)", X: "department", Y: "rate", Orientation: Vertical,
			Series:    single(sortByValue(nonNil(rates), false)),
			Threshold: &ReferenceLine{Axis: "y", Value: o.Thresholds.TurnoverMax, Label: fmt.Sprintf("Benchmark: %g%%", o.Thresholds.TurnoverMax)},
		},
		{
			Kind: KindPie, Title: "Årsaker til Avgang", X: "reason", Y: "count",
			Series: single(sortByValue(pointsFrom(reasons), false)),
		},
		{
			Kind: KindArea, Title: "Estimert Erstatningskostnad per Måned (NOK)", X: "month", Y: "replacement_cost",
			Series: single(tail(pointsFrom(cost), o.TrendMonths)),
		},
		flightRiskDistribution(v.Active),
	}
}

// flightRiskDistribution is the per-department share of each risk category,
// stacked to 100 percent.
func flightRiskDistribution(rows []dataset.Employee) ChartSpec {
	totals := groupCount(rows, byDepartment)
	series := make([]Series, 0, 3)
	for _, risk := range []string{dataset.RiskLow, dataset.RiskMedium, dataset.RiskHigh} {
		inRisk := groupCount(filterRows(rows, func(e dataset.Employee) bool { return e.FlightRisk == risk }), byDepartment)
		counts := make(map[string]float64, len(inRisk))
		for _, p := range inRisk {
			counts[p.Label] = p.Value
		}
		points := make([]Point, 0, len(totals))
		for _, t := range totals {
			points = append(points, Point{Label: t.Label, Value: pct(counts[t.Label], t.Value)})
		}
		series = append(series, Series{Name: risk, Points: points})
	}
	return ChartSpec{
		Kind: KindBar, Title: "Flight Risk Fordeling per Avdeling (%)", X: "department", Y: "value",
		Group: "flight_risk", Orientation: Vertical, Mode: ModeStack, Series: series,
	}
}

func workforceCharts(v View, o ChartOptions) []ChartSpec {
	tenure := make([]float64, len(v.Active))
	for i, e := range v.Active {
		tenure[i] = e.TenureYears
	}
	avgTenure := mean(v.Active, func(e dataset.Employee) float64 { return e.TenureYears })
	moves := func(e dataset.Employee) float64 { return float64(e.InternalMoves) }
	training := func(e dataset.Employee) float64 { return e.TrainingHoursYTD }

	return []ChartSpec{
		{
			Kind: KindBar, Title: "Aldersfordeling", X: "age_group", Y: "count", Orientation: Vertical,
			Series: single(orderBy(groupCount(v.Active, func(e dataset.Employee) string { return e.AgeGroup }), dataset.AgeGroups, false)),
		},
		genderBySeniority(v.Active, "Kjønnsfordeling per Senioritetsnivå"),
		{
			Kind: KindHistogram, Title: "Fordeling av Ansiennitet (år)", X: "tenure_years", Y: "count",
			Series:    single(histogram(tenure, config.TenureHistogramBins)),
			Threshold: &ReferenceLine{Axis: "x", Value: avgTenure, Label: fmt.Sprintf("Snitt: %.1f år", avgTenure)},
		},
		{
			Kind: KindBar, Title: "Gjennomsnittlig Interne Bytter per Avdeling", X: "department", Y: "internal_moves", Orientation: Vertical,
			Series: single(sortByValue(groupMean(v.Active, byDepartment, moves), false)),
		},
		{
			Kind: KindBar, Title: "Gjennomsnittlig Opplæringstimer YTD", X: "department", Y: "training_hours_ytd", Orientation: Vertical,
			Series:    single(sortByValue(groupMean(v.Active, byDepartment, training), false)),
			Threshold: &ReferenceLine{Axis: "y", Value: config.TrainingHoursTarget, Label: fmt.Sprintf("Mål: %g timer", config.TrainingHoursTarget)},
		},
	}
}

// genderBySeniority counts each gender per seniority level; every level is
// present on every series.
func genderBySeniority(rows []dataset.Employee, title string) ChartSpec {
	var series []Series
	for _, g := range []string{dataset.GenderMale, dataset.GenderFemale, dataset.GenderOther} {
		sub := filterRows(rows, func(e dataset.Employee) bool { return e.Gender == g })
		if len(sub) == 0 {
			continue
		}
		series = append(series, Series{Name: g, Points: orderBy(groupCount(sub, bySeniority), seniorityOrder(), true)})
	}
	return ChartSpec{
		Kind: KindBar, Title: title, X: "seniority_level", Y: "value",
		Group: "gender", Orientation: Vertical, Mode: ModeGroup, Series: nonNilSeries(series),
	}
}

func compensationCharts(v View, o ChartOptions) []ChartSpec {
	salaries := map[string][]float64{}
	for _, e := range v.Active {
		salaries[e.Seniority.String()] = append(salaries[e.Seniority.String()], e.Salary)
	}
	var boxes []Series
	for _, level := range seniorityOrder() {
		if s, ok := salaries[level]; ok {
			boxes = append(boxes, Series{Name: level, Points: fiveNumber(s)})
		}
	}

	return []ChartSpec{
		compaByDepartment(v.Active, "Compa-Ratio per Avdeling"),
		{
			Kind: KindBox, Title: "Lønnsfordeling per Senioritetsnivå", X: "seniority_level", Y: "salary",
			Group: "seniority_level", Series: nonNilSeries(boxes),
		},
		{
			Kind: KindBar, Title: "Lønnsforskjell M vs F per Nivå (%)", X: "seniority_level", Y: "gap_pct", Orientation: Vertical,
			Series:    single(payGap(v.Active)),
			Threshold: &ReferenceLine{Axis: "y", Value: 0},
		},
	}
}

func compaByDepartment(rows []dataset.Employee, title string) ChartSpec {
	return ChartSpec{
		Kind: KindBar, Title: title, X: "compa_ratio", Y: "department", Orientation: Horizontal,
		Series:    single(sortByValue(groupMean(rows, byDepartment, dataset.Employee.CompaRatio), true)),
		Threshold: &ReferenceLine{Axis: "x", Value: 1.0, Label: "Markedssnitt"},
		Band:      &Band{Axis: "x", From: config.CompaBandLow, To: config.CompaBandHigh},
	}
}

// payGap is (mean male salary - mean female salary) / mean male salary per
// seniority level, or 0 where either group is absent.
func payGap(rows []dataset.Employee) []Point {
	salary := func(e dataset.Employee) float64 { return e.Salary }
	male := groupMean(filterRows(rows, func(e dataset.Employee) bool { return e.Gender == dataset.GenderMale }), bySeniority, salary)
	female := groupMean(filterRows(rows, func(e dataset.Employee) bool { return e.Gender == dataset.GenderFemale }), bySeniority, salary)
	m := make(map[string]float64, len(male))
	for _, p := range male {
		m[p.Label] = p.Value
	}
	f := make(map[string]float64, len(female))
	for _, p := range female {
		f[p.Label] = p.Value
	}
	present := groupCount(rows, bySeniority)
	out := make([]Point, 0, len(present))
	for _, level := range orderBy(present, seniorityOrder(), false) {
		mv, okM := m[level.Label]
		fv, okF := f[level.Label]
		gap := 0.0
		if okM && okF && mv != 0 {
			gap = (mv - fv) / mv * 100
		}
		out = append(out, Point{Label: level.Label, Value: gap})
	}
	return out
}

// FilterRequisitions narrows requisitions by the department and country
// selections.
func FilterRequisitions(reqs []dataset.Requisition, f Filters) []dataset.Requisition {
	out := make([]dataset.Requisition, 0, len(reqs))
	for _, r := range reqs {
		if f.HasDepartment() && r.Department != strings.TrimSpace(f.Department) {
			continue
		}
		if f.HasCountry() && r.Country != strings.TrimSpace(f.Country) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func recruitmentCharts(v View, o ChartOptions) []ChartSpec {
	reqs := FilterRequisitions(v.Data.Recruitment, v.Filters)
	ttfSum, ttfN := map[string]float64{}, map[string]float64{}
	sources := map[string]float64{}
	trendSum, trendN := map[string]float64{}, map[string]float64{}
	for _, r := range reqs {
		ttfSum[r.Department] += r.DaysToFill
		ttfN[r.Department]++
		sources[r.Source]++
		m := r.CloseDate.Format("2006-01")
		trendSum[m] += r.DaysToFill
		trendN[m]++
	}
	for k := range ttfSum {
		ttfSum[k] /= ttfN[k]
	}
	for k := range trendSum {
		trendSum[k] /= trendN[k]
	}

	return []ChartSpec{
		{
			Kind: KindBar, Title: "Gjennomsnittlig Time-to-Fill per Avdeling (dager)", X: "department", Y: "days_to_fill", Orientation: Vertical,
			Series:    single(sortByValue(pointsFrom(ttfSum), false)),
			Threshold: &ReferenceLine{Axis: "y", Value: config.TimeToFillBenchmark, Label: fmt.Sprintf("Benchmark: %g dager", config.TimeToFillBenchmark)},
		},
		{
			Kind: KindPie, Title: "Rekrutteringskilder", X: "source", Y: "count",
			Series: single(sortByValue(pointsFrom(sources), false)),
		},
		{
			Kind: KindLine, Title: fmt.Sprintf("Time-to-Fill Trend (siste %d måneder)", o.TrendMonths), X: "month", Y: "days_to_fill",
			Series:    single(tail(pointsFrom(trendSum), o.TrendMonths)),
			Threshold: &ReferenceLine{Axis: "y", Value: config.TimeToFillBenchmark, Label: "Benchmark"},
		},
	}
}

func filterRows(rows []dataset.Employee, keep func(dataset.Employee) bool) []dataset.Employee {
	out := make([]dataset.Employee, 0, len(rows))
	for _, e := range rows {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func nonNil(p []Point) []Point {
	if p == nil {
		return []Point{}
	}
	return p
}

func nonNilSeries(s []Series) []Series {
	if s == nil {
		return []Series{}
	}
	return s
}
