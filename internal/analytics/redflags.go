package analytics

import "fmt"

// Severity of a red flag.
const (
	SeverityDanger  = "danger"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// RedFlag is one triggered benchmark rule.
type RedFlag struct {
	Type        string  `json:"type" jsonschema_description:"danger, warning or info"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	Metric      string  `json:"metric"`
	Value       float64 `json:"value"`
	Explanation string  `json:"explanation"`
}

// rule evaluates one threshold; ok reports whether it fired.
type rule struct {
	key      string
	severity string
	title    string
	metric   string
	check    func(s Snapshot, t Thresholds) (value float64, message string, ok bool)
}

// rules run in declared order, which is also the display order.
var rules = []rule{
	{KeyTurnover, SeverityDanger, "Høy turnover", "turnover_rate", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricTurnoverRate]
		return v, fmt.Sprintf("Turnover på %.1f%% overstiger benchmark på %g%%", v, t.TurnoverMax), v > t.TurnoverMax
	}},
	{KeyEngagement, SeverityDanger, "Lav engasjement", "engagement", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricAvgEngagement]
		return v, fmt.Sprintf("Gjennomsnittlig engasjement på %.1f er under målet på %g", v, t.EngagementMin), v < t.EngagementMin
	}},
	{KeyFlightRisk, SeverityDanger, "Høy flight risk", "flight_risk", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricFlightRiskPct]
		return v, fmt.Sprintf("%.1f%% av ansatte har høy risiko for å slutte", v), v > t.FlightRiskMax
	}},
	{KeyTimeToHire, SeverityWarning, "Lang rekrutteringstid", "time_to_hire", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricAvgTimeToHire]
		return v, fmt.Sprintf("Gjennomsnittlig %.0f dager for å fylle stillinger", v), v > t.TimeToHireMax
	}},
	{KeySickLeave, SeverityWarning, "Høyt sykefravær", "sick_leave", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricSickLeaveRate]
		return v, fmt.Sprintf("Sykefraværsrate på %.1f%% er over benchmark på %g%%", v, t.SickLeaveMax), v > t.SickLeaveMax
	}},
	{KeySalary, SeverityWarning, "Lønnsavvik", "compa_ratio", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricAvgCompaRatio]
		direction := "over"
		if v < t.CompaRatioMin {
			direction = "under"
		}
		return v, fmt.Sprintf("Compa-ratio på %.2f - ansatte er %s markedslønn", v, direction), v < t.CompaRatioMin || v > t.CompaRatioMax
	}},
	{KeyDiversity, SeverityWarning, "Diversity gap", "diversity", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricLeadershipFemalePct]
		ok := s[MetricLeadershipCount] > float64(t.LeadershipMinSize) && v < t.LeadershipFemaleMin
		return v, fmt.Sprintf("Kun %.0f%% kvinner i ledelsen (mål: minimum %g%%)", v, t.LeadershipFemaleTarget), ok
	}},
	{KeySpanOfControl, SeverityWarning, "Bred span of control", "span_of_control", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricSpanOfControl]
		return v, fmt.Sprintf("Gjennomsnittlig %.1f ansatte per leder (anbefalt: <%g)", v, t.SpanOfControlMax), v > t.SpanOfControlMax
	}},
	{KeyMobility, SeverityInfo, "Lav intern mobilitet", "mobility", func(s Snapshot, t Thresholds) (float64, string, bool) {
		v := s[MetricInternalMobility]
		return v, fmt.Sprintf("Kun %.1f%% har hatt interne bytter (benchmark: 10%%)", v), v < t.MobilityMin
	}},
}

// DetectRedFlags evaluates every rule against s. Rules are independent; the
// result keeps rule order and is never sorted by severity.
func DetectRedFlags(s Snapshot, t Thresholds) []RedFlag {
	flags := make([]RedFlag, 0, len(rules))
	for _, r := range rules {
		v, msg, ok := r.check(s, t)
		if !ok {
			continue
		}
		flags = append(flags, RedFlag{
			Type:        r.severity,
			Title:       r.title,
			Message:     msg,
			Metric:      r.metric,
			Value:       v,
			Explanation: Explain(r.key, s, t),
		})
	}
	return flags
}

// CountBySeverity tallies flags per type.
func CountBySeverity(flags []RedFlag) map[string]int {
	out := map[string]int{SeverityDanger: 0, SeverityWarning: 0, SeverityInfo: 0}
	for _, f := range flags {
		out[f.Type]++
	}
	return out
}
