package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// healthy is a snapshot inside every default benchmark.
func healthy() Snapshot {
	return Snapshot{
		MetricHeadcount:           100,
		MetricTurnoverRate:        8,
		MetricAvgEngagement:       7.5,
		MetricFlightRiskPct:       10,
		MetricAvgTimeToHire:       40,
		MetricSickLeaveRate:       3,
		MetricAvgCompaRatio:       1.0,
		MetricLeadershipCount:     20,
		MetricLeadershipFemalePct: 45,
		MetricSpanOfControl:       6,
		MetricInternalMobility:    12,
	}
}

func titles(flags []RedFlag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Title)
	}
	return out
}

func TestDetectRedFlags_HealthySnapshotIsClean(t *testing.T) {
	require.Empty(t, DetectRedFlags(healthy(), DefaultThresholds()))
}

func TestDetectRedFlags_RuleIndependence(t *testing.T) {
	cases := []struct {
		metric   string
		value    float64
		title    string
		severity string
	}{
		{MetricTurnoverRate, 15.1, "Høy turnover", SeverityDanger},
		{MetricAvgEngagement, 6.4, "Lav engasjement", SeverityDanger},
		{MetricFlightRiskPct, 20.5, "Høy flight risk", SeverityDanger},
		{MetricAvgTimeToHire, 51, "Lang rekrutteringstid", SeverityWarning},
		{MetricSickLeaveRate, 5.2, "Høyt sykefravær", SeverityWarning},
		{MetricAvgCompaRatio, 0.85, "Lønnsavvik", SeverityWarning},
		{MetricAvgCompaRatio, 1.15, "Lønnsavvik", SeverityWarning},
		{MetricLeadershipFemalePct, 25, "Diversity gap", SeverityWarning},
		{MetricSpanOfControl, 12, "Bred span of control", SeverityWarning},
		{MetricInternalMobility, 5, "Lav intern mobilitet", SeverityInfo},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			s := healthy()
			s[tc.metric] = tc.value
			flags := DetectRedFlags(s, DefaultThresholds())
			require.Len(t, flags, 1)
			require.Equal(t, tc.title, flags[0].Title)
			require.Equal(t, tc.severity, flags[0].Type)
			require.Equal(t, tc.value, flags[0].Value)
			require.NotEqual(t, NoExplanation, flags[0].Explanation)
		})
	}
}

func TestDetectRedFlags_EngagementBoundary(t *testing.T) {
	s := healthy()
	s[MetricAvgEngagement] = 6.6
	require.Empty(t, DetectRedFlags(s, DefaultThresholds()))

	s[MetricAvgEngagement] = 6.4
	require.Equal(t, []string{"Lav engasjement"}, titles(DetectRedFlags(s, DefaultThresholds())))
}

func TestDetectRedFlags_DiversityNeedsLargeLeadership(t *testing.T) {
	s := healthy()
	s[MetricLeadershipFemalePct] = 0
	s[MetricLeadershipCount] = 10
	require.Empty(t, DetectRedFlags(s, DefaultThresholds()))

	s[MetricLeadershipCount] = 11
	flags := DetectRedFlags(s, DefaultThresholds())
	require.Len(t, flags, 1)
	require.Equal(t, "Kun 0% kvinner i ledelsen (mål: minimum 40%)", flags[0].Message)
}

func TestDetectRedFlags_CompaDirection(t *testing.T) {
	s := healthy()
	s[MetricAvgCompaRatio] = 0.85
	require.Equal(t, "Compa-ratio på 0.85 - ansatte er under markedslønn", DetectRedFlags(s, DefaultThresholds())[0].Message)

	s[MetricAvgCompaRatio] = 1.2
	require.Equal(t, "Compa-ratio på 1.20 - ansatte er over markedslønn", DetectRedFlags(s, DefaultThresholds())[0].Message)
}

func TestDetectRedFlags_FixedOrder(t *testing.T) {
	s := Snapshot{
		MetricTurnoverRate:        30,
		MetricAvgEngagement:       5,
		MetricFlightRiskPct:       40,
		MetricAvgTimeToHire:       70,
		MetricSickLeaveRate:       9,
		MetricAvgCompaRatio:       0.8,
		MetricLeadershipCount:     30,
		MetricLeadershipFemalePct: 10,
		MetricSpanOfControl:       15,
		MetricInternalMobility:    2,
	}
	flags := DetectRedFlags(s, DefaultThresholds())
	require.Equal(t, []string{
		"Høy turnover", "Lav engasjement", "Høy flight risk", "Lang rekrutteringstid", "Høyt sykefravær",
		"Lønnsavvik", "Diversity gap", "Bred span of control", "Lav intern mobilitet",
	}, titles(flags))
	require.Equal(t, map[string]int{SeverityDanger: 3, SeverityWarning: 5, SeverityInfo: 1}, CountBySeverity(flags))
}

func TestDetectRedFlags_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.TurnoverMax = 5
	flags := DetectRedFlags(healthy(), th)
	require.Equal(t, []string{"Høy turnover"}, titles(flags))
	require.Equal(t, "Turnover på 8.0% overstiger benchmark på 5%", flags[0].Message)
}

func TestExplain(t *testing.T) {
	s := healthy()
	s[MetricCostOfAttrition] = 1250000
	require.Contains(t, Explain(KeyTurnover, s, DefaultThresholds()), "**Analyse av turnover:**")
	require.Contains(t, Explain(KeyDiversity, s, DefaultThresholds()), "Minimum 40%")
	require.Equal(t, NoExplanation, Explain("unknown", s, DefaultThresholds()))
}

func TestEndToEnd_HealthyWorkforceHasNoDangerFlags(t *testing.T) {
	ds := uniform(100, nil)
	s := snapshotOf(ds, Filters{})
	require.Equal(t, 100.0, s[MetricHeadcount])
	require.Equal(t, 0.0, s[MetricTurnoverRate])

	flags := DetectRedFlags(s, DefaultThresholds())
	require.Zero(t, CountBySeverity(flags)[SeverityDanger])
}

func TestEndToEnd_LowEngagementFiresOnlyEngagementFlag(t *testing.T) {
	ds := uniform(100, func(_ int, e *dataset.Employee) { e.EngagementScore = 5 })
	flags := DetectRedFlags(snapshotOf(ds, Filters{}), DefaultThresholds())
	require.Equal(t, []string{"Lav engasjement"}, titles(flags))
}
