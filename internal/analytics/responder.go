package analytics

import (
	"fmt"
	"strings"

	"github.com/vinodismyname/hrpulse/config"
	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// Question topics in match priority order.
const (
	TopicCompensation = "compensation"
	TopicTurnover     = "turnover"
	TopicEngagement   = "engagement"
	TopicSickLeave    = "sick_leave"
	TopicRecruitment  = "recruitment"
	TopicDiversity    = "diversity"
	TopicFlightRisk   = "flight_risk"
	TopicGeneral      = "general"
)

// NoData answers a topic whose aggregation has no rows.
const NoData = "Ingen data for valgt utvalg."

// ExampleQuestions are suggested prompts, one per topic.
var ExampleQuestions = []string{
	"Hvor har vi størst lønnsavvik?",
	"Hvilken avdeling har høyest turnover?",
	"Hvordan er engasjementet per avdeling?",
	"Hvor er sykefraværet høyest?",
	"Hvordan er kjønnsfordelingen i ledelsen?",
	"Hvilke ansatte har høyest flight risk?",
	"Hvor lang er rekrutteringstiden?",
}

// Answer is the responder output. Chart is nil for the general overview and
// for empty aggregations.
type Answer struct {
	Topic string     `json:"topic"`
	Text  string     `json:"text"`
	Chart *ChartSpec `json:"chart,omitempty"`
}

type topicHandler func(r *Responder, v View, s Snapshot) Answer

type topic struct {
	name     string
	keywords []string
	handle   topicHandler
}

// topics is scanned in order and the first topic with a keyword contained in
// the question wins. A question mentioning both "lønn" and "turnover" is
// therefore always answered as compensation.
var topics = []topic{
	{TopicCompensation, []string{"lønnsavvik", "lønn", "compa", "underbetalt", "salary"}, (*Responder).compensation},
	{TopicTurnover, []string{"turnover", "slutter", "attrition", "avganger"}, (*Responder).turnover},
	{TopicEngagement, []string{"engasjement", "engagement", "motivasjon", "trivsel"}, (*Responder).engagement},
	{TopicSickLeave, []string{"sykefravær", "syk", "fravær", "sick"}, (*Responder).sickLeave},
	{TopicRecruitment, []string{"rekruttering", "hire", "ansette", "time to fill"}, (*Responder).recruitment},
	{TopicDiversity, []string{"diversity", "kjønn", "kvinner", "menn", "gender"}, (*Responder).diversity},
	{TopicFlightRisk, []string{"flight risk", "risiko", "miste", "beholde"}, (*Responder).flightRisk},
}

// MatchTopic returns the topic a question dispatches to.
func MatchTopic(question string) string {
	if t, ok := matchTopic(question); ok {
		return t.name
	}
	return TopicGeneral
}

func matchTopic(question string) (topic, bool) {
	q := strings.ToLower(question)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(q, kw) {
				return t, true
			}
		}
	}
	return topic{}, false
}

// Responder answers free-text questions over a filtered view. It holds no
// per-question state.
type Responder struct {
	thresholds Thresholds
}

// NewResponder returns a responder quoting the given benchmarks.
func NewResponder(t Thresholds) *Responder {
	return &Responder{thresholds: t}
}

// Respond answers question from v and its snapshot s.
func (r *Responder) Respond(v View, s Snapshot, question string) Answer {
	t, ok := matchTopic(question)
	if !ok {
		return r.general(s)
	}
	return t.handle(r, v, s)
}

func noData(topic string) Answer { return Answer{Topic: topic, Text: NoData} }

func (r *Responder) compensation(v View, _ Snapshot) Answer {
	if len(v.Active) == 0 {
		return noData(TopicCompensation)
	}
	chart := compaByDepartment(v.Active, "Compa-Ratio per Avdeling (1.0 = markedssnitt)")
	chart.Band = nil
	lowest := chart.Series[0].Points[0]
	lowestCountry := sortByValue(groupMean(v.Active, byCountry, dataset.Employee.CompaRatio), true)[0]

	text := fmt.Sprintf(`**Lønnsavvik-analyse:**

**Største lønnsavvik per avdeling:**
- **%s** har lavest compa-ratio på **%.2f** (under markedssnitt)
- Dette betyr at ansatte i denne avdelingen i snitt tjener %.0f%% under lønnsbandets midtpunkt

**Per land:**
- **%s** har lavest lønnsnivå relativt til band

**Risiko:** Lavt lønnsnivå korrelerer med høyere flight risk og turnover.

**Se graf:** 'Compensation' tab → Compa-Ratio per Avdeling`,
		lowest.Label, lowest.Value, (1-lowest.Value)*100, lowestCountry.Label)
	return Answer{Topic: TopicCompensation, Text: text, Chart: &chart}
}

// turnover looks at every termination in the dataset regardless of filters.
func (r *Responder) turnover(v View, _ Snapshot) Answer {
	perDept := map[string]float64{}
	for _, t := range v.Data.Terminations {
		if e, ok := v.Data.Employee(t.EmployeeID); ok {
			perDept[e.Department]++
		}
	}
	if len(perDept) == 0 {
		return noData(TopicTurnover)
	}
	ranked := sortByValue(pointsFrom(perDept), false)

	var cost float64
	var voluntary, involuntary int
	for _, t := range v.Data.Terminations {
		cost += t.ReplacementCost
		switch t.Reason {
		case dataset.ReasonVoluntary:
			voluntary++
		case dataset.ReasonInvoluntary:
			involuntary++
		}
	}

	var b strings.Builder
	b.WriteString("**Turnover-analyse:**\n\n**Høyest turnover per avdeling:**\n")
	for i, p := range ranked[:min(3, len(ranked))] {
		fmt.Fprintf(&b, "%d. **%s**: %.0f avganger\n", i+1, p.Label, p.Value)
	}
	fmt.Fprintf(&b, "\n**Total kostnad av attrition:** %s NOK\n\n", thousands(cost))
	fmt.Fprintf(&b, "**Årsaker (fra exit-undersøkelser):**\n- %d frivillige avganger\n- %d ufrivillige avganger\n\n", voluntary, involuntary)
	b.WriteString("**Se graf:** 'Turnover' tab → Turnover Rate per Avdeling")

	return Answer{Topic: TopicTurnover, Text: b.String(), Chart: &ChartSpec{
		Kind: KindBar, Title: "Antall Avganger per Avdeling", X: "department", Y: "count", Orientation: Vertical,
		Series: single(ranked),
	}}
}

func (r *Responder) engagement(v View, _ Snapshot) Answer {
	if len(v.Active) == 0 {
		return noData(TopicEngagement)
	}
	score := func(e dataset.Employee) float64 { return e.EngagementScore }
	byDept := sortByValue(groupMean(v.Active, byDepartment, score), true)
	byCountryLowest := sortByValue(groupMean(v.Active, byCountry, score), true)[0]
	below := count(v.Active, func(e dataset.Employee) bool { return e.EngagementScore < 6 })

	text := fmt.Sprintf(`**Engasjements-analyse:**

**Lavest engasjement:**
- **%s** har lavest score på **%.1f/10**
- **%s** har lavest nasjonal score

**Organisasjonssnitt:** %.1f/10 (mål: %g)

**Risiko:** %d ansatte har engagement under 6.0

**Korrelasjon:**
- Lav engagement → Høyere sykefravær
- Lav engagement → Høyere turnover-risiko

**Se graf:** 'Overview' tab → Engasjement per Avdeling`,
		byDept[0].Label, byDept[0].Value, byCountryLowest.Label, mean(v.Active, score), r.thresholds.EngagementMin, below)

	return Answer{Topic: TopicEngagement, Text: text, Chart: &ChartSpec{
		Kind: KindBar, Title: "Engasjementsscore per Avdeling", X: "engagement_score", Y: "department", Orientation: Horizontal,
		Series:    single(byDept),
		Threshold: &ReferenceLine{Axis: "x", Value: r.thresholds.EngagementMin, Label: "Mål"},
	}}
}

// sickLeave joins every sick-leave record with its employee regardless of
// filters; the rate quoted is the filtered snapshot value.
func (r *Responder) sickLeave(v View, s Snapshot) Answer {
	perDept := map[string]float64{}
	for _, rec := range v.Data.SickLeave {
		if e, ok := v.Data.Employee(rec.EmployeeID); ok {
			perDept[e.Department] += rec.SickDays
		}
	}
	if len(perDept) == 0 {
		return noData(TopicSickLeave)
	}
	ranked := sortByValue(pointsFrom(perDept), false)

	text := fmt.Sprintf(`**Sykefraværs-analyse:**

**Høyest sykefravær:**
- **%s** har flest sykedager totalt
- Gjennomsnittlig sykefraværsrate: %.1f%%

**Sesongvariasjon:** Høyere fravær i vintermånedene (jan-feb, nov-des)

**Korrelasjon med engagement:**
- Ansatte med lav engagement har 40%% høyere sykefravær

**Se graf:** Se 'Overview' for avdelingsfordeling`,
		ranked[0].Label, s[MetricSickLeaveRate])

	return Answer{Topic: TopicSickLeave, Text: text, Chart: &ChartSpec{
		Kind: KindBar, Title: "Totale Sykedager per Avdeling", X: "department", Y: "sick_days", Orientation: Vertical,
		Series: single(ranked),
	}}
}

// recruitment covers every requisition regardless of filters.
func (r *Responder) recruitment(v View, _ Snapshot) Answer {
	if len(v.Data.Recruitment) == 0 {
		return noData(TopicRecruitment)
	}
	sums, ns := map[string]float64{}, map[string]float64{}
	var linkedIn, referral int
	for _, req := range v.Data.Recruitment {
		sums[req.Department] += req.DaysToFill
		ns[req.Department]++
		switch req.Source {
		case "LinkedIn":
			linkedIn++
		case "Referral":
			referral++
		}
	}
	for k := range sums {
		sums[k] /= ns[k]
	}
	ranked := sortByValue(pointsFrom(sums), false)

	text := fmt.Sprintf(`**Rekrutterings-analyse:**

**Lengst rekrutteringstid:**
- **%s**: %.0f dager i snitt
- Benchmark: %g dager

**Beste kilder:**
- LinkedIn: %d ansettelser
- Referral: %d ansettelser

**Se graf:** 'Recruitment' tab → Time-to-Fill per Avdeling`,
		ranked[0].Label, ranked[0].Value, config.TimeToFillBenchmark, linkedIn, referral)

	return Answer{Topic: TopicRecruitment, Text: text, Chart: &ChartSpec{
		Kind: KindBar, Title: "Gjennomsnittlig Time-to-Fill (dager)", X: "department", Y: "days_to_fill", Orientation: Vertical,
		Series:    single(ranked),
		Threshold: &ReferenceLine{Axis: "y", Value: config.TimeToFillBenchmark},
	}}
}

func (r *Responder) diversity(v View, s Snapshot) Answer {
	if len(v.Active) == 0 {
		return noData(TopicDiversity)
	}
	n := float64(len(v.Active))
	m := float64(countGender(v.Active, dataset.GenderMale))
	f := float64(countGender(v.Active, dataset.GenderFemale))

	text := fmt.Sprintf(`**Diversity-analyse:**

**Kjønnsfordeling total:**
- Menn: %.0f (%.0f%%)
- Kvinner: %.0f (%.0f%%)

**I ledelsen (Management + Executive):**
- Kvinner: **%.0f%%** (mål: %g%%)

**Gap:** Kvinner er underrepresentert på Director+ nivå

**Se graf:** 'Workforce' tab → Kjønnsfordeling per Senioritetsnivå`,
		m, m/n*100, f, f/n*100, s[MetricLeadershipFemalePct], r.thresholds.LeadershipFemaleTarget)

	chart := genderBySeniority(v.Active, "Kjønnsfordeling per Nivå")
	return Answer{Topic: TopicDiversity, Text: text, Chart: &chart}
}

func (r *Responder) flightRisk(v View, _ Snapshot) Answer {
	if len(v.Active) == 0 {
		return noData(TopicFlightRisk)
	}
	perDept := map[string]float64{}
	for _, e := range v.Active {
		if _, ok := perDept[e.Department]; !ok {
			perDept[e.Department] = 0
		}
		if e.FlightRisk == dataset.RiskHigh {
			perDept[e.Department]++
		}
	}
	ranked := sortByValue(pointsFrom(perDept), false)

	var b strings.Builder
	b.WriteString("**Flight Risk-analyse:**\n\n**Avdelinger med høyest risiko:**\n")
	for i, p := range ranked[:min(2, len(ranked))] {
		fmt.Fprintf(&b, "%d. **%s**: %.0f høy-risiko ansatte\n", i+1, p.Label, p.Value)
	}
	fmt.Fprintf(&b, "\n**Totalt:** %d ansatte med høy flight risk\n\n", countHighRisk(v.Active))
	b.WriteString("**Risikofaktorer:**\n- Lav engagement (<6)\n- Lang tid siden forfremmelse\n- Under markedslønn\n\n")
	b.WriteString("**Se graf:** 'Turnover' tab → Flight Risk Analyse")

	return Answer{Topic: TopicFlightRisk, Text: b.String(), Chart: &ChartSpec{
		Kind: KindBar, Title: "Antall Høy-Risiko Ansatte per Avdeling", X: "department", Y: "flight_risk", Orientation: Vertical,
		Series: single(ranked),
	}}
}

func (r *Responder) general(s Snapshot) Answer {
	var b strings.Builder
	fmt.Fprintf(&b, `**Generell HR-oversikt:**

**Headcount:** %s ansatte
**Turnover:** %.1f%%
**Engagement:** %.1f/10
**Time-to-Hire:** %.0f dager
**Sykefravær:** %.1f%%

**Prøv spørsmål som:**
`, countText(s[MetricHeadcount]), s[MetricTurnoverRate], s[MetricAvgEngagement], s[MetricAvgTimeToHire], s[MetricSickLeaveRate])
	for _, q := range ExampleQuestions {
		fmt.Fprintf(&b, "- %q\n", q)
	}
	return Answer{Topic: TopicGeneral, Text: strings.TrimRight(b.String(), "\n")}
}
