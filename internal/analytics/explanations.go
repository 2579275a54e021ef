package analytics

import "fmt"

// Explanation keys, one per red-flag rule.
const (
	KeyTurnover      = "turnover"
	KeyEngagement    = "engagement"
	KeyFlightRisk    = "flight_risk"
	KeyTimeToHire    = "time_to_hire"
	KeySickLeave     = "sick_leave"
	KeySalary        = "salary"
	KeyDiversity     = "diversity"
	KeySpanOfControl = "span_of_control"
	KeyMobility      = "mobility"
)

// NoExplanation is returned for keys without a template.
const NoExplanation = "Ingen detaljert analyse tilgjengelig."

type explainFunc func(s Snapshot, t Thresholds) string

var explanations = map[string]explainFunc{
	KeyTurnover: func(s Snapshot, _ Thresholds) string {
		return fmt.Sprintf(`**Analyse av turnover:**
- Total frivillig turnover: %s ansatte
- Hovedårsaker basert på exit-undersøkelser viser at ansatte med lav engasjementsscore (%.1f/10) har høyere sannsynlighet for å slutte
- Avdelinger med høyest turnover bør prioriteres for tiltak
- Estimert kostnad for attrition: %s NOK

**Anbefalte tiltak:**
1. Gjennomfør stay-intervjuer med høy-risiko ansatte
2. Revurder kompensasjonspakker for kritiske roller
3. Styrk karriereutviklingsmuligheter`,
			countText(s[MetricVoluntaryTurnover]), s[MetricAvgEngagement], thousands(s[MetricCostOfAttrition]))
	},
	KeyEngagement: func(s Snapshot, _ Thresholds) string {
		return fmt.Sprintf(`**Analyse av engasjement:**
- Gjennomsnittlig engasjementsscore: %.1f/10
- %s ansatte har høy flight risk
- Det er sterk korrelasjon mellom engasjement og produktivitet

**Påvirkningsfaktorer:**
- Lederskap og feedback-kvalitet
- Karriereutviklingsmuligheter
- Work-life balance
- Lønn relativt til markedet (compa-ratio: %.2f)

**Anbefalte tiltak:**
1. Implementer pulse surveys for tettere oppfølging
2. Utvikle ledertreningsprogrammer
3. Etabler mentorordninger`,
			s[MetricAvgEngagement], countText(s[MetricHighFlightRisk]), s[MetricAvgCompaRatio])
	},
	KeyFlightRisk: func(s Snapshot, _ Thresholds) string {
		return fmt.Sprintf(`**Analyse av flight risk:**
- %.1f%% av ansatte klassifisert som høy risiko
- Risikofaktorer inkluderer: lav engasjement, lang tid siden forfremmelse, lønn under band-midtpunkt

**Kostnad ved å miste disse ansatte:**
Estimert erstatningskostnad er 1.5-2.5x årslønn per person.
Med gjennomsnittlig lønn på %s NOK representerer dette en betydelig risiko.

**Anbefalte tiltak:**
1. Prioriter retention-samtaler med topp-talenter
2. Vurder akselerert lønnsrevisjon for underbetalt segment
3. Tilby stretch assignments og synlighet for høytytende`,
			s[MetricFlightRiskPct], thousands(s[MetricAvgSalary]))
	},
	KeyTimeToHire: func(s Snapshot, _ Thresholds) string {
		return fmt.Sprintf(`**Analyse av rekrutteringstid:**
- Gjennomsnittlig tid for å fylle stillinger: %.0f dager
- Benchmark for bransjen er 35-45 dager

**Konsekvenser av lang rekrutteringstid:**
- Økt arbeidsbelastning på eksisterende ansatte
- Tapt produktivitet og inntekt
- Risiko for å miste gode kandidater til konkurrenter

**Anbefalte tiltak:**
1. Strømlinjeform intervjuprosessen
2. Bygg sterkere talent pipeline
3. Vurder bruk av referral-bonuser
4. Optimaliser stillingsannonser og employer branding`,
			s[MetricAvgTimeToHire])
	},
	KeySickLeave: func(s Snapshot, _ Thresholds) string {
		return fmt.Sprintf(`**Analyse av sykefravær:**
- Sykefraværsrate: %.1f%%
- Korrelerer ofte med lav engasjement og høy arbeidsbelastning
- Sesongvariasjon (høyere i vintermånedene)

**Kostnad av sykefravær:**
Med headcount på %s og gjennomsnittlig dagsrate tilsier dette betydelige indirekte kostnader.

**Anbefalte tiltak:**
1. Analyser sykefravær per avdeling og leder
2. Implementer helsefremmende tiltak
3. Vurder fleksible arbeidsordninger
4. Følg opp ledere med høyt fravær i team`,
			s[MetricSickLeaveRate], countText(s[MetricHeadcount]))
	},
	KeySalary: func(s Snapshot, _ Thresholds) string {
		// The direction here is measured against the ideal band, not the flag range.
		direction := "over"
		if s[MetricAvgCompaRatio] < 0.95 {
			direction = "under"
		}
		return fmt.Sprintf(`**Analyse av lønnsposisjon:**
- Gjennomsnittlig compa-ratio: %.2f
- Idealområde er 0.95-1.05
- Ansatte %s markedslønn

**Risiko ved lønnsavvik:**
- Under markedslønn: Høyere turnover, vanskelig å rekruttere
- Over markedslønn: Høyere lønnskostnader, begrenset fleksibilitet

**Anbefalte tiltak:**
1. Gjennomfør lønnsmarkedsanalyse
2. Prioriter justeringer for kritiske roller
3. Kommuniser total rewards-pakke tydeligere`,
			s[MetricAvgCompaRatio], direction)
	},
	KeyDiversity: func(s Snapshot, t Thresholds) string {
		return fmt.Sprintf(`**Analyse av kjønnsbalanse i ledelsen:**
- Kvinner utgjør %.0f%% av total arbeidsstyrke
- Men betydelig lavere representasjon i lederroller
- Mål: Minimum %.0f%% av hvert kjønn i ledelsen

**Konsekvenser av ubalanse:**
- Begrenset perspektivmangfold i beslutninger
- Svakere employer brand
- Potensielt juridisk/regulatorisk risiko

**Anbefalte tiltak:**
1. Sett konkrete mål for kjønnsbalanse i ledelsen
2. Utvikle talentprogrammer for underrepresenterte grupper
3. Gjennomgå rekrutteringsprosesser for ubevisst bias
4. Etabler sponsorprogrammer for kvinner`,
			s[MetricGenderBalance], t.LeadershipFemaleTarget)
	},
	KeySpanOfControl: func(s Snapshot, _ Thresholds) string {
		return fmt.Sprintf(`**Analyse av span of control:**
- Gjennomsnittlig %.1f ansatte per leder
- Anbefalt nivå: 5-10 for de fleste roller

**Konsekvenser av for bred span:**
- Redusert tid til coaching og utvikling
- Økt risiko for utbrenthet hos ledere
- Svakere oppfølging og feedback

**Anbefalte tiltak:**
1. Identifiser ledere med >12 direct reports
2. Vurder opprettelse av teamlead-roller
3. Implementer peer coaching`,
			s[MetricSpanOfControl])
	},
	KeyMobility: func(s Snapshot, _ Thresholds) string {
		return fmt.Sprintf(`**Analyse av intern mobilitet:**
- Kun %.1f%% har byttet rolle internt
- Benchmark: 10-15%% årlig intern mobilitet

**Konsekvenser av lav mobilitet:**
- Stagnasjon og redusert engasjement
- Mister talenter til eksterne muligheter
- Begrenset kunnskapsdeling på tvers

**Anbefalte tiltak:**
1. Etabler intern jobbmarked med synlige muligheter
2. Oppmuntre ledere til å støtte interne bytter
3. Fjern barrierer for tverrfaglig bevegelse
4. Anerkjenn ledere som utvikler talent for andre avdelinger`,
			s[MetricInternalMobility])
	},
}

// Explain renders the explanation for key, or NoExplanation when the key has
// no template.
func Explain(key string, s Snapshot, t Thresholds) string {
	fn, ok := explanations[key]
	if !ok {
		return NoExplanation
	}
	return fn(s, t)
}
