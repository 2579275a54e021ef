package analytics

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vinodismyname/hrpulse/config"
)

// Thresholds are the benchmark values the red-flag rules compare against.
type Thresholds struct {
	TurnoverMax            float64 `yaml:"turnover_max" json:"turnover_max"`
	EngagementMin          float64 `yaml:"engagement_min" json:"engagement_min"`
	FlightRiskMax          float64 `yaml:"flight_risk_max" json:"flight_risk_max"`
	TimeToHireMax          float64 `yaml:"time_to_hire_max" json:"time_to_hire_max"`
	SickLeaveMax           float64 `yaml:"sick_leave_max" json:"sick_leave_max"`
	CompaRatioMin          float64 `yaml:"compa_ratio_min" json:"compa_ratio_min"`
	CompaRatioMax          float64 `yaml:"compa_ratio_max" json:"compa_ratio_max"`
	LeadershipMinSize      int     `yaml:"leadership_min_size" json:"leadership_min_size"`
	LeadershipFemaleMin    float64 `yaml:"leadership_female_min" json:"leadership_female_min"`
	LeadershipFemaleTarget float64 `yaml:"leadership_female_target" json:"leadership_female_target"`
	SpanOfControlMax       float64 `yaml:"span_of_control_max" json:"span_of_control_max"`
	MobilityMin            float64 `yaml:"mobility_min" json:"mobility_min"`
}

// DefaultThresholds returns the stock benchmarks.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TurnoverMax:            config.DefaultTurnoverMax,
		EngagementMin:          config.DefaultEngagementMin,
		FlightRiskMax:          config.DefaultFlightRiskMax,
		TimeToHireMax:          config.DefaultTimeToHireMax,
		SickLeaveMax:           config.DefaultSickLeaveMax,
		CompaRatioMin:          config.DefaultCompaRatioMin,
		CompaRatioMax:          config.DefaultCompaRatioMax,
		LeadershipMinSize:      config.DefaultLeadershipMinSize,
		LeadershipFemaleMin:    config.DefaultLeadershipFemaleMin,
		LeadershipFemaleTarget: config.DefaultLeadershipFemaleTarget,
		SpanOfControlMax:       config.DefaultSpanOfControlMax,
		MobilityMin:            config.DefaultMobilityMin,
	}
}

// Validate rejects threshold sets that would make the rules meaningless.
func (t Thresholds) Validate() error {
	switch {
	case t.CompaRatioMin <= 0 || t.CompaRatioMax <= t.CompaRatioMin:
		return fmt.Errorf("analytics: compa ratio range [%.2f, %.2f] is invalid", t.CompaRatioMin, t.CompaRatioMax)
	case t.LeadershipMinSize < 0:
		return fmt.Errorf("analytics: leadership_min_size must be >= 0")
	case t.LeadershipFemaleMin < 0 || t.LeadershipFemaleMin > 100:
		return fmt.Errorf("analytics: leadership_female_min must be within 0..100")
	}
	return nil
}

// SimulatorModel holds the coefficients of the linear scenario projection.
type SimulatorModel struct {
	SalaryEffectPerPct    float64 `yaml:"salary_effect_per_pct" json:"salary_effect_per_pct"`
	TrainingEffectPerHour float64 `yaml:"training_effect_per_hour" json:"training_effect_per_hour"`
	ProgramEffect         float64 `yaml:"program_effect" json:"program_effect"`
	RiskReductionCap      float64 `yaml:"risk_reduction_cap" json:"risk_reduction_cap"`
	TrainingCostPerHour   float64 `yaml:"training_cost_per_hour" json:"training_cost_per_hour"`
	ProgramFixedCost      float64 `yaml:"program_fixed_cost" json:"program_fixed_cost"`
	ReplacementCostFactor float64 `yaml:"replacement_cost_factor" json:"replacement_cost_factor"`
}

// DefaultSimulatorModel returns the stock coefficients.
func DefaultSimulatorModel() SimulatorModel {
	return SimulatorModel{
		SalaryEffectPerPct:    config.SimSalaryEffectPerPct,
		TrainingEffectPerHour: config.SimTrainingEffectPerHour,
		ProgramEffect:         config.SimProgramEffect,
		RiskReductionCap:      config.SimRiskReductionCap,
		TrainingCostPerHour:   config.SimTrainingCostPerHour,
		ProgramFixedCost:      config.SimProgramFixedCost,
		ReplacementCostFactor: config.SimReplacementCostFactor,
	}
}

// Tuning bundles the tunable benchmark and simulator settings.
type Tuning struct {
	Thresholds Thresholds     `yaml:"thresholds"`
	Simulator  SimulatorModel `yaml:"simulator"`
}

// DefaultTuning returns defaults for both sections.
func DefaultTuning() Tuning {
	return Tuning{Thresholds: DefaultThresholds(), Simulator: DefaultSimulatorModel()}
}

// LoadTuning overlays the YAML file at path onto the defaults. Keys absent
// from the file keep their default. An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("analytics: read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("analytics: parse tuning file %s: %w", path, err)
	}
	if err := t.Thresholds.Validate(); err != nil {
		return DefaultTuning(), err
	}
	if t.Simulator.RiskReductionCap < 0 {
		return DefaultTuning(), errors.New("analytics: risk_reduction_cap must be >= 0")
	}
	return t, nil
}
