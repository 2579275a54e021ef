package config

import "time"

// Default runtime limits and guardrails for the HR analytics server.
// Environment overrides are resolved in Load; thresholds and simulator
// coefficients can additionally be tuned through a YAML file.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenDatasets       = 4

	// Listing and paging
	DefaultPageSize    = 10
	MaxPageSize        = 200
	DefaultTrendMonths = 24

	// Conversation transcripts keep this many recent exchanges each
	DefaultTranscriptMaxExchanges = 50
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Dataset handle cache
	DefaultDatasetIdleTTL       = 30 * time.Minute
	DefaultDatasetCleanupPeriod = time.Minute
)

const (
	// WorkingDaysPerYear is the assumed number of working days per employee
	// used as the sick-leave rate denominator.
	WorkingDaysPerYear = 230

	// Red-flag benchmarks
	DefaultTurnoverMax            = 15.0
	DefaultEngagementMin          = 6.5
	DefaultFlightRiskMax          = 20.0
	DefaultTimeToHireMax          = 50.0
	DefaultSickLeaveMax           = 5.0
	DefaultCompaRatioMin          = 0.90
	DefaultCompaRatioMax          = 1.10
	DefaultLeadershipMinSize      = 10
	DefaultLeadershipFemaleMin    = 30.0
	DefaultLeadershipFemaleTarget = 40.0
	DefaultSpanOfControlMax       = 10.0
	DefaultMobilityMin            = 8.0

	// Chart reference lines
	TimeToFillBenchmark   = 45.0
	TrainingHoursTarget   = 40.0
	CompaBandLow          = 0.95
	CompaBandHigh         = 1.05
	UnderpaidCompaCeiling = 0.90
	TenureHistogramBins   = 20
)

const (
	// What-if simulator coefficients
	SimSalaryEffectPerPct    = 2.0
	SimTrainingEffectPerHour = 0.5
	SimProgramEffect         = 10.0
	SimRiskReductionCap      = 80.0
	SimTrainingCostPerHour   = 500.0
	SimProgramFixedCost      = 50000.0
	SimReplacementCostFactor = 1.8
)

const (
	// DefaultPassphrase gates load_dataset when HRPULSE_PASSPHRASE is unset
	// and the gate is enabled.
	DefaultPassphrase = "HR NORGE"

	// DefaultTokenModel is used to size answers for LLM clients.
	DefaultTokenModel = "gpt-4o"
)
