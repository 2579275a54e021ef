package registry

import (
	"github.com/vinodismyname/hrpulse/internal/analytics"
	"github.com/vinodismyname/hrpulse/internal/report"
	"github.com/vinodismyname/hrpulse/internal/runtime"
	"github.com/vinodismyname/hrpulse/internal/telemetry"
)

// FilterInput holds the dashboard selections shared by analysis tools.
// Empty values, "all" and "Alle" mean no filter.
type FilterInput struct {
	Country    string `json:"country,omitempty" jsonschema_description:"Country filter (e.g., Norge); empty or 'all' for every country" validate:"filter_value"`
	Department string `json:"department,omitempty" jsonschema_description:"Department filter; empty or 'all' for every department" validate:"filter_value"`
	Seniority  string `json:"seniority,omitempty" jsonschema_description:"Seniority level: Junior, Mid, Senior, Lead, Director, VP, C-Level or all" validate:"seniority"`
	JobFamily  string `json:"job_family,omitempty" jsonschema_description:"Job family filter; empty or 'all' for every family" validate:"filter_value"`
	DateFrom   string `json:"date_from,omitempty" jsonschema_description:"Start date YYYY-MM-DD (accepted but not applied)" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `json:"date_to,omitempty" jsonschema_description:"End date YYYY-MM-DD (accepted but not applied)" validate:"omitempty,datetime=2006-01-02"`
}

// LoadDatasetInput defines parameters for load_dataset.
type LoadDatasetInput struct {
	Path       string `json:"path" jsonschema_description:"Directory with employees.csv, sick_leave.csv, recruitment.csv, terminations.csv (or a data/ subdirectory), or an .xlsx workbook with sheets of the same names" validate:"required,dataset_path"`
	AccessCode string `json:"access_code,omitempty" jsonschema_description:"Shared access code when the server gate is enabled"`
}

// LoadDatasetOutput documents the response fields for load_dataset.
type LoadDatasetOutput struct {
	DatasetID    string `json:"dataset_id" jsonschema_description:"Server-assigned dataset handle ID"`
	Source       string `json:"source"`
	Employees    int    `json:"employees"`
	Active       int    `json:"active"`
	SickLeave    int    `json:"sick_leave_records"`
	Requisitions int    `json:"requisitions"`
	Terminations int    `json:"terminations"`
}

// DatasetInput identifies a loaded dataset.
type DatasetInput struct {
	DatasetID string `json:"dataset_id" jsonschema_description:"Dataset handle ID from load_dataset" validate:"required"`
}

// CloseDatasetOutput reports the outcome of close_dataset.
type CloseDatasetOutput struct {
	Success bool `json:"success" jsonschema_description:"True when the handle was closed"`
}

// DatasetSummaryOutput describes a dataset and the values its filters accept.
type DatasetSummaryOutput struct {
	LoadDatasetOutput
	Options          analytics.FilterOptions `json:"filter_options"`
	Tabs             []string                `json:"tabs"`
	Metrics          []string                `json:"metrics"`
	ExampleQuestions []string                `json:"example_questions"`
}

// AnalysisInput targets a filtered selection of a dataset.
type AnalysisInput struct {
	DatasetID string `json:"dataset_id" jsonschema_description:"Dataset handle ID from load_dataset" validate:"required"`
	FilterInput
}

// KPIOutput lists every metric for the selection.
type KPIOutput struct {
	DatasetID string             `json:"dataset_id"`
	Filters   analytics.Filters  `json:"filters"`
	Headcount int                `json:"headcount"`
	KPIs      analytics.Snapshot `json:"kpis"`
}

// RedFlagsOutput lists the triggered red flags in rule order.
type RedFlagsOutput struct {
	DatasetID string              `json:"dataset_id"`
	Filters   analytics.Filters   `json:"filters"`
	Flags     []analytics.RedFlag `json:"flags"`
	Counts    map[string]int      `json:"counts"`
}

// ExecutiveSummaryOutput carries the markdown summary and the flag overview.
type ExecutiveSummaryOutput struct {
	DatasetID string            `json:"dataset_id"`
	Filters   analytics.Filters `json:"filters"`
	Summary   string            `json:"summary"`
	Counts    map[string]int    `json:"flag_counts"`
}

// TabChartsInput selects one dashboard tab.
type TabChartsInput struct {
	AnalysisInput
	Tab string `json:"tab" jsonschema_description:"Dashboard tab: overview, turnover, workforce, compensation or recruitment" validate:"required"`
}

// TabChartsOutput carries neutral chart descriptors for a tab.
type TabChartsOutput struct {
	DatasetID string                `json:"dataset_id"`
	Tab       string                `json:"tab"`
	Charts    []analytics.ChartSpec `json:"charts"`
}

// ListEmployeesInput defines a paged employee listing.
type ListEmployeesInput struct {
	AnalysisInput
	List     string `json:"list" jsonschema_description:"high_risk (high flight risk by salary) or underpaid (compa ratio below 0.90)" validate:"required,oneof=high_risk underpaid"`
	PageSize int    `json:"page_size,omitempty" jsonschema_description:"Rows per page (bounded)" validate:"gte=0"`
	Cursor   string `json:"cursor,omitempty" jsonschema_description:"Opaque cursor from a previous page; filters and list must be unchanged" validate:"omitempty,cursor"`
}

// PageMeta captures paging metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Returned   int    `json:"returned"`
	Offset     int    `json:"offset"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ListEmployeesOutput is one page of a listing.
type ListEmployeesOutput struct {
	DatasetID string                  `json:"dataset_id"`
	List      string                  `json:"list"`
	Rows      []analytics.EmployeeRow `json:"rows"`
	Meta      PageMeta                `json:"meta"`
}

// FunnelOutput is the recruitment funnel for the selection.
type FunnelOutput struct {
	DatasetID string `json:"dataset_id"`
	analytics.Funnel
}

// AskQuestionInput defines parameters for ask_question.
type AskQuestionInput struct {
	AnalysisInput
	Question       string `json:"question" jsonschema_description:"Free-text question, e.g. 'Hvilken avdeling har høyest turnover?'" validate:"required,max=500"`
	SessionID      string `json:"session_id,omitempty" jsonschema_description:"Conversation ID returned by a previous call; omit to start a new one"`
	IncludeHistory bool   `json:"include_history,omitempty" jsonschema_description:"Return the recorded exchanges of the conversation, oldest first"`
}

// AskQuestionOutput carries the answer and the conversation bookkeeping.
type AskQuestionOutput struct {
	SessionID string               `json:"session_id"`
	Turns     int                  `json:"turns"`
	Topic     string               `json:"topic"`
	Answer    string               `json:"answer"`
	Chart     *analytics.ChartSpec `json:"chart,omitempty"`
	Tokens    int                  `json:"tokens,omitempty" jsonschema_description:"Approximate token count of the answer for the configured model"`
	History   []analytics.Exchange `json:"history,omitempty"`
}

// SimulateInput defines a what-if intervention.
type SimulateInput struct {
	AnalysisInput
	TargetDepartment  string  `json:"target_department,omitempty" jsonschema_description:"Department the intervention targets; empty or 'all' for every department" validate:"filter_value"`
	TargetSeniority   string  `json:"target_seniority,omitempty" jsonschema_description:"Seniority the intervention targets; empty or 'all' for every level" validate:"seniority"`
	SalaryIncreasePct float64 `json:"salary_increase_pct,omitempty" jsonschema_description:"Salary increase in percent (0-20)" validate:"gte=0,lte=20"`
	TrainingHours     float64 `json:"training_hours,omitempty" jsonschema_description:"Extra training hours per employee (0-100)" validate:"gte=0,lte=100"`
	EngagementProgram bool    `json:"engagement_program,omitempty" jsonschema_description:"Run an engagement program"`
}

// SimulateOutput is the projected outcome.
type SimulateOutput struct {
	DatasetID string             `json:"dataset_id"`
	Scenario  analytics.Scenario `json:"scenario"`
	analytics.Projection
}

// ExportReportInput defines parameters for export_report.
type ExportReportInput struct {
	AnalysisInput
	OutputPath string `json:"output_path" jsonschema_description:"Target .xlsx path inside an allowed directory" validate:"required,report_path"`
}

// ExportReportOutput describes the written workbook.
type ExportReportOutput struct {
	DatasetID string `json:"dataset_id"`
	report.Result
}

// ServerStatusOutput exposes limits and counters for operators.
type ServerStatusOutput struct {
	Version          string          `json:"version"`
	OpenDatasets     int             `json:"open_datasets"`
	DatasetIDs       []string        `json:"dataset_ids"`
	Limits           runtime.Limits  `json:"limits"`
	Telemetry        telemetry.Stats `json:"telemetry"`
	TokenModel       string          `json:"token_model,omitempty"`
	ModelContextSize int             `json:"model_context_size,omitempty"`
	ExportsEnabled   bool            `json:"exports_enabled"`
	AccessGate       bool            `json:"access_gate"`
}
