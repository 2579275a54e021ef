package registry

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/hrpulse/internal/analytics"
	"github.com/vinodismyname/hrpulse/internal/datasets"
	"github.com/vinodismyname/hrpulse/internal/runtime"
	"github.com/vinodismyname/hrpulse/internal/security"
	"github.com/vinodismyname/hrpulse/internal/telemetry"
)

// Tool names.
const (
	ToolLoadDataset       = "load_dataset"
	ToolCloseDataset      = "close_dataset"
	ToolDatasetSummary    = "dataset_summary"
	ToolComputeKPIs       = "compute_kpis"
	ToolDetectRedFlags    = "detect_red_flags"
	ToolExecutiveSummary  = "executive_summary"
	ToolTabCharts         = "tab_charts"
	ToolListEmployees     = "list_employees"
	ToolRecruitmentFunnel = "recruitment_funnel"
	ToolAskQuestion       = "ask_question"
	ToolSimulateScenario  = "simulate_scenario"
	ToolExportReport      = "export_report"
	ToolServerStatus      = "server_status"
)

// WritePathValidator checks report output paths (backed by security.Manager).
type WritePathValidator interface {
	ValidateWritePath(path string) (string, error)
}

// Deps are the services the HR tools run against.
type Deps struct {
	Datasets       *datasets.Manager
	Paths          WritePathValidator
	Gate           *security.Gate
	Limits         runtime.Limits
	Tuning         analytics.Tuning
	Transcripts    *analytics.TranscriptStore
	Stats          func() telemetry.Stats
	ExportsEnabled bool
	Version        string
}

// tools binds handlers to their dependencies.
type tools struct {
	deps      Deps
	reg       *Registry
	responder *analytics.Responder
}

func newTools(reg *Registry, deps Deps) *tools {
	if deps.Transcripts == nil {
		deps.Transcripts = analytics.NewTranscriptStore(0)
	}
	return &tools{deps: deps, reg: reg, responder: analytics.NewResponder(deps.Tuning.Thresholds)}
}

// RegisterHRTools wires every HR analytics tool into the server and registry.
func RegisterHRTools(s *server.MCPServer, reg *Registry, deps Deps) {
	t := newTools(reg, deps)

	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		s.AddTool(tool, h)
		reg.Register(tool)
	}

	add(mcp.NewTool(
		ToolLoadDataset,
		mcp.WithDescription("Load an HR dataset (employees, sick_leave, recruitment, terminations) from a CSV directory or an .xlsx workbook and return a handle ID. Identical content resolves to the same handle. When the server access gate is enabled, supply access_code. Errors include PERMISSION_DENIED, ACCESS_DENIED, MISSING_TABLE, MALFORMED_DATA and LIMIT_EXCEEDED."),
		mcp.WithInputSchema[LoadDatasetInput](),
		mcp.WithOutputSchema[LoadDatasetOutput](),
	), mcp.NewTypedToolHandler(t.loadDataset))

	add(mcp.NewTool(
		ToolCloseDataset,
		mcp.WithDescription("Close a previously loaded dataset handle and free its slot"),
		mcp.WithInputSchema[DatasetInput](),
		mcp.WithOutputSchema[CloseDatasetOutput](),
	), mcp.NewTypedToolHandler(t.closeDataset))

	add(mcp.NewTool(
		ToolDatasetSummary,
		mcp.WithDescription("Describe a loaded dataset: row counts, the values each filter accepts (countries, departments, seniority levels, job families), dashboard tabs, metric names and example questions. Call this before filtering."),
		mcp.WithInputSchema[DatasetInput](),
		mcp.WithOutputSchema[DatasetSummaryOutput](),
	), mcp.NewTypedToolHandler(t.datasetSummary))

	add(mcp.NewTool(
		ToolComputeKPIs,
		mcp.WithDescription("Compute every KPI (headcount, tenure, turnover, engagement, flight risk, time-to-hire, sick leave, mobility, attrition cost, gender balance, span of control, training, compa ratio, leadership diversity) for a filtered selection. Empty selections yield 0 rather than errors."),
		mcp.WithInputSchema[AnalysisInput](),
		mcp.WithOutputSchema[KPIOutput](),
	), mcp.NewTypedToolHandler(t.computeKPIs))

	add(mcp.NewTool(
		ToolDetectRedFlags,
		mcp.WithDescription("Evaluate the KPIs of a selection against the configured benchmarks and return triggered red flags in fixed rule order with severity (danger, warning, info), message and explanation."),
		mcp.WithInputSchema[AnalysisInput](),
		mcp.WithOutputSchema[RedFlagsOutput](),
	), mcp.NewTypedToolHandler(t.detectRedFlags))

	add(mcp.NewTool(
		ToolExecutiveSummary,
		mcp.WithDescription("Render the executive summary (markdown) of a selection: workforce, turnover, attrition cost, engagement status, flight risk, time-to-hire and sick leave."),
		mcp.WithInputSchema[AnalysisInput](),
		mcp.WithOutputSchema[ExecutiveSummaryOutput](),
	), mcp.NewTypedToolHandler(t.executiveSummary))

	add(mcp.NewTool(
		ToolTabCharts,
		mcp.WithDescription("Build toolkit-neutral chart descriptors (kind, title, axes, series, reference lines) for one dashboard tab: overview, turnover, workforce, compensation or recruitment."),
		mcp.WithInputSchema[TabChartsInput](),
		mcp.WithOutputSchema[TabChartsOutput](),
	), mcp.NewTypedToolHandler(t.tabCharts))

	add(mcp.NewTool(
		ToolListEmployees,
		mcp.WithDescription("List employees of a selection page by page: high_risk (high flight risk, highest salary first) or underpaid (compa ratio below 0.90, lowest first). Pass next_cursor back unchanged with the same filters to continue."),
		mcp.WithInputSchema[ListEmployeesInput](),
		mcp.WithOutputSchema[ListEmployeesOutput](),
	), mcp.NewTypedToolHandler(t.listEmployees))

	add(mcp.NewTool(
		ToolRecruitmentFunnel,
		mcp.WithDescription("Recruitment funnel of a selection (requisitions, screened, interviewed, hired and conversion rates), narrowed by department and country."),
		mcp.WithInputSchema[AnalysisInput](),
		mcp.WithOutputSchema[FunnelOutput](),
	), mcp.NewTypedToolHandler(t.recruitmentFunnel))

	add(mcp.NewTool(
		ToolAskQuestion,
		mcp.WithDescription("Answer a free-text HR question (Norwegian or English keywords) with a deterministic text answer and an optional chart. Topics: compensation, turnover, engagement, sick leave, recruitment, diversity, flight risk; anything else gets a general overview. Pass session_id to keep a conversation transcript."),
		mcp.WithInputSchema[AskQuestionInput](),
		mcp.WithOutputSchema[AskQuestionOutput](),
	), mcp.NewTypedToolHandler(t.askQuestion))

	add(mcp.NewTool(
		ToolSimulateScenario,
		mcp.WithDescription("Project a what-if retention intervention (salary increase, training hours, engagement program) over high flight-risk employees of a target department and seniority: retained headcount, attrition cost before and after, net benefit and ROI."),
		mcp.WithInputSchema[SimulateInput](),
		mcp.WithOutputSchema[SimulateOutput](),
	), mcp.NewTypedToolHandler(t.simulateScenario))

	add(mcp.NewTool(
		ToolExportReport,
		mcp.WithDescription("Write an .xlsx report of a selection (KPIs, red flags, executive summary and chart data per tab) to an allowed directory. Hidden unless exports are enabled on the server."),
		mcp.WithInputSchema[ExportReportInput](),
		mcp.WithOutputSchema[ExportReportOutput](),
	), mcp.NewTypedToolHandler(t.exportReport))

	add(mcp.NewTool(
		ToolServerStatus,
		mcp.WithDescription("Report server version, effective limits, open datasets and tool call counters"),
		mcp.WithOutputSchema[ServerStatusOutput](),
	), t.serverStatus)
}
