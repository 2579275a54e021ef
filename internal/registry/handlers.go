package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/hrpulse/internal/analytics"
	"github.com/vinodismyname/hrpulse/internal/dataset"
	"github.com/vinodismyname/hrpulse/internal/report"
	"github.com/vinodismyname/hrpulse/pkg/mcperr"
	"github.com/vinodismyname/hrpulse/pkg/pagination"
	"github.com/vinodismyname/hrpulse/pkg/validation"
)

// filters converts the input into an analytics selection.
func (in FilterInput) filters() analytics.Filters {
	f := analytics.Filters{
		Country:    in.Country,
		Department: in.Department,
		Seniority:  in.Seniority,
		JobFamily:  in.JobFamily,
	}
	// Dates were validated as YYYY-MM-DD.
	if d, err := time.Parse(time.DateOnly, in.DateFrom); err == nil {
		f.DateFrom = &d
	}
	if d, err := time.Parse(time.DateOnly, in.DateTo); err == nil {
		f.DateTo = &d
	}
	return f
}

// structured attaches a concise text rendering for clients ignoring structured output.
func structured(out any, summary, text string) *mcp.CallToolResult {
	res := mcp.NewToolResultStructured(out, summary)
	res.Content = []mcp.Content{mcp.NewTextContent(text)}
	return res
}

func (t *tools) dataset(id string) (*dataset.Dataset, error) {
	var ds *dataset.Dataset
	err := t.deps.Datasets.WithDataset(id, func(d *dataset.Dataset) error {
		ds = d
		return nil
	})
	return ds, err
}

func (t *tools) view(in AnalysisInput) (analytics.View, error) {
	ds, err := t.dataset(in.DatasetID)
	if err != nil {
		return analytics.View{}, err
	}
	return analytics.NewView(ds, in.filters()), nil
}

// snapshot computes the KPIs of the selection.
func (t *tools) snapshot(ctx context.Context, in AnalysisInput) (analytics.View, analytics.Snapshot, error) {
	v, err := t.view(in)
	if err != nil {
		return v, nil, err
	}
	return v, analytics.Compute(ctx, analytics.InputFor(v)), nil
}

func (t *tools) chartOptions() analytics.ChartOptions {
	return analytics.ChartOptions{Thresholds: t.deps.Tuning.Thresholds, TrendMonths: t.deps.Limits.TrendMonths}
}

func describe(id string, ds *dataset.Dataset) LoadDatasetOutput {
	return LoadDatasetOutput{
		DatasetID:    id,
		Source:       ds.Source,
		Employees:    len(ds.Employees),
		Active:       len(ds.ActiveEmployees()),
		SickLeave:    len(ds.SickLeave),
		Requisitions: len(ds.Recruitment),
		Terminations: len(ds.Terminations),
	}
}

func (t *tools) loadDataset(ctx context.Context, req mcp.CallToolRequest, in LoadDatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	if err := t.deps.Gate.Check(in.AccessCode); err != nil {
		zerolog.Ctx(ctx).Warn().Msg("load_dataset rejected by access gate")
		return toolError(ctx, mcperr.AccessDenied, err)
	}
	id, err := t.deps.Datasets.Open(ctx, in.Path)
	if err != nil {
		return toolError(ctx, mcperr.LoadFailed, err)
	}
	ds, err := t.dataset(id)
	if err != nil {
		return toolError(ctx, mcperr.LoadFailed, err)
	}
	out := describe(id, ds)
	summary := fmt.Sprintf("dataset_id=%s employees=%d active=%d", out.DatasetID, out.Employees, out.Active)
	text := fmt.Sprintf("%s sick_leave=%d requisitions=%d terminations=%d", summary, out.SickLeave, out.Requisitions, out.Terminations)
	return structured(out, summary, text), nil
}

func (t *tools) closeDataset(ctx context.Context, req mcp.CallToolRequest, in DatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	if err := t.deps.Datasets.CloseHandle(ctx, in.DatasetID); err != nil {
		return toolError(ctx, mcperr.InvalidHandle, err)
	}
	return structured(CloseDatasetOutput{Success: true}, "closed", "closed "+in.DatasetID), nil
}

func (t *tools) datasetSummary(ctx context.Context, req mcp.CallToolRequest, in DatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	ds, err := t.dataset(in.DatasetID)
	if err != nil {
		return toolError(ctx, mcperr.InvalidHandle, err)
	}
	out := DatasetSummaryOutput{
		LoadDatasetOutput: describe(in.DatasetID, ds),
		Options:           analytics.Options(ds),
		Tabs:              analytics.Tabs(),
		Metrics:           analytics.MetricNames(),
		ExampleQuestions:  analytics.ExampleQuestions,
	}
	summary := fmt.Sprintf("employees=%d active=%d countries=%d departments=%d", out.Employees, out.Active, len(out.Options.Countries), len(out.Options.Departments))
	lines := []string{
		summary,
		"countries: " + strings.Join(out.Options.Countries, ", "),
		"departments: " + strings.Join(out.Options.Departments, ", "),
		"seniority: " + strings.Join(out.Options.Seniority, ", "),
		"job_families: " + strings.Join(out.Options.JobFamilies, ", "),
		"tabs: " + strings.Join(out.Tabs, ", "),
	}
	return structured(out, summary, strings.Join(lines, "\n")), nil
}

func (t *tools) computeKPIs(ctx context.Context, req mcp.CallToolRequest, in AnalysisInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	v, s, err := t.snapshot(ctx, in)
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	out := KPIOutput{DatasetID: in.DatasetID, Filters: v.Filters, Headcount: len(v.Active), KPIs: s}
	summary := fmt.Sprintf("scope=%s headcount=%d metrics=%d", v.Filters.Label(), out.Headcount, len(s))
	lines := []string{summary}
	for _, name := range analytics.MetricNames() {
		lines = append(lines, fmt.Sprintf("%s=%.2f", name, s[name]))
	}
	return structured(out, summary, strings.Join(lines, "\n")), nil
}

func (t *tools) detectRedFlags(ctx context.Context, req mcp.CallToolRequest, in AnalysisInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	v, s, err := t.snapshot(ctx, in)
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	flags := analytics.DetectRedFlags(s, t.deps.Tuning.Thresholds)
	if flags == nil {
		flags = []analytics.RedFlag{}
	}
	counts := analytics.CountBySeverity(flags)
	out := RedFlagsOutput{DatasetID: in.DatasetID, Filters: v.Filters, Flags: flags, Counts: counts}
	summary := fmt.Sprintf("flags=%d danger=%d warning=%d info=%d", len(flags),
		counts[analytics.SeverityDanger], counts[analytics.SeverityWarning], counts[analytics.SeverityInfo])
	lines := []string{summary}
	for _, f := range flags {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", f.Type, f.Title, f.Message))
	}
	return structured(out, summary, strings.Join(lines, "\n")), nil
}

func (t *tools) executiveSummary(ctx context.Context, req mcp.CallToolRequest, in AnalysisInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	v, s, err := t.snapshot(ctx, in)
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	th := t.deps.Tuning.Thresholds
	out := ExecutiveSummaryOutput{
		DatasetID: in.DatasetID,
		Filters:   v.Filters,
		Summary:   analytics.ExecutiveSummary(s, v.Filters, th),
		Counts:    analytics.CountBySeverity(analytics.DetectRedFlags(s, th)),
	}
	return structured(out, "executive summary for "+v.Filters.Label(), out.Summary), nil
}

func (t *tools) tabCharts(ctx context.Context, req mcp.CallToolRequest, in TabChartsInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	v, err := t.view(in.AnalysisInput)
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	charts, err := analytics.TabCharts(v, in.Tab, t.chartOptions())
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	out := TabChartsOutput{DatasetID: in.DatasetID, Tab: strings.ToLower(strings.TrimSpace(in.Tab)), Charts: charts}
	summary := fmt.Sprintf("tab=%s charts=%d", out.Tab, len(charts))
	lines := []string{summary}
	for _, c := range charts {
		n := 0
		for _, s := range c.Series {
			n += len(s.Points)
		}
		lines = append(lines, fmt.Sprintf("- %s %q points=%d", c.Kind, c.Title, n))
	}
	return structured(out, summary, strings.Join(lines, "\n")), nil
}

func (t *tools) listEmployees(ctx context.Context, req mcp.CallToolRequest, in ListEmployeesInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	v, err := t.view(in.AnalysisInput)
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	rows, ok := analytics.ListEmployees(v, in.List)
	if !ok {
		return mcperr.Wrapf(mcperr.Validation, "unknown list %q", in.List), nil
	}

	fh := v.Filters.Hash()
	off, size := 0, t.deps.Limits.ClampPageSize(in.PageSize)
	if in.Cursor != "" {
		c, err := pagination.DecodeCursor(in.Cursor)
		if err != nil {
			return toolError(ctx, mcperr.CursorInvalid, err)
		}
		if err := c.Bind(in.DatasetID, in.List, fh); err != nil {
			return toolError(ctx, mcperr.CursorInvalid, err)
		}
		off, size = c.Off, t.deps.Limits.ClampPageSize(c.Ps)
	}

	page, next := pagination.Page(rows, off, size)
	out := ListEmployeesOutput{
		DatasetID: in.DatasetID,
		List:      in.List,
		Rows:      page,
		Meta:      PageMeta{Total: len(rows), Returned: len(page), Offset: off},
	}
	if next >= 0 {
		tok, err := pagination.EncodeCursor(pagination.Cursor{Did: in.DatasetID, Seg: in.List, Fh: fh, Off: next, Ps: size})
		if err != nil {
			return mcperr.New(mcperr.CursorBuildFailed, err.Error()), nil
		}
		out.Meta.NextCursor = tok
	}

	summary := fmt.Sprintf("list=%s total=%d returned=%d offset=%d more=%v", in.List, out.Meta.Total, out.Meta.Returned, off, next >= 0)
	lines := []string{summary}
	for _, r := range page {
		lines = append(lines, fmt.Sprintf("- %s %s (%s, %s, %s) salary=%.0f compa=%.2f risk=%s", r.ID, r.Name, r.Department, r.Country, r.Seniority, r.Salary, r.CompaRatio, r.FlightRisk))
	}
	return structured(out, summary, strings.Join(lines, "\n")), nil
}

func (t *tools) recruitmentFunnel(ctx context.Context, req mcp.CallToolRequest, in AnalysisInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	ds, err := t.dataset(in.DatasetID)
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	f := analytics.RecruitmentFunnel(ds, in.filters())
	out := FunnelOutput{DatasetID: in.DatasetID, Funnel: f}
	summary := fmt.Sprintf("requisitions=%d screened=%d interviewed=%d hired=%d", f.Requisitions, f.Screened, f.Interviewed, f.Hired)
	text := fmt.Sprintf("%s interview_rate=%.2f%% hire_rate=%.2f%%", summary, f.InterviewRate, f.HireRate)
	return structured(out, summary, text), nil
}

func (t *tools) askQuestion(ctx context.Context, req mcp.CallToolRequest, in AskQuestionInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	v, s, err := t.snapshot(ctx, in.AnalysisInput)
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	ans := t.responder.Respond(v, s, in.Question)
	id, turns := t.deps.Transcripts.Append(in.SessionID, analytics.Exchange{
		Question: in.Question,
		Topic:    ans.Topic,
		Answer:   ans.Text,
	})
	out := AskQuestionOutput{
		SessionID: id,
		Turns:     turns,
		Topic:     ans.Topic,
		Answer:    ans.Text,
		Chart:     ans.Chart,
		Tokens:    t.reg.CountTokens(ans.Text),
	}
	if in.IncludeHistory {
		out.History, _ = t.deps.Transcripts.History(id)
	}
	zerolog.Ctx(ctx).Debug().Str("session_id", id).Str("topic", ans.Topic).Msg("question answered")
	return structured(out, "topic="+ans.Topic, ans.Text), nil
}

func (t *tools) simulateScenario(ctx context.Context, req mcp.CallToolRequest, in SimulateInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	v, err := t.view(in.AnalysisInput)
	if err != nil {
		return toolError(ctx, mcperr.AnalysisFailed, err)
	}
	sc := analytics.Scenario{
		Department:        in.TargetDepartment,
		Seniority:         in.TargetSeniority,
		SalaryIncreasePct: in.SalaryIncreasePct,
		TrainingHours:     in.TrainingHours,
		EngagementProgram: in.EngagementProgram,
	}
	p := t.deps.Tuning.Simulator.Simulate(v, sc)
	out := SimulateOutput{DatasetID: in.DatasetID, Scenario: sc, Projection: p}
	summary := fmt.Sprintf("high_risk=%d risk_reduction=%.1f%% net_benefit=%.0f", p.HighRiskHeadcount, p.RiskReductionPct, p.NetBenefit)
	return structured(out, summary, p.Summary), nil
}

func (t *tools) exportReport(ctx context.Context, req mcp.CallToolRequest, in ExportReportInput) (*mcp.CallToolResult, error) {
	if !t.deps.ExportsEnabled {
		return mcperr.New(mcperr.ExportsDisabled, ""), nil
	}
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	if t.deps.Paths == nil {
		return mcperr.New(mcperr.ExportsDisabled, "no output directories configured"), nil
	}
	path, err := t.deps.Paths.ValidateWritePath(in.OutputPath)
	if err != nil {
		return toolError(ctx, mcperr.ExportFailed, err)
	}
	v, err := t.view(in.AnalysisInput)
	if err != nil {
		return toolError(ctx, mcperr.ExportFailed, err)
	}
	r, err := report.Build(ctx, v, t.deps.Tuning.Thresholds, t.chartOptions())
	if err != nil {
		return toolError(ctx, mcperr.ExportFailed, err)
	}
	res, err := report.Write(ctx, r, path)
	if err != nil {
		return toolError(ctx, mcperr.ExportFailed, err)
	}
	out := ExportReportOutput{DatasetID: in.DatasetID, Result: res}
	summary := fmt.Sprintf("path=%s sheets=%d rows=%d", res.Path, len(res.Sheets), res.Rows)
	return structured(out, summary, summary), nil
}

func (t *tools) serverStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := ServerStatusOutput{
		Version:          t.deps.Version,
		OpenDatasets:     t.deps.Datasets.Count(),
		DatasetIDs:       t.deps.Datasets.IDs(),
		Limits:           t.deps.Limits,
		TokenModel:       t.reg.TokenModel(),
		ModelContextSize: t.reg.ModelContextSize(),
		ExportsEnabled:   t.deps.ExportsEnabled,
		AccessGate:       t.deps.Gate.Enabled(),
	}
	if t.deps.Stats != nil {
		out.Telemetry = t.deps.Stats()
	}
	summary := fmt.Sprintf("version=%s open_datasets=%d/%d calls=%d errors=%d", out.Version, out.OpenDatasets,
		out.Limits.MaxOpenDatasets, out.Telemetry.ToolCalls, out.Telemetry.ToolErrors)
	return structured(out, summary, summary), nil
}
