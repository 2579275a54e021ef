// Package report renders an analytics selection into an XLSX workbook.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/hrpulse/internal/analytics"
)

// Sheet names in workbook order. Tab chart sheets follow SheetSummary.
const (
	SheetKPIs     = "KPIs"
	SheetRedFlags = "Red Flags"
	SheetSummary  = "Summary"
)

// Report is everything exported for one filtered selection.
type Report struct {
	Source      string
	Filters     analytics.Filters
	Snapshot    analytics.Snapshot
	Flags       []analytics.RedFlag
	Summary     string
	Tabs        []TabData
	GeneratedAt time.Time
}

// TabData holds the chart descriptors of one dashboard tab.
type TabData struct {
	Name   string
	Charts []analytics.ChartSpec
}

// Result describes a written workbook.
type Result struct {
	Path   string   `json:"path"`
	Sheets []string `json:"sheets"`
	Rows   int      `json:"rows"`
}

// Build computes the report contents for the view.
func Build(ctx context.Context, v analytics.View, t analytics.Thresholds, opts analytics.ChartOptions) (Report, error) {
	s := analytics.Compute(ctx, analytics.InputFor(v))
	r := Report{
		Source:      v.Data.Source,
		Filters:     v.Filters,
		Snapshot:    s,
		Flags:       analytics.DetectRedFlags(s, t),
		Summary:     analytics.ExecutiveSummary(s, v.Filters, t),
		GeneratedAt: time.Now().UTC(),
	}
	opts.Thresholds = t
	for _, tab := range analytics.Tabs() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		charts, err := analytics.TabCharts(v, tab, opts)
		if err != nil {
			return Report{}, fmt.Errorf("report: %s charts: %w", tab, err)
		}
		r.Tabs = append(r.Tabs, TabData{Name: tab, Charts: charts})
	}
	return r, nil
}

// Write renders r to path, which must already be validated for writing.
func Write(ctx context.Context, r Report, path string) (Result, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	w := &sheetWriter{f: f}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return Result{}, fmt.Errorf("report: style: %w", err)
	}
	w.bold = bold

	if err := f.SetSheetName("Sheet1", SheetKPIs); err != nil {
		return Result{}, fmt.Errorf("report: rename sheet: %w", err)
	}
	w.kpis(r)
	w.flags(r.Flags)
	w.summary(r)
	for _, tab := range r.Tabs {
		w.charts(tab)
	}
	if w.err != nil {
		return Result{}, fmt.Errorf("report: write: %w", w.err)
	}
	if err := f.SaveAs(path); err != nil {
		return Result{}, fmt.Errorf("report: save %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Info().Str("path", path).Int("rows", w.rows).Msg("report written")
	return Result{Path: path, Sheets: f.GetSheetList(), Rows: w.rows}, nil
}

// sheetWriter appends rows sheet by sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	bold  int
	sheet string
	next  int
	rows  int
	err   error
}

func (w *sheetWriter) start(name string, width float64) {
	if w.err != nil {
		return
	}
	if name != SheetKPIs {
		if _, err := w.f.NewSheet(name); err != nil {
			w.err = err
			return
		}
	}
	w.sheet, w.next = name, 1
	w.err = w.f.SetColWidth(name, "A", "A", width)
}

func (w *sheetWriter) row(vals ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &vals); err != nil {
		w.err = err
		return
	}
	w.next++
	w.rows++
}

func (w *sheetWriter) header(vals ...any) {
	if w.err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, w.next)
	last, _ := excelize.CoordinatesToCellName(max(len(vals), 1), w.next)
	w.row(vals...)
	if w.err == nil {
		w.err = w.f.SetCellStyle(w.sheet, first, last, w.bold)
	}
}

func (w *sheetWriter) kpis(r Report) {
	w.start(SheetKPIs, 28)
	w.header("metric", "value")
	for _, name := range analytics.MetricNames() {
		w.row(name, r.Snapshot[name])
	}
}

func (w *sheetWriter) flags(flags []analytics.RedFlag) {
	w.start(SheetRedFlags, 24)
	w.header("severity", "title", "metric", "value", "message")
	for _, fl := range flags {
		w.row(fl.Type, fl.Title, fl.Metric, fl.Value, fl.Message)
	}
}

func (w *sheetWriter) summary(r Report) {
	w.start(SheetSummary, 100)
	w.header("HR Pulse rapport")
	w.row("Kilde", r.Source)
	w.row("Utvalg", r.Filters.Label())
	w.row("Generert", r.GeneratedAt.Format(time.RFC3339))
	w.row()
	for line := range strings.SplitSeq(r.Summary, "\n") {
		w.row(line)
	}
}

// charts lays out each chart as a bold title, a header of series names and
// one row per label.
func (w *sheetWriter) charts(tab TabData) {
	w.start(sheetTitle(tab.Name), 40)
	for _, c := range tab.Charts {
		w.header(c.Title)
		head := []any{firstNonEmpty(c.X, "label")}
		for i, s := range c.Series {
			head = append(head, firstNonEmpty(s.Name, c.Y, fmt.Sprintf("series %d", i+1)))
		}
		w.header(head...)
		for _, label := range labelsOf(c) {
			vals := []any{label}
			for _, s := range c.Series {
				vals = append(vals, valueAt(s, label))
			}
			w.row(vals...)
		}
		w.row()
	}
}

// labelsOf returns the union of point labels in first-seen order.
func labelsOf(c analytics.ChartSpec) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range c.Series {
		for _, p := range s.Points {
			if !seen[p.Label] {
				seen[p.Label] = true
				out = append(out, p.Label)
			}
		}
	}
	return out
}

func valueAt(s analytics.Series, label string) any {
	for _, p := range s.Points {
		if p.Label == label {
			return p.Value
		}
	}
	return nil
}

func sheetTitle(tab string) string {
	if tab == "" {
		return tab
	}
	return strings.ToUpper(tab[:1]) + tab[1:]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
