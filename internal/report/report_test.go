package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/hrpulse/internal/analytics"
	"github.com/vinodismyname/hrpulse/internal/dataset/datasettest"
)

func TestBuild(t *testing.T) {
	v := analytics.NewView(datasettest.Sample(), analytics.Filters{})
	r, err := Build(context.Background(), v, analytics.DefaultThresholds(), analytics.ChartOptions{})
	require.NoError(t, err)
	require.Equal(t, 3.0, r.Snapshot[analytics.MetricHeadcount])
	require.Len(t, r.Tabs, len(analytics.Tabs()))
	require.Contains(t, r.Summary, "hele organisasjonen")
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, analytics.NewView(datasettest.Sample(), analytics.Filters{}), analytics.DefaultThresholds(), analytics.ChartOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	v := analytics.NewView(datasettest.Sample(), analytics.Filters{Country: "Norge"})
	r, err := Build(ctx, v, analytics.DefaultThresholds(), analytics.ChartOptions{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	res, err := Write(ctx, r, path)
	require.NoError(t, err)
	require.Equal(t, path, res.Path)
	require.Equal(t, []string{SheetKPIs, SheetRedFlags, SheetSummary, "Overview", "Turnover", "Workforce", "Compensation", "Recruitment"}, res.Sheets)
	require.Positive(t, res.Rows)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetKPIs)
	require.NoError(t, err)
	require.Equal(t, []string{"metric", "value"}, rows[0])
	require.Len(t, rows, len(analytics.MetricNames())+1)
	require.Equal(t, analytics.MetricHeadcount, rows[1][0])
	require.Equal(t, "3", rows[1][1])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Equal(t, "HR Pulse rapport", summary[0][0])
	require.Equal(t, []string{"Utvalg", "Norge"}, summary[2])

	overview, err := f.GetRows("Overview")
	require.NoError(t, err)
	require.Equal(t, "Headcount per Avdeling", overview[0][0])
}

func TestLabelsOf_UnionInFirstSeenOrder(t *testing.T) {
	c := analytics.ChartSpec{Series: []analytics.Series{
		{Name: "a", Points: []analytics.Point{{Label: "x", Value: 1}, {Label: "y", Value: 2}}},
		{Name: "b", Points: []analytics.Point{{Label: "z", Value: 3}, {Label: "x", Value: 4}}},
	}}
	require.Equal(t, []string{"x", "y", "z"}, labelsOf(c))
	require.Nil(t, valueAt(c.Series[0], "z"))
	require.Equal(t, 4.0, valueAt(c.Series[1], "x"))
}
