package analytics

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// Chart kinds understood by presentation clients.
const (
	KindBar       = "bar"
	KindPie       = "pie"
	KindLine      = "line"
	KindArea      = "area"
	KindHistogram = "histogram"
	KindBox       = "box"
)

// Bar orientations and multi-series layouts.
const (
	Horizontal = "h"
	Vertical   = "v"

	ModeStack = "stack"
	ModeGroup = "group"
)

// Point is one labelled value of a series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is a named sequence of points. Single-series charts leave Name empty.
type Series struct {
	Name   string  `json:"name,omitempty"`
	Points []Point `json:"points"`
}

// ReferenceLine is a dashed benchmark line drawn across the value axis.
type ReferenceLine struct {
	Axis  string  `json:"axis" jsonschema_description:"x or y"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// Band shades a value range, e.g. the ideal compa-ratio interval.
type Band struct {
	Axis string  `json:"axis"`
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// ChartSpec is a toolkit-neutral chart descriptor. X and Y name the fields the
// presentation layer should label its axes with; Group names the series
// dimension for multi-series charts.
type ChartSpec struct {
	Kind        string         `json:"kind"`
	Title       string         `json:"title"`
	X           string         `json:"x,omitempty"`
	Y           string         `json:"y,omitempty"`
	Group       string         `json:"group,omitempty"`
	Orientation string         `json:"orientation,omitempty"`
	Mode        string         `json:"mode,omitempty"`
	Series      []Series       `json:"series"`
	Threshold   *ReferenceLine `json:"threshold,omitempty"`
	Band        *Band          `json:"band,omitempty"`
}

// Empty reports whether the chart has no data points.
func (c ChartSpec) Empty() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

func single(points []Point) []Series { return []Series{{Points: points}} }

// groupCount counts rows per key; the result is sorted by label.
func groupCount(rows []dataset.Employee, key func(dataset.Employee) string) []Point {
	counts := map[string]float64{}
	for _, e := range rows {
		counts[key(e)]++
	}
	return pointsFrom(counts)
}

// groupMean averages val per key; the result is sorted by label.
func groupMean(rows []dataset.Employee, key func(dataset.Employee) string, val func(dataset.Employee) float64) []Point {
	sums := map[string]float64{}
	ns := map[string]float64{}
	for _, e := range rows {
		k := key(e)
		sums[k] += val(e)
		ns[k]++
	}
	for k := range sums {
		sums[k] /= ns[k]
	}
	return pointsFrom(sums)
}

func pointsFrom(m map[string]float64) []Point {
	out := make([]Point, 0, len(m))
	for k, v := range m {
		out = append(out, Point{Label: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// sortByValue orders points by value. Ties keep their incoming (label) order.
func sortByValue(points []Point, ascending bool) []Point {
	slices.SortStableFunc(points, func(a, b Point) int {
		if a.Value == b.Value {
			return 0
		}
		if (a.Value < b.Value) == ascending {
			return -1
		}
		return 1
	})
	return points
}

// orderBy arranges points along a fixed category order, dropping labels that
// do not occur. With fill set, missing categories appear with value 0.
func orderBy(points []Point, order []string, fill bool) []Point {
	byLabel := make(map[string]float64, len(points))
	for _, p := range points {
		byLabel[p.Label] = p.Value
	}
	out := make([]Point, 0, len(order))
	for _, label := range order {
		v, ok := byLabel[label]
		if !ok && !fill {
			continue
		}
		out = append(out, Point{Label: label, Value: v})
	}
	return out
}

// tail keeps the last n points.
func tail(points []Point, n int) []Point {
	if n > 0 && len(points) > n {
		return points[len(points)-n:]
	}
	return points
}

func seniorityOrder() []string {
	levels := dataset.SeniorityLevels()
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = l.String()
	}
	return out
}

func byDepartment(e dataset.Employee) string { return e.Department }
func byCountry(e dataset.Employee) string    { return e.Country }
func bySeniority(e dataset.Employee) string  { return e.Seniority.String() }

// histogram splits values into equal-width bins over [min, max].
func histogram(values []float64, bins int) []Point {
	if len(values) == 0 || bins <= 0 {
		return []Point{}
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		return []Point{{Label: fmt.Sprintf("%.1f-%.1f", lo, hi), Value: float64(len(values))}}
	}
	width := (hi - lo) / float64(bins)
	counts := make([]float64, bins)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	out := make([]Point, bins)
	for i := range counts {
		from := lo + float64(i)*width
		out[i] = Point{Label: fmt.Sprintf("%.1f-%.1f", from, from+width), Value: counts[i]}
	}
	return out
}

// fiveNumber summarizes values as min, q1, median, q3, max using linear
// interpolation between order statistics.
func fiveNumber(values []float64) []Point {
	if len(values) == 0 {
		return []Point{}
	}
	s := slices.Clone(values)
	slices.Sort(s)
	q := func(p float64) float64 {
		pos := p * float64(len(s)-1)
		i := int(math.Floor(pos))
		if i+1 >= len(s) {
			return s[len(s)-1]
		}
		return s[i] + (pos-float64(i))*(s[i+1]-s[i])
	}
	return []Point{
		{Label: "min", Value: s[0]},
		{Label: "q1", Value: q(0.25)},
		{Label: "median", Value: q(0.5)},
		{Label: "q3", Value: q(0.75)},
		{Label: "max", Value: s[len(s)-1]},
	}
}
