package analytics

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// thousands renders v rounded to whole units with comma grouping, e.g. 1,250,000.
func thousands(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// countText renders an integral metric such as headcount with grouping.
func countText(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
