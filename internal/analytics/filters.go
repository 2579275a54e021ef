package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// AllValue is the canonical "no filter" selection. Empty strings and the
// Norwegian "Alle" are accepted as synonyms.
const AllValue = "all"

// IsAll reports whether a selection means "no filter".
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllValue) || strings.EqualFold(v, "alle")
}

// Filters is the immutable set of dashboard selections passed into every
// computation. Categorical fields hold a concrete value or a sentinel.
//
// DateFrom and DateTo are accepted and echoed but never applied to any
// computation.
type Filters struct {
	Country    string     `json:"country,omitempty"`
	Department string     `json:"department,omitempty"`
	Seniority  string     `json:"seniority,omitempty"`
	JobFamily  string     `json:"job_family,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
}

// IsEmpty reports whether no categorical filter is set.
func (f Filters) IsEmpty() bool {
	return IsAll(f.Country) && IsAll(f.Department) && IsAll(f.Seniority) && IsAll(f.JobFamily)
}

// HasCountry reports whether a concrete country is selected.
func (f Filters) HasCountry() bool { return !IsAll(f.Country) }

// HasDepartment reports whether a concrete department is selected.
func (f Filters) HasDepartment() bool { return !IsAll(f.Department) }

// Normalize trims every selection and rewrites a seniority selection to its
// canonical level name, so "mid " and "Mid" select the same rows.
func (f Filters) Normalize() Filters {
	f.Country = strings.TrimSpace(f.Country)
	f.Department = strings.TrimSpace(f.Department)
	f.JobFamily = strings.TrimSpace(f.JobFamily)
	f.Seniority = canonicalSeniority(f.Seniority)
	return f
}

func canonicalSeniority(v string) string {
	v = strings.TrimSpace(v)
	if IsAll(v) {
		return v
	}
	if lvl, err := dataset.ParseSeniority(v); err == nil {
		return lvl.String()
	}
	return v
}

// matchSeniority compares a selection against a level case-insensitively.
// Unknown level names match nothing.
func matchSeniority(sel string, s dataset.Seniority) bool {
	lvl, err := dataset.ParseSeniority(sel)
	return err == nil && lvl == s
}

// Match reports whether e satisfies every concrete filter.
func (f Filters) Match(e dataset.Employee) bool {
	if !IsAll(f.Country) && e.Country != strings.TrimSpace(f.Country) {
		return false
	}
	if !IsAll(f.Department) && e.Department != strings.TrimSpace(f.Department) {
		return false
	}
	if !IsAll(f.Seniority) && !matchSeniority(f.Seniority, e.Seniority) {
		return false
	}
	if !IsAll(f.JobFamily) && e.JobFamily != strings.TrimSpace(f.JobFamily) {
		return false
	}
	return true
}

// Apply returns the rows matching every concrete filter in their original
// order. With no filter set the input slice itself is returned.
func (f Filters) Apply(rows []dataset.Employee) []dataset.Employee {
	if f.IsEmpty() {
		return rows
	}
	out := make([]dataset.Employee, 0, len(rows))
	for _, e := range rows {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Hash is a short stable digest of the categorical selections, used to bind
// pagination cursors to the filters they were issued for.
func (f Filters) Hash() string {
	f = f.Normalize()
	norm := func(v string) string {
		if IsAll(v) {
			return AllValue
		}
		return strings.TrimSpace(v)
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{
		norm(f.Country), norm(f.Department), norm(f.Seniority), norm(f.JobFamily),
	}, "\x1f")))
	return hex.EncodeToString(sum[:8])
}

// Label describes the selected scope for headings, e.g. "Norge" or
// "hele organisasjonen".
func (f Filters) Label() string {
	if f.HasCountry() {
		return strings.TrimSpace(f.Country)
	}
	return "hele organisasjonen"
}

// Active keeps rows without a termination date.
func Active(rows []dataset.Employee) []dataset.Employee {
	out := make([]dataset.Employee, 0, len(rows))
	for _, e := range rows {
		if e.Active() {
			out = append(out, e)
		}
	}
	return out
}

// View is a filtered slice of a dataset: the employees matching the filters,
// with and without terminated rows.
type View struct {
	Data    *dataset.Dataset
	Filters Filters
	All     []dataset.Employee
	Active  []dataset.Employee
}

// NewView applies f to the employees of ds. The view carries the normalized
// selections.
func NewView(ds *dataset.Dataset, f Filters) View {
	f = f.Normalize()
	all := f.Apply(ds.Employees)
	return View{Data: ds, Filters: f, All: all, Active: Active(all)}
}

// idSet collects employee ids for membership joins.
func idSet(rows []dataset.Employee) map[string]struct{} {
	out := make(map[string]struct{}, len(rows))
	for _, e := range rows {
		out[e.ID] = struct{}{}
	}
	return out
}
