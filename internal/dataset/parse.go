package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

var (
	employeeColumns = []string{
		"employee_id", "name", "hire_date", "termination_date", "department", "country",
		"location_city", "job_family", "job_title", "seniority_level", "manager_id", "salary",
		"salary_band_min", "salary_band_max", "gender", "age_group", "tenure_years",
		"performance_rating", "engagement_score", "flight_risk", "last_promotion_date",
		"internal_moves", "training_hours_ytd",
	}
	sickLeaveColumns   = []string{"employee_id", "year", "month", "sick_days", "sick_leave_type"}
	recruitmentColumns = []string{
		"requisition_id", "department", "country", "job_family", "seniority_level", "open_date",
		"close_date", "days_to_fill", "candidates_screened", "candidates_interviewed",
		"hired_employee_id", "source",
	}
	terminationColumns = []string{
		"employee_id", "termination_date", "termination_reason", "exit_survey_score",
		"rehire_eligible", "last_salary", "tenure_at_exit", "replacement_cost",
	}
)

// table is a header-indexed view over raw rows.
type table struct {
	label string
	cols  map[string]int
	rows  [][]string
}

func newTable(label string, rows [][]string, required []string) (*table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: missing header row", ErrMalformed, label)
	}
	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if h != "" {
			cols[h] = i
		}
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrMalformed, label, c)
		}
	}
	return &table{label: label, cols: cols, rows: rows[1:]}, nil
}

// each calls fn for every non-blank data row. Line numbers are 1-based and
// count the header.
func (t *table) each(fn func(r *row) error) error {
	for i, vals := range t.rows {
		if blank(vals) {
			continue
		}
		r := &row{t: t, line: i + 2, vals: vals}
		if err := fn(r); err != nil {
			return err
		}
		if r.err != nil {
			return r.err
		}
	}
	return nil
}

func blank(vals []string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// row accessors record the first parse error and return zero values after it.
type row struct {
	t    *table
	line int
	vals []string
	err  error
}

func (r *row) fail(col, format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s line %d column %s: %s", ErrMalformed, r.t.label, r.line, col, fmt.Sprintf(format, args...))
	}
}

func (r *row) str(col string) string {
	i, ok := r.t.cols[col]
	if !ok || i >= len(r.vals) {
		return ""
	}
	return strings.TrimSpace(r.vals[i])
}

func (r *row) required(col string) string {
	v := r.str(col)
	if v == "" {
		r.fail(col, "value required")
	}
	return v
}

func (r *row) float(col string) float64 {
	v := r.required(col)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(col, "invalid number %q", v)
		return 0
	}
	return f
}

func (r *row) optFloat(col string) *float64 {
	v := r.str(col)
	if v == "" || strings.EqualFold(v, "nan") {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(col, "invalid number %q", v)
		return nil
	}
	return &f
}

func (r *row) integer(col string) int {
	v := r.required(col)
	if v == "" {
		return 0
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	// Accept integral floats such as "3.0".
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		r.fail(col, "invalid integer %q", v)
		return 0
	}
	return int(f)
}

func (r *row) date(col string) time.Time {
	v := r.required(col)
	if v == "" {
		return time.Time{}
	}
	d, ok := parseDate(v)
	if !ok {
		r.fail(col, "invalid date %q (want YYYY-MM-DD)", v)
	}
	return d
}

func (r *row) optDate(col string) *time.Time {
	v := r.str(col)
	if v == "" || strings.EqualFold(v, "nat") {
		return nil
	}
	d, ok := parseDate(v)
	if !ok {
		r.fail(col, "invalid date %q (want YYYY-MM-DD)", v)
		return nil
	}
	return &d
}

func (r *row) boolean(col string) bool {
	v := r.str(col)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(col, "invalid boolean %q", v)
	}
	return b
}

func (r *row) seniority(col string) Seniority {
	v := r.required(col)
	if v == "" {
		return 0
	}
	s, err := ParseSeniority(v)
	if err != nil {
		r.fail(col, "%v", err)
	}
	return s
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseEmployees(label string, rows [][]string) ([]Employee, error) {
	t, err := newTable(label, rows, employeeColumns)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(t.rows))
	err = t.each(func(r *row) error {
		e := Employee{
			ID:                r.required("employee_id"),
			Name:              r.str("name"),
			HireDate:          r.date("hire_date"),
			TerminationDate:   r.optDate("termination_date"),
			Department:        r.required("department"),
			Country:           r.required("country"),
			LocationCity:      r.str("location_city"),
			JobFamily:         r.required("job_family"),
			JobTitle:          r.str("job_title"),
			Seniority:         r.seniority("seniority_level"),
			ManagerID:         r.str("manager_id"),
			Salary:            r.float("salary"),
			BandMin:           r.float("salary_band_min"),
			BandMax:           r.float("salary_band_max"),
			Gender:            r.str("gender"),
			AgeGroup:          r.str("age_group"),
			TenureYears:       r.float("tenure_years"),
			PerformanceRating: r.float("performance_rating"),
			EngagementScore:   r.float("engagement_score"),
			FlightRisk:        r.str("flight_risk"),
			LastPromotionDate: r.optDate("last_promotion_date"),
			InternalMoves:     r.integer("internal_moves"),
			TrainingHoursYTD:  r.float("training_hours_ytd"),
		}
		if r.err == nil && e.TerminationDate != nil && e.TerminationDate.Before(e.HireDate) {
			r.fail("termination_date", "termination date %s precedes hire date %s",
				e.TerminationDate.Format(time.DateOnly), e.HireDate.Format(time.DateOnly))
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseSickLeave(label string, rows [][]string) ([]SickLeaveRecord, error) {
	t, err := newTable(label, rows, sickLeaveColumns)
	if err != nil {
		return nil, err
	}
	out := make([]SickLeaveRecord, 0, len(t.rows))
	err = t.each(func(r *row) error {
		rec := SickLeaveRecord{
			EmployeeID: r.required("employee_id"),
			Year:       r.integer("year"),
			Month:      r.integer("month"),
			SickDays:   r.float("sick_days"),
			Type:       r.str("sick_leave_type"),
		}
		if r.err == nil && (rec.Month < 1 || rec.Month > 12) {
			r.fail("month", "month %d out of range", rec.Month)
		}
		if r.err == nil && rec.SickDays < 0 {
			r.fail("sick_days", "negative sick days %v", rec.SickDays)
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseRecruitment(label string, rows [][]string) ([]Requisition, error) {
	t, err := newTable(label, rows, recruitmentColumns)
	if err != nil {
		return nil, err
	}
	out := make([]Requisition, 0, len(t.rows))
	err = t.each(func(r *row) error {
		req := Requisition{
			ID:                    r.required("requisition_id"),
			Department:            r.required("department"),
			Country:               r.str("country"),
			JobFamily:             r.str("job_family"),
			Seniority:             r.seniority("seniority_level"),
			OpenDate:              r.date("open_date"),
			CloseDate:             r.date("close_date"),
			DaysToFill:            r.float("days_to_fill"),
			CandidatesScreened:    r.integer("candidates_screened"),
			CandidatesInterviewed: r.integer("candidates_interviewed"),
			HiredEmployeeID:       r.str("hired_employee_id"),
			Source:                r.str("source"),
		}
		if r.err == nil && (req.CandidatesInterviewed < 0 || req.CandidatesScreened < req.CandidatesInterviewed) {
			r.fail("candidates_interviewed", "interviewed %d exceeds screened %d", req.CandidatesInterviewed, req.CandidatesScreened)
		}
		out = append(out, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseTerminations(label string, rows [][]string) ([]TerminationRecord, error) {
	t, err := newTable(label, rows, terminationColumns)
	if err != nil {
		return nil, err
	}
	out := make([]TerminationRecord, 0, len(t.rows))
	err = t.each(func(r *row) error {
		out = append(out, TerminationRecord{
			EmployeeID:      r.required("employee_id"),
			TerminationDate: r.date("termination_date"),
			Reason:          r.required("termination_reason"),
			ExitSurvey:      r.optFloat("exit_survey_score"),
			RehireEligible:  r.boolean("rehire_eligible"),
			LastSalary:      r.float("last_salary"),
			TenureAtExit:    r.float("tenure_at_exit"),
			ReplacementCost: r.float("replacement_cost"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
