// Package datasettest builds small HR datasets and writes them as CSV
// directories or workbooks for tests.
package datasettest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// Date parses a YYYY-MM-DD literal and panics on error.
func Date(v string) time.Time {
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		panic(err)
	}
	return d
}

// DatePtr is Date returning a pointer.
func DatePtr(v string) *time.Time {
	d := Date(v)
	return &d
}

// Employee returns an active mid-level engineer whose salary sits exactly at
// the band midpoint. Callers override fields as needed.
func Employee(id string) dataset.Employee {
	return dataset.Employee{
		ID:                id,
		Name:              "Employee " + id,
		HireDate:          Date("2020-01-15"),
		Department:        "Engineering",
		Country:           "Norge",
		LocationCity:      "Oslo",
		JobFamily:         "Individual Contributor",
		JobTitle:          "Engineer",
		Seniority:         dataset.Mid,
		Salary:            600000,
		BandMin:           500000,
		BandMax:           700000,
		Gender:            dataset.GenderMale,
		AgeGroup:          "25-34",
		TenureYears:       4,
		PerformanceRating: 3,
		EngagementScore:   8,
		FlightRisk:        dataset.RiskLow,
		InternalMoves:     1,
		TrainingHoursYTD:  30,
	}
}

// Sample has three active employees (E1, E2, E4), one terminated (E3)
// and a termination record referencing an unknown employee (X99).
func Sample() *dataset.Dataset {
	e1 := Employee("E1")

	e2 := Employee("E2")
	e2.Department = "Sales"
	e2.Gender = dataset.GenderFemale
	e2.EngagementScore = 6
	e2.FlightRisk = dataset.RiskHigh
	e2.InternalMoves = 0
	e2.Salary = 540000
	e2.TenureYears = 2
	e2.TrainingHoursYTD = 10

	e3 := Employee("E3")
	e3.TerminationDate = DatePtr("2024-05-31")

	e4 := Employee("E4")
	e4.JobFamily = dataset.FamilyManagement
	e4.Gender = dataset.GenderFemale
	e4.EngagementScore = 7
	e4.TenureYears = 6
	e4.InternalMoves = 0
	e4.TrainingHoursYTD = 20
	e4.Seniority = dataset.Director

	return Dataset(
		[]dataset.Employee{e1, e2, e3, e4},
		[]dataset.SickLeaveRecord{
			{EmployeeID: "E1", Year: 2024, Month: 1, SickDays: 23, Type: "Short-term"},
			{EmployeeID: "E3", Year: 2024, Month: 2, SickDays: 100, Type: "Long-term"},
		},
		[]dataset.Requisition{
			{ID: "R1", Department: "Engineering", Country: "Norge", DaysToFill: 40, CandidatesScreened: 50, CandidatesInterviewed: 10, Source: "LinkedIn", CloseDate: Date("2024-02-10")},
			{ID: "R2", Department: "Sales", Country: "Sverige", DaysToFill: 60, CandidatesScreened: 30, CandidatesInterviewed: 5, Source: "Referral", CloseDate: Date("2024-03-10")},
		},
		[]dataset.TerminationRecord{
			{EmployeeID: "E3", TerminationDate: Date("2024-05-31"), Reason: dataset.ReasonVoluntary, ReplacementCost: 900000},
			{EmployeeID: "X99", TerminationDate: Date("2024-06-30"), Reason: dataset.ReasonInvoluntary, ReplacementCost: 100000},
		},
	)
}

// Dataset wraps tables into an indexed Dataset.
func Dataset(emps []dataset.Employee, sick []dataset.SickLeaveRecord, rec []dataset.Requisition, term []dataset.TerminationRecord) *dataset.Dataset {
	ds := &dataset.Dataset{Employees: emps, SickLeave: sick, Recruitment: rec, Terminations: term}
	ds.Index()
	return ds
}

// Rows renders every table of ds as header plus data rows keyed by table name.
func Rows(ds *dataset.Dataset) map[string][][]string {
	out := map[string][][]string{}

	emp := [][]string{{
		"employee_id", "name", "hire_date", "termination_date", "department", "country",
		"location_city", "job_family", "job_title", "seniority_level", "manager_id", "salary",
		"salary_band_min", "salary_band_max", "gender", "age_group", "tenure_years",
		"performance_rating", "engagement_score", "flight_risk", "last_promotion_date",
		"internal_moves", "training_hours_ytd",
	}}
	for _, e := range ds.Employees {
		emp = append(emp, []string{
			e.ID, e.Name, day(e.HireDate), optDay(e.TerminationDate), e.Department, e.Country,
			e.LocationCity, e.JobFamily, e.JobTitle, e.Seniority.String(), e.ManagerID, num(e.Salary),
			num(e.BandMin), num(e.BandMax), e.Gender, e.AgeGroup, num(e.TenureYears),
			num(e.PerformanceRating), num(e.EngagementScore), e.FlightRisk, optDay(e.LastPromotionDate),
			strconv.Itoa(e.InternalMoves), num(e.TrainingHoursYTD),
		})
	}
	out[dataset.EmployeesTable] = emp

	sick := [][]string{{"employee_id", "year", "month", "sick_days", "sick_leave_type"}}
	for _, s := range ds.SickLeave {
		sick = append(sick, []string{s.EmployeeID, strconv.Itoa(s.Year), strconv.Itoa(s.Month), num(s.SickDays), s.Type})
	}
	out[dataset.SickLeaveTable] = sick

	rec := [][]string{{
		"requisition_id", "department", "country", "job_family", "seniority_level", "open_date",
		"close_date", "days_to_fill", "candidates_screened", "candidates_interviewed",
		"hired_employee_id", "source",
	}}
	for _, r := range ds.Recruitment {
		rec = append(rec, []string{
			r.ID, r.Department, r.Country, r.JobFamily, r.Seniority.String(), day(r.OpenDate),
			day(r.CloseDate), num(r.DaysToFill), strconv.Itoa(r.CandidatesScreened),
			strconv.Itoa(r.CandidatesInterviewed), r.HiredEmployeeID, r.Source,
		})
	}
	out[dataset.RecruitmentTable] = rec

	term := [][]string{{
		"employee_id", "termination_date", "termination_reason", "exit_survey_score",
		"rehire_eligible", "last_salary", "tenure_at_exit", "replacement_cost",
	}}
	for _, r := range ds.Terminations {
		exit := ""
		if r.ExitSurvey != nil {
			exit = num(*r.ExitSurvey)
		}
		term = append(term, []string{
			r.EmployeeID, day(r.TerminationDate), r.Reason, exit, strconv.FormatBool(r.RehireEligible),
			num(r.LastSalary), num(r.TenureAtExit), num(r.ReplacementCost),
		})
	}
	out[dataset.TerminationsTable] = term
	return out
}

// WriteDir writes ds as four CSV files into dir.
func WriteDir(t testing.TB, dir string, ds *dataset.Dataset) {
	t.Helper()
	for name, rows := range Rows(ds) {
		f, err := os.Create(filepath.Join(dir, name+".csv"))
		require.NoError(t, err)
		w := csv.NewWriter(f)
		require.NoError(t, w.WriteAll(rows))
		require.NoError(t, f.Close())
	}
}

// WriteWorkbook writes ds as a workbook with one sheet per table.
func WriteWorkbook(t testing.TB, path string, ds *dataset.Dataset) {
	t.Helper()
	f := excelize.NewFile()
	rows := Rows(ds)
	for i, name := range dataset.Tables {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, vals := range rows[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := make([]any, len(vals))
			for j, v := range vals {
				row[j] = v
			}
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func day(t time.Time) string { return t.Format(time.DateOnly) }

func optDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
