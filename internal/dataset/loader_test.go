package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/hrpulse/internal/dataset"
	"github.com/vinodismyname/hrpulse/internal/dataset/datasettest"
)

func sample() *dataset.Dataset {
	a := datasettest.Employee("E1")
	b := datasettest.Employee("E2")
	b.Seniority = dataset.CLevel
	b.JobFamily = dataset.FamilyExecutive
	b.LastPromotionDate = datasettest.DatePtr("2023-03-01")
	c := datasettest.Employee("E3")
	c.TerminationDate = datasettest.DatePtr("2024-06-30")

	exit := 7.0
	return datasettest.Dataset(
		[]dataset.Employee{a, b, c},
		[]dataset.SickLeaveRecord{{EmployeeID: "E1", Year: 2024, Month: 2, SickDays: 3, Type: "Short-term"}},
		[]dataset.Requisition{{
			ID: "R1", Department: "Engineering", Country: "Norge", JobFamily: "Specialist", Seniority: dataset.Senior,
			OpenDate: datasettest.Date("2024-01-01"), CloseDate: datasettest.Date("2024-02-15"), DaysToFill: 45,
			CandidatesScreened: 40, CandidatesInterviewed: 6, HiredEmployeeID: "E1", Source: "LinkedIn",
		}},
		[]dataset.TerminationRecord{{
			EmployeeID: "E3", TerminationDate: datasettest.Date("2024-06-30"), Reason: dataset.ReasonVoluntary,
			ExitSurvey: &exit, RehireEligible: true, LastSalary: 600000, TenureAtExit: 4.5, ReplacementCost: 900000,
		}},
	)
}

func TestLoadDir_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	datasettest.WriteDir(t, dir, sample())

	ds, err := dataset.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, ds.Employees, 3)
	require.Len(t, ds.SickLeave, 1)
	require.Len(t, ds.Recruitment, 1)
	require.Len(t, ds.Terminations, 1)
	require.NotEmpty(t, ds.Fingerprint)

	require.Equal(t, dataset.CLevel, ds.Employees[1].Seniority)
	require.NotNil(t, ds.Employees[1].LastPromotionDate)
	require.Nil(t, ds.Employees[0].TerminationDate)
	require.False(t, ds.Employees[2].Active())
	require.Equal(t, 2, len(ds.ActiveEmployees()))

	require.NotNil(t, ds.Terminations[0].ExitSurvey)
	require.Equal(t, 7.0, *ds.Terminations[0].ExitSurvey)
	require.True(t, ds.Terminations[0].RehireEligible)

	e, ok := ds.Employee("E2")
	require.True(t, ok)
	require.Equal(t, dataset.FamilyExecutive, e.JobFamily)
	_, ok = ds.Employee("missing")
	require.False(t, ok)

	fp, err := dataset.Fingerprint(dir)
	require.NoError(t, err)
	require.Equal(t, ds.Fingerprint, fp)
}

func TestLoadDir_PrefersDataSubdirectory(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "data")
	require.NoError(t, os.Mkdir(sub, 0o755))
	datasettest.WriteDir(t, sub, sample())

	ds, err := dataset.LoadDir(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, sub, ds.Source)
}

func TestLoadDir_MissingFileNamesIt(t *testing.T) {
	dir := t.TempDir()
	datasettest.WriteDir(t, dir, sample())
	require.NoError(t, os.Remove(filepath.Join(dir, "recruitment.csv")))

	_, err := dataset.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, dataset.ErrMissingTable)
	require.Contains(t, err.Error(), "recruitment.csv")
}

func TestLoadDir_MalformedValueReportsLine(t *testing.T) {
	dir := t.TempDir()
	datasettest.WriteDir(t, dir, sample())

	path := filepath.Join(dir, "employees.csv")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(b), "600000", "lots", 1)), 0o600))

	_, err = dataset.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, dataset.ErrMalformed)
	require.Contains(t, err.Error(), "line 2")
	require.Contains(t, err.Error(), "salary")
}

func TestLoadDir_TerminationBeforeHireRejected(t *testing.T) {
	ds := sample()
	ds.Employees[2].TerminationDate = datasettest.DatePtr("2019-01-01")
	dir := t.TempDir()
	datasettest.WriteDir(t, dir, ds)

	_, err := dataset.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, dataset.ErrMalformed)
	require.Contains(t, err.Error(), "precedes hire date")
}

func TestLoadDir_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	datasettest.WriteDir(t, dir, sample())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sick_leave.csv"), []byte("employee_id,year,month\nE1,2024,1\n"), 0o600))

	_, err := dataset.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, dataset.ErrMalformed)
	require.Contains(t, err.Error(), `"sick_days"`)
}

func TestLoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hr.xlsx")
	datasettest.WriteWorkbook(t, path, sample())

	ds, err := dataset.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, ds.Employees, 3)
	require.Equal(t, "Engineering", ds.Recruitment[0].Department)
	require.Equal(t, 45.0, ds.Recruitment[0].DaysToFill)

	fp, err := dataset.Fingerprint(path)
	require.NoError(t, err)
	require.Equal(t, ds.Fingerprint, fp)
}

func TestLoad_UnsupportedSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := dataset.Load(context.Background(), path)
	require.ErrorIs(t, err, dataset.ErrUnsupportedSource)
}

func TestParseSeniority(t *testing.T) {
	s, err := dataset.ParseSeniority("c-level")
	require.NoError(t, err)
	require.Equal(t, dataset.CLevel, s)
	require.Equal(t, "C-Level", s.String())

	_, err = dataset.ParseSeniority("Intern")
	require.Error(t, err)

	levels := dataset.SeniorityLevels()
	require.Len(t, levels, 7)
	for i := 1; i < len(levels); i++ {
		require.Less(t, levels[i-1], levels[i])
	}
}

func TestCompaRatio(t *testing.T) {
	e := datasettest.Employee("E1")
	require.Equal(t, 1.0, e.CompaRatio())
	e.BandMin, e.BandMax = 0, 0
	require.Equal(t, 0.0, e.CompaRatio())
}
