package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Seniority is the ordered career level of an employee or requisition.
type Seniority int

const (
	Junior Seniority = iota + 1
	Mid
	Senior
	Lead
	Director
	VP
	CLevel
)

var seniorityNames = [...]string{"", "Junior", "Mid", "Senior", "Lead", "Director", "VP", "C-Level"}

// SeniorityLevels lists every level in ascending order.
func SeniorityLevels() []Seniority {
	return []Seniority{Junior, Mid, Senior, Lead, Director, VP, CLevel}
}

func (s Seniority) String() string {
	if s < Junior || s > CLevel {
		return fmt.Sprintf("Seniority(%d)", int(s))
	}
	return seniorityNames[s]
}

// ParseSeniority resolves a level name case-insensitively.
func ParseSeniority(v string) (Seniority, error) {
	v = strings.TrimSpace(v)
	for i := Junior; i <= CLevel; i++ {
		if strings.EqualFold(seniorityNames[i], v) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown seniority level %q", v)
}

// MarshalText renders the level name so JSON payloads carry "Senior" rather than 3.
func (s Seniority) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a level name.
func (s *Seniority) UnmarshalText(b []byte) error {
	v, err := ParseSeniority(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Flight risk categories.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Termination reasons.
const (
	ReasonVoluntary   = "Voluntary"
	ReasonInvoluntary = "Involuntary"
	ReasonRetirement  = "Retirement"
)

// Gender codes.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "Other"
)

// Job families counted as people managers.
const (
	FamilyManagement = "Management"
	FamilyExecutive  = "Executive"
)

// AgeGroups lists the age buckets in display order.
var AgeGroups = []string{"<25", "25-34", "35-44", "45-54", "55+"}

// Employee is one row of the employees table. A nil TerminationDate means active.
type Employee struct {
	ID                string     `json:"employee_id"`
	Name              string     `json:"name"`
	HireDate          time.Time  `json:"hire_date"`
	TerminationDate   *time.Time `json:"termination_date,omitempty"`
	Department        string     `json:"department"`
	Country           string     `json:"country"`
	LocationCity      string     `json:"location_city"`
	JobFamily         string     `json:"job_family"`
	JobTitle          string     `json:"job_title"`
	Seniority         Seniority  `json:"seniority_level"`
	ManagerID         string     `json:"manager_id,omitempty"`
	Salary            float64    `json:"salary"`
	BandMin           float64    `json:"salary_band_min"`
	BandMax           float64    `json:"salary_band_max"`
	Gender            string     `json:"gender"`
	AgeGroup          string     `json:"age_group"`
	TenureYears       float64    `json:"tenure_years"`
	PerformanceRating float64    `json:"performance_rating"`
	EngagementScore   float64    `json:"engagement_score"`
	FlightRisk        string     `json:"flight_risk"`
	LastPromotionDate *time.Time `json:"last_promotion_date,omitempty"`
	InternalMoves     int        `json:"internal_moves"`
	TrainingHoursYTD  float64    `json:"training_hours_ytd"`
}

// Active reports whether the employee has no termination date.
func (e Employee) Active() bool { return e.TerminationDate == nil }

// IsManager reports whether the employee belongs to a management job family.
func (e Employee) IsManager() bool {
	return e.JobFamily == FamilyManagement || e.JobFamily == FamilyExecutive
}

// BandMidpoint is the midpoint of the employee's salary band.
func (e Employee) BandMidpoint() float64 { return (e.BandMin + e.BandMax) / 2 }

// CompaRatio is salary over band midpoint, or 0 when the band is empty.
func (e Employee) CompaRatio() float64 {
	mid := e.BandMidpoint()
	if mid == 0 {
		return 0
	}
	return e.Salary / mid
}

// SickLeaveRecord is one month of sick leave for an employee.
type SickLeaveRecord struct {
	EmployeeID string  `json:"employee_id"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	SickDays   float64 `json:"sick_days"`
	Type       string  `json:"sick_leave_type"`
}

// Requisition is one filled recruitment requisition.
type Requisition struct {
	ID                    string    `json:"requisition_id"`
	Department            string    `json:"department"`
	Country               string    `json:"country"`
	JobFamily             string    `json:"job_family"`
	Seniority             Seniority `json:"seniority_level"`
	OpenDate              time.Time `json:"open_date"`
	CloseDate             time.Time `json:"close_date"`
	DaysToFill            float64   `json:"days_to_fill"`
	CandidatesScreened    int       `json:"candidates_screened"`
	CandidatesInterviewed int       `json:"candidates_interviewed"`
	HiredEmployeeID       string    `json:"hired_employee_id,omitempty"`
	Source                string    `json:"source"`
}

// TerminationRecord describes one employee exit.
type TerminationRecord struct {
	EmployeeID      string    `json:"employee_id"`
	TerminationDate time.Time `json:"termination_date"`
	Reason          string    `json:"termination_reason"`
	ExitSurvey      *float64  `json:"exit_survey_score,omitempty"`
	RehireEligible  bool      `json:"rehire_eligible"`
	LastSalary      float64   `json:"last_salary"`
	TenureAtExit    float64   `json:"tenure_at_exit"`
	ReplacementCost float64   `json:"replacement_cost"`
}

// Dataset holds the four HR tables. It is immutable once loaded.
type Dataset struct {
	Employees    []Employee
	SickLeave    []SickLeaveRecord
	Recruitment  []Requisition
	Terminations []TerminationRecord

	Source      string
	Fingerprint string
	LoadedAt    time.Time

	byID map[string]int
}

// Employee looks up an employee by id across active and terminated rows.
func (d *Dataset) Employee(id string) (Employee, bool) {
	if d.byID == nil {
		for _, e := range d.Employees {
			if e.ID == id {
				return e, true
			}
		}
		return Employee{}, false
	}
	i, ok := d.byID[id]
	if !ok {
		return Employee{}, false
	}
	return d.Employees[i], true
}

// Index builds the id lookup. Loaders call it before publishing the dataset.
func (d *Dataset) Index() {
	d.byID = make(map[string]int, len(d.Employees))
	for i, e := range d.Employees {
		d.byID[e.ID] = i
	}
}

// ActiveEmployees returns the rows without a termination date, in load order.
func (d *Dataset) ActiveEmployees() []Employee {
	out := make([]Employee, 0, len(d.Employees))
	for _, e := range d.Employees {
		if e.Active() {
			out = append(out, e)
		}
	}
	return out
}
