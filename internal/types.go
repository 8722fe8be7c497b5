package internal

// RawRecord is one untyped dataset entry. Nested sections (Project, Founder,
// Team, Financials) are maps; any field may be missing or of any JSON type.
type RawRecord map[string]any

// Section returns the nested object stored under key, or nil when the key is
// missing or holds something other than an object.
func (r RawRecord) Section(key string) map[string]any {
	if r == nil {
		return nil
	}
	switch v := r[key].(type) {
	case map[string]any:
		return v
	case RawRecord:
		return v
	default:
		return nil
	}
}

type FounderGender string

const (
	GenderMale    FounderGender = "Male"
	GenderFemale  FounderGender = "Female"
	GenderMixed   FounderGender = "Mixed"
	GenderUnknown FounderGender = "Unknown"
)

// AllOption disables a single-select criterion.
const AllOption = "All"

type Startup struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Stage            string        `json:"stage"`
	Sector           string        `json:"sector"`
	Location         string        `json:"location"`
	Center           string        `json:"center"`
	CompanyType      string        `json:"companyType"`
	FoundingTeamSize float64       `json:"foundingTeamSize"`
	FemaleFounders   float64       `json:"femaleFounders"`
	Employees        float64       `json:"employees"`
	AnnualRevenue    float64       `json:"annualRevenue"`
	FoundersGender   FounderGender `json:"foundersGender"`
	Lat              float64       `json:"lat"`
	Lng              float64       `json:"lng"`
}

type Facets struct {
	Sectors      []string `json:"sectors"`
	Stages       []string `json:"stages"`
	CompanyTypes []string `json:"companyTypes"`
}

type FilterCriteria struct {
	Location      string   `json:"location"`
	Stage         string   `json:"stage"`
	Sectors       []string `json:"sector"`
	CompanyType   string   `json:"companyType"`
	EmployeeRange string   `json:"employeeRange"`
	RevenueRange  string   `json:"revenueRange"`
	FounderGender string   `json:"founderGender"`
}

// DefaultCriteria is the all-permissive starting point of a session.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Location:      "",
		Stage:         AllOption,
		Sectors:       []string{},
		CompanyType:   AllOption,
		EmployeeRange: AllOption,
		RevenueRange:  AllOption,
		FounderGender: AllOption,
	}
}

// CriteriaPatch carries only the fields a user action changed.
type CriteriaPatch struct {
	Location      *string   `json:"location,omitempty"`
	Stage         *string   `json:"stage,omitempty"`
	Sectors       *[]string `json:"sector,omitempty"`
	CompanyType   *string   `json:"companyType,omitempty"`
	EmployeeRange *string   `json:"employeeRange,omitempty"`
	RevenueRange  *string   `json:"revenueRange,omitempty"`
	FounderGender *string   `json:"founderGender,omitempty"`
}

// Merge returns a new criteria value with the patch applied. The receiver is
// left untouched and the sector slice is never shared with the result.
func (c FilterCriteria) Merge(p CriteriaPatch) FilterCriteria {
	out := c
	out.Sectors = append([]string{}, c.Sectors...)
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Stage != nil {
		out.Stage = *p.Stage
	}
	if p.Sectors != nil {
		out.Sectors = append([]string{}, (*p.Sectors)...)
	}
	if p.CompanyType != nil {
		out.CompanyType = *p.CompanyType
	}
	if p.EmployeeRange != nil {
		out.EmployeeRange = *p.EmployeeRange
	}
	if p.RevenueRange != nil {
		out.RevenueRange = *p.RevenueRange
	}
	if p.FounderGender != nil {
		out.FounderGender = *p.FounderGender
	}
	return out
}

type RunRow struct {
	ID        int
	TraceID   string
	Source    string
	Timings   map[string]float64
	Counts    map[string]int
	CreatedAt string
}
