package pipeline

import (
	"math"
	"slices"
	"strings"

	"startupmap/internal"
	"startupmap/internal/util"
)

type RevenueBucket struct {
	Name string
	Min  float64
	Max  float64
}

// RevenueBuckets are closed ranges in EGP. The bounds are kept exactly as the
// dashboard has always published them, including the one-unit steps between
// neighbouring buckets.
var RevenueBuckets = []RevenueBucket{
	{Name: "< 100K EGP", Min: 0, Max: 99999},
	{Name: "100K - 500K EGP", Min: 100000, Max: 500000},
	{Name: "500K - 1M EGP", Min: 500001, Max: 1000000},
	{Name: "1M - 5M EGP", Min: 1000001, Max: 5000000},
	{Name: "> 5M EGP", Min: 5000001, Max: math.Inf(1)},
}

var EmployeeRanges = []string{internal.AllOption, "1-10", "11-50", "51-200", "201-500", "501+"}

var FounderGenders = []string{
	internal.AllOption,
	string(internal.GenderMale),
	string(internal.GenderFemale),
	string(internal.GenderMixed),
	string(internal.GenderUnknown),
}

// RevenueRanges lists the revenue selector options in display order.
func RevenueRanges() []string {
	out := make([]string, 0, len(RevenueBuckets)+1)
	out = append(out, internal.AllOption)
	for _, b := range RevenueBuckets {
		out = append(out, b.Name)
	}
	return out
}

func RevenueBucketByName(name string) (RevenueBucket, bool) {
	for _, b := range RevenueBuckets {
		if b.Name == name {
			return b, true
		}
	}
	return RevenueBucket{}, false
}

// Filter returns the records matching every active criterion, in input order.
// Neither argument is modified.
func Filter(records []internal.Startup, criteria internal.FilterCriteria) []internal.Startup {
	m := newMatcher(criteria)
	out := make([]internal.Startup, 0, len(records))
	for _, s := range records {
		if m.match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Matches reports whether a single record passes the criteria.
func Matches(s internal.Startup, criteria internal.FilterCriteria) bool {
	return newMatcher(criteria).match(s)
}

type employeeBounds struct {
	min    float64
	max    float64
	hasMax bool
}

type matcher struct {
	criteria  internal.FilterCriteria
	revenue   *RevenueBucket
	employees *employeeBounds
}

func newMatcher(c internal.FilterCriteria) matcher {
	m := matcher{criteria: c}
	if c.RevenueRange != internal.AllOption {
		if b, ok := RevenueBucketByName(c.RevenueRange); ok {
			m.revenue = &b
		}
	}
	if c.EmployeeRange != internal.AllOption {
		b := parseEmployeeRange(c.EmployeeRange)
		m.employees = &b
	}
	return m
}

func (m matcher) match(s internal.Startup) bool {
	c := m.criteria

	if c.Location != "" && !util.ContainsFold(s.Location, c.Location) && !util.ContainsFold(s.Center, c.Location) {
		return false
	}

	if m.revenue != nil && (s.AnnualRevenue < m.revenue.Min || s.AnnualRevenue > m.revenue.Max) {
		return false
	}

	if m.employees != nil {
		if s.Employees < m.employees.min {
			return false
		}
		if m.employees.hasMax && s.Employees > m.employees.max {
			return false
		}
	}

	if len(c.Sectors) > 0 && !slices.Contains(c.Sectors, s.Sector) {
		return false
	}

	if c.FounderGender != internal.AllOption && string(s.FoundersGender) != c.FounderGender {
		return false
	}

	if c.Stage != internal.AllOption && s.Stage != c.Stage {
		return false
	}

	if c.CompanyType != internal.AllOption && !util.EqualLower(s.CompanyType, c.CompanyType) {
		return false
	}

	return true
}

// parseEmployeeRange reads "501+" as an open lower bound and "a-b" as a closed
// range. A missing, zero or unreadable upper bound means no upper limit; an
// unreadable lower bound excludes nothing.
func parseEmployeeRange(label string) employeeBounds {
	if strings.Contains(label, "+") {
		lo := util.ParseBound(strings.Replace(label, "+", "", 1))
		return employeeBounds{min: orNegInf(lo)}
	}

	parts := strings.Split(label, "-")
	b := employeeBounds{min: orNegInf(util.ParseBound(parts[0]))}
	if len(parts) > 1 {
		hi := util.ParseBound(parts[1])
		if hi != 0 && !math.IsNaN(hi) {
			b.max = hi
			b.hasMax = true
		}
	}
	return b
}

func orNegInf(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}
