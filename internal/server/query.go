package server

import (
	"net/url"
	"strings"

	"startupmap/internal"
)

// CriteriaFromQuery reads filter criteria from URL parameters. Missing or
// blank selectors fall back to "All"; sector may repeat or hold a comma list.
func CriteriaFromQuery(q url.Values) internal.FilterCriteria {
	c := internal.DefaultCriteria()
	c.Location = q.Get("location")
	c.Stage = selector(q, "stage")
	c.CompanyType = selector(q, "companyType")
	c.RevenueRange = selector(q, "revenueRange")
	c.EmployeeRange = selector(q, "employeeRange")
	c.FounderGender = selector(q, "founderGender")
	for _, v := range q["sector"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				c.Sectors = append(c.Sectors, part)
			}
		}
	}
	return c
}

// hasCriteria reports whether the query carries any filter parameter.
func hasCriteria(q url.Values) bool {
	for _, key := range []string{"location", "stage", "companyType", "revenueRange", "employeeRange", "founderGender", "sector"} {
		if _, ok := q[key]; ok {
			return true
		}
	}
	return false
}

func selector(q url.Values, key string) string {
	if v := strings.TrimSpace(q.Get(key)); v != "" {
		return v
	}
	return internal.AllOption
}
