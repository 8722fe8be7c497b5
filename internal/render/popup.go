package render

import (
	"fmt"
	"strconv"

	"startupmap/internal"
)

type PopupLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Popup is the marker detail card for one startup.
type Popup struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Lines       []PopupLine `json:"lines"`
}

func NewPopup(s internal.Startup, money *CurrencyFormatter) Popup {
	location := s.Location
	if s.Center != "" {
		location = s.Center + ", " + s.Location
	}
	return Popup{
		Title:       s.Name,
		Description: s.Description,
		Lines: []PopupLine{
			{"Sector", s.Sector},
			{"Stage", s.Stage},
			{"Location", location},
			{"Company Type", s.CompanyType},
			{"Employees", Count(s.Employees)},
			{"Annual Revenue", money.Format(s.AnnualRevenue)},
			{"Founders", fmt.Sprintf("%s (%s female / %s total)", s.FoundersGender, Count(s.FemaleFounders), Count(s.FoundingTeamSize))},
		},
	}
}

// Count prints a coerced numeric field without a trailing ".0".
func Count(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ResultCountLabel(n int) string {
	return fmt.Sprintf("Showing %d startups", n)
}
