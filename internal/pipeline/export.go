package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"startupmap/internal"
)

const (
	startupsSheet = "startups"
	filtersSheet  = "filters"
)

// ExportStartupsToXLSX writes the filtered records to one sheet and the
// criteria that produced them to a second one.
func ExportStartupsToXLSX(records []internal.Startup, criteria internal.FilterCriteria, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), startupsSheet); err != nil {
		return err
	}

	headers := []string{
		"id", "name", "description", "stage", "sector", "company_type",
		"location", "center", "founding_team_size", "female_founders",
		"founders_gender", "employees", "annual_revenue", "lat", "lng",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(startupsSheet, cell, h)
	}

	for i, s := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(startupsSheet, cell, value)
		}

		set(1, s.ID)
		set(2, s.Name)
		set(3, s.Description)
		set(4, s.Stage)
		set(5, s.Sector)
		set(6, s.CompanyType)
		set(7, s.Location)
		set(8, s.Center)
		set(9, s.FoundingTeamSize)
		set(10, s.FemaleFounders)
		set(11, string(s.FoundersGender))
		set(12, s.Employees)
		set(13, s.AnnualRevenue)
		set(14, s.Lat)
		set(15, s.Lng)
	}

	if _, err := f.NewSheet(filtersSheet); err != nil {
		return err
	}
	filters := [][2]string{
		{"location", criteria.Location},
		{"stage", criteria.Stage},
		{"sector", strings.Join(criteria.Sectors, ", ")},
		{"companyType", criteria.CompanyType},
		{"employeeRange", criteria.EmployeeRange},
		{"revenueRange", criteria.RevenueRange},
		{"founderGender", criteria.FounderGender},
	}
	for i, kv := range filters {
		key, _ := excelize.CoordinatesToCellName(1, i+1)
		value, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(filtersSheet, key, kv[0])
		_ = f.SetCellValue(filtersSheet, value, kv[1])
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
