package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"startupmap/internal"
)

func TestExportStartupsToXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "startups.xlsx")
	records := []internal.Startup{
		{ID: 1, Name: "Nile Pay", Sector: "Fintech", AnnualRevenue: 12000, FoundersGender: internal.GenderMixed},
		{ID: 2, Name: "Farm Link", Sector: "Agritech"},
	}
	crit := internal.DefaultCriteria()
	crit.Sectors = []string{"Fintech", "Agritech"}

	if err := ExportStartupsToXLSX(records, crit, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("startups")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0][1] != "name" || rows[1][1] != "Nile Pay" || rows[1][10] != "Mixed" || rows[1][12] != "12000" {
		t.Fatalf("unexpected row: %v", rows[1])
	}

	sector, err := f.GetCellValue("filters", "B3")
	if err != nil {
		t.Fatal(err)
	}
	if sector != "Fintech, Agritech" {
		t.Fatalf("sector=%q", sector)
	}
}
