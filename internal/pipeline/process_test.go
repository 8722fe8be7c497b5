package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"startupmap/internal/config"
	"startupmap/internal/storage"
)

func TestSmokeDatasetToXLSX(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	raw, err := ParseJSONDataset([]byte(`[
		{"Project": {"name": "Nile Pay", "stage": "Seed", "sub_sector": "Fintech"},
		 "Team": {"founding_team_size": 2, "female_founders": 2},
		 "Financials": {"monthly_income": "1,000"}},
		{"Project": {"description": "no name"}},
		{"Project": {"name": "Farm Link", "stage": "Growth", "sub_sector": "Agritech"}}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceRawRecords("fixture", raw); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata(storage.MetaSource, "fixture"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{GeoJitter: 0.015, DefaultRegion: "اسيوط"}
	normalizer, err := NewNormalizerFromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	proc := NewProcessingService(db, normalizer, nil)
	res, err := proc.LoadStored()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 || res.Records[0].AnnualRevenue != 12000 || res.Records[1].ID != 2 {
		t.Fatalf("unexpected records: %+v", res.Records)
	}
	if res.TraceID == "" {
		t.Fatal("missing trace id")
	}

	runs, err := db.ListRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].TraceID != res.TraceID || runs[0].Source != "fixture" || runs[0].Counts["dropped"] != 1 {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	session := NewSession(res.NormalizeResult)
	criteria, filtered := session.ToggleSector("Fintech", true)
	out := filepath.Join(tmp, "result.xlsx")
	if err := ExportStartupsToXLSX(filtered, criteria, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}
