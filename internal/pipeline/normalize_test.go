package pipeline

import (
	"encoding/json"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"startupmap/internal"
	"startupmap/internal/geo"
)

func fixedNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	g, err := geo.ParseGazetteer([]byte("default: {lat: 10, lng: 20}\nAlpha: {lat: 1, lng: 2}\nBeta Center: {lat: 3, lng: 4}\n"))
	if err != nil {
		t.Fatal(err)
	}
	j := geo.NewJitterWithSource(0.015, func() float64 { return 0.5 })
	return NewNormalizer(g, j, "Fallback", nil)
}

func rec(name string) internal.RawRecord {
	return internal.RawRecord{"Project": map[string]any{"name": name}}
}

func TestNormalizeNameGateKeepsIDsContiguous(t *testing.T) {
	raw := []internal.RawRecord{
		rec("first"),
		{},
		rec(""),
		{"Project": map[string]any{"name": nil}},
		rec("second"),
		{"Project": "not an object"},
		rec("third"),
	}
	res := fixedNormalizer(t).Normalize(raw)
	if len(res.Records) != 3 {
		t.Fatalf("len=%d", len(res.Records))
	}
	for i, want := range []string{"first", "second", "third"} {
		got := res.Records[i]
		if got.ID != i+1 || got.Name != want {
			t.Fatalf("record %d: id=%d name=%q", i, got.ID, got.Name)
		}
	}
	if res.Total != 7 || res.Dropped != 4 || res.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", res)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	res := fixedNormalizer(t).Normalize([]internal.RawRecord{rec("Solo")})
	s := res.Records[0]
	if s.Stage != "Unknown" || s.Sector != "Unknown" || s.CompanyType != "Unknown" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.Description != "" || s.Center != "" || s.Location != "Fallback" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.Lat != 10 || s.Lng != 20 {
		t.Fatalf("expected default point, got %v,%v", s.Lat, s.Lng)
	}
	if s.FoundersGender != internal.GenderUnknown {
		t.Fatalf("gender=%s", s.FoundersGender)
	}
}

func TestNormalizeBlankDefaultRegionUsesFallback(t *testing.T) {
	g, _ := geo.ParseGazetteer([]byte("default: {lat: 10, lng: 20}\n"))
	for _, region := range []string{"", "   "} {
		n := NewNormalizer(g, geo.NewJitter(0), region, nil)
		s := n.Normalize([]internal.RawRecord{rec("Solo")}).Records[0]
		if s.Location != FallbackRegion {
			t.Fatalf("region=%q location=%q", region, s.Location)
		}
	}
}

func TestNormalizeCopiesFields(t *testing.T) {
	var raw []internal.RawRecord
	blob := `[{
		"Project": {"name": "Agri Co", "description": "farm data", "stage": "Seed", "sub_sector": "Agritech", "company_type": "llc"},
		"Founder": {"location": {"governorate": "Alpha", "center": "Beta Center"}},
		"Team": {"founding_team_size": "4", "female_founders": 2, "current_employees": "1,200"},
		"Financials": {"annual_revenue": "EGP 250,000"}
	}]`
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		t.Fatal(err)
	}
	s := fixedNormalizer(t).Normalize(raw).Records[0]
	if s.Description != "farm data" || s.Stage != "Seed" || s.Sector != "Agritech" || s.CompanyType != "llc" {
		t.Fatalf("unexpected project fields: %+v", s)
	}
	if s.Location != "Alpha" || s.Center != "Beta Center" {
		t.Fatalf("unexpected place: %+v", s)
	}
	if s.Lat != 3 || s.Lng != 4 {
		t.Fatalf("center lookup should win, got %v,%v", s.Lat, s.Lng)
	}
	if s.FoundingTeamSize != 4 || s.FemaleFounders != 2 || s.Employees != 1200 || s.AnnualRevenue != 250000 {
		t.Fatalf("unexpected numbers: %+v", s)
	}
	if s.FoundersGender != internal.GenderMixed {
		t.Fatalf("gender=%s", s.FoundersGender)
	}
}

func TestNormalizeLocationFallsBackToGovernorate(t *testing.T) {
	raw := internal.RawRecord{
		"Project": map[string]any{"name": "x"},
		"Founder": map[string]any{"location": map[string]any{"governorate": "Alpha", "center": "Nowhere"}},
	}
	s := fixedNormalizer(t).Normalize([]internal.RawRecord{raw}).Records[0]
	if s.Lat != 1 || s.Lng != 2 {
		t.Fatalf("got %v,%v", s.Lat, s.Lng)
	}
}

func TestFounderGenderOf(t *testing.T) {
	cases := []struct {
		team, female float64
		want         internal.FounderGender
	}{
		{0, 0, internal.GenderUnknown},
		{3, 0, internal.GenderMale},
		{3, 3, internal.GenderFemale},
		{4, 2, internal.GenderMixed},
		{0, 2, internal.GenderUnknown},
		{2, 5, internal.GenderUnknown},
		{-1, 0, internal.GenderUnknown},
	}
	for _, c := range cases {
		if got := FounderGenderOf(c.team, c.female); got != c.want {
			t.Fatalf("T=%v F=%v: got %s want %s", c.team, c.female, got, c.want)
		}
	}
}

func TestNormalizeFinancialFallback(t *testing.T) {
	cases := []struct {
		name       string
		financials map[string]any
		want       float64
	}{
		{"zero annual", map[string]any{"annual_revenue": 0, "monthly_income": 1000}, 12000},
		{"missing annual", map[string]any{"monthly_income": "1000"}, 12000},
		{"annual wins", map[string]any{"annual_revenue": 5000, "monthly_income": 1000}, 5000},
		{"nothing", nil, 0},
	}
	n := fixedNormalizer(t)
	for _, c := range cases {
		raw := internal.RawRecord{"Project": map[string]any{"name": c.name}}
		if c.financials != nil {
			raw["Financials"] = c.financials
		}
		got := n.Normalize([]internal.RawRecord{raw}).Records[0].AnnualRevenue
		if got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestNormalizeDropsMalformedRecordsAndLogs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	g, _ := geo.ParseGazetteer([]byte("default: {lat: 0, lng: 0}\n"))
	n := NewNormalizer(g, geo.NewJitter(0), "Fallback", zap.New(core))

	raw := []internal.RawRecord{
		nil,
		{"Project": map[string]any{"name": map[string]any{"ar": "x"}}},
		{"Project": map[string]any{"name": "ok", "stage": []any{"Seed"}}},
		rec("survivor"),
	}
	res := n.Normalize(raw)
	if len(res.Records) != 1 || res.Records[0].Name != "survivor" || res.Records[0].ID != 1 {
		t.Fatalf("unexpected records: %+v", res.Records)
	}
	if res.Failed != 3 {
		t.Fatalf("failed=%d", res.Failed)
	}
	entries := logs.FilterMessage("dropping record").All()
	if len(entries) != 3 {
		t.Fatalf("len=%d", len(entries))
	}
	for i, e := range entries {
		fields := e.ContextMap()
		if fields["index"] != int64(i) {
			t.Fatalf("entry %d: index=%v", i, fields["index"])
		}
		if _, ok := fields["error"]; !ok {
			t.Fatalf("entry %d: missing error field", i)
		}
	}
}

func TestNormalizeJitterStaysInEnvelope(t *testing.T) {
	g, _ := geo.ParseGazetteer([]byte("default: {lat: 27, lng: 31}\n"))
	n := NewNormalizer(g, geo.NewJitter(0.015), "", nil)
	raw := make([]internal.RawRecord, 500)
	for i := range raw {
		raw[i] = rec("s")
	}
	for _, s := range n.Normalize(raw).Records {
		if math.Abs(s.Lat-27) > 0.0075 || math.Abs(s.Lng-31) > 0.0075 {
			t.Fatalf("jitter out of range: %v,%v", s.Lat, s.Lng)
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	res := fixedNormalizer(t).Normalize(nil)
	if res.Records == nil || len(res.Records) != 0 {
		t.Fatalf("expected empty non-nil records, got %#v", res.Records)
	}
	if len(res.Facets.Stages) != 1 || res.Facets.Stages[0] != internal.AllOption {
		t.Fatalf("stages=%v", res.Facets.Stages)
	}
}
