package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"startupmap/internal"
)

func mustFormatter(t *testing.T, locale string) *CurrencyFormatter {
	t.Helper()
	f, err := NewCurrencyFormatter(locale, "EGP")
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestCurrencyFormatter(t *testing.T) {
	f := mustFormatter(t, "en")
	cases := map[float64]string{
		12000:   "EGP 12,000",
		0:       "EGP 0",
		1234.6:  "EGP 1,235",
		5000001: "EGP 5,000,001",
	}
	for v, want := range cases {
		if got := f.Format(v); got != want {
			t.Fatalf("%v: got %q want %q", v, got, want)
		}
	}

	ar := mustFormatter(t, "ar-EG")
	if got := ar.Format(12000); !strings.HasPrefix(got, "EGP ") {
		t.Fatalf("got %q", got)
	}
}

func TestCurrencyFormatterRejectsBadInput(t *testing.T) {
	if _, err := NewCurrencyFormatter("en", "NOPE"); err == nil {
		t.Fatal("expected currency error")
	}
	if _, err := NewCurrencyFormatter("not a locale!", "EGP"); err == nil {
		t.Fatal("expected locale error")
	}
}

func TestPopup(t *testing.T) {
	s := internal.Startup{
		Name: "Nile Pay", Description: "payments", Sector: "Fintech", Stage: "Seed",
		Location: "Assiut", Center: "Abnoub", CompanyType: "LLC",
		Employees: 12, AnnualRevenue: 12000,
		FoundingTeamSize: 4, FemaleFounders: 2, FoundersGender: internal.GenderMixed,
	}
	p := NewPopup(s, mustFormatter(t, "en"))
	if p.Title != "Nile Pay" || p.Description != "payments" {
		t.Fatalf("unexpected popup: %+v", p)
	}
	want := map[string]string{
		"Location":       "Abnoub, Assiut",
		"Employees":      "12",
		"Annual Revenue": "EGP 12,000",
		"Founders":       "Mixed (2 female / 4 total)",
	}
	for _, line := range p.Lines {
		if v, ok := want[line.Label]; ok && v != line.Value {
			t.Fatalf("%s: got %q want %q", line.Label, line.Value, v)
		}
	}

	s.Center = ""
	if got := NewPopup(s, mustFormatter(t, "en")).Lines[2].Value; got != "Assiut" {
		t.Fatalf("location=%q", got)
	}
}

func TestResultCountLabel(t *testing.T) {
	if got := ResultCountLabel(3); got != "Showing 3 startups" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderPNG(t *testing.T) {
	records := []internal.Startup{
		{Lat: 27.18, Lng: 31.18, FoundersGender: internal.GenderFemale},
		{Lat: 26.55, Lng: 31.69, FoundersGender: internal.GenderMale},
	}
	var buf bytes.Buffer
	if err := RenderPNG(&buf, records, MapImageOptions{Width: 320, Height: 200, Title: ResultCountLabel(2)}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("bounds=%v", b)
	}

	buf.Reset()
	if err := RenderPNG(&buf, nil, MapImageOptions{CenterLat: 27, CenterLng: 31}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty image")
	}
}
