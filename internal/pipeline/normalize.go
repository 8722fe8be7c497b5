package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"startupmap/internal"
	"startupmap/internal/geo"
	"startupmap/internal/logging"
	"startupmap/internal/util"
)

var errNotObject = errors.New("record is not an object")

// FallbackRegion is the governorate assumed when a record names none and no
// default region is configured.
const FallbackRegion = "اسيوط"

type Normalizer struct {
	gazetteer     *geo.Gazetteer
	jitter        *geo.Jitter
	defaultRegion string
	logger        *zap.Logger
}

func NewNormalizer(gazetteer *geo.Gazetteer, jitter *geo.Jitter, defaultRegion string, logger *zap.Logger) *Normalizer {
	if gazetteer == nil {
		gazetteer = geo.Default()
	}
	if jitter == nil {
		jitter = geo.NewJitter(0.015)
	}
	if strings.TrimSpace(defaultRegion) == "" {
		defaultRegion = FallbackRegion
	}
	return &Normalizer{
		gazetteer:     gazetteer,
		jitter:        jitter,
		defaultRegion: defaultRegion,
		logger:        logging.OrNop(logger),
	}
}

type NormalizeResult struct {
	Records []internal.Startup
	Facets  internal.Facets
	Total   int
	Dropped int
	Failed  int
}

// Normalize turns raw dataset entries into typed startups. Entries without a
// project name are skipped; entries that fail are logged and skipped. Ids are
// 1-based and contiguous over the survivors.
func (n *Normalizer) Normalize(raw []internal.RawRecord) NormalizeResult {
	out := make([]internal.Startup, 0, len(raw))
	failed := 0
	for index, item := range raw {
		startup, ok, err := n.normalizeOne(item, len(out)+1)
		if err != nil {
			failed++
			n.logger.Warn("dropping record",
				zap.Int("index", index),
				zap.Any("payload", item),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			continue
		}
		out = append(out, startup)
	}

	result := NormalizeResult{
		Records: out,
		Facets:  BuildFacets(out),
		Total:   len(raw),
		Dropped: len(raw) - len(out),
		Failed:  failed,
	}
	n.logger.Info("dataset normalized",
		zap.Int("total", result.Total),
		zap.Int("kept", len(out)),
		zap.Int("dropped", result.Dropped),
		zap.Int("failed", failed),
	)
	return result
}

func (n *Normalizer) normalizeOne(item internal.RawRecord, id int) (startup internal.Startup, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			startup, ok, err = internal.Startup{}, false, fmt.Errorf("panic: %v", r)
		}
	}()

	if item == nil {
		return internal.Startup{}, false, errNotObject
	}

	project := item.Section("Project")
	founder := item.Section("Founder")
	team := item.Section("Team")
	financials := item.Section("Financials")

	name, err := util.TextValue(project["name"])
	if err != nil {
		return internal.Startup{}, false, fmt.Errorf("project name: %w", err)
	}
	if name == "" {
		return internal.Startup{}, false, nil
	}

	place := asObject(founder["location"])
	location, err := util.TextOr(place["governorate"], n.defaultRegion)
	if err != nil {
		return internal.Startup{}, false, fmt.Errorf("founder governorate: %w", err)
	}
	center, err := util.TextValue(place["center"])
	if err != nil {
		return internal.Startup{}, false, fmt.Errorf("founder center: %w", err)
	}

	point := n.jitter.Apply(n.gazetteer.Lookup(center, location))

	foundingTeamSize := util.ParseNumeric(team["founding_team_size"])
	femaleFounders := util.ParseNumeric(team["female_founders"])

	annualRevenue := util.ParseNumeric(financials["annual_revenue"])
	if annualRevenue == 0 {
		annualRevenue = util.ParseNumeric(financials["monthly_income"]) * 12
	}

	startup = internal.Startup{
		ID:               id,
		Name:             name,
		Location:         location,
		Center:           center,
		FoundingTeamSize: foundingTeamSize,
		FemaleFounders:   femaleFounders,
		Employees:        util.ParseNumeric(team["current_employees"]),
		AnnualRevenue:    annualRevenue,
		FoundersGender:   FounderGenderOf(foundingTeamSize, femaleFounders),
		Lat:              point.Lat,
		Lng:              point.Lng,
	}

	fields := []struct {
		dst      *string
		key      string
		fallback string
	}{
		{&startup.Description, "description", ""},
		{&startup.Stage, "stage", "Unknown"},
		{&startup.Sector, "sub_sector", "Unknown"},
		{&startup.CompanyType, "company_type", "Unknown"},
	}
	for _, f := range fields {
		value, err := util.TextOr(project[f.key], f.fallback)
		if err != nil {
			return internal.Startup{}, false, fmt.Errorf("project %s: %w", f.key, err)
		}
		*f.dst = value
	}

	return startup, true, nil
}

// FounderGenderOf classifies a founding team from its size and the number of
// female founders. More female founders than team members is Unknown.
func FounderGenderOf(teamSize, femaleFounders float64) internal.FounderGender {
	switch {
	case teamSize <= 0:
		return internal.GenderUnknown
	case femaleFounders == 0:
		return internal.GenderMale
	case femaleFounders > 0 && femaleFounders == teamSize:
		return internal.GenderFemale
	case femaleFounders > 0 && femaleFounders < teamSize:
		return internal.GenderMixed
	default:
		return internal.GenderUnknown
	}
}

func asObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case internal.RawRecord:
		return t
	default:
		return nil
	}
}
