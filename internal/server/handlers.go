package server

import (
	"encoding/json"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"startupmap/internal"
	"startupmap/internal/pipeline"
	"startupmap/internal/render"
)

type marker struct {
	ID     int          `json:"id"`
	Lat    float64      `json:"lat"`
	Lng    float64      `json:"lng"`
	Popup  render.Popup `json:"popup"`
	Gender string       `json:"gender"`
}

type indexView struct {
	Criteria       internal.FilterCriteria
	Facets         internal.Facets
	RevenueRanges  []string
	EmployeeRanges []string
	FounderGenders []string
	ResultLabel    string
	Markers        []marker
	Options        Options
	MapHref        template.URL
}

type startupsResponse struct {
	Criteria internal.FilterCriteria `json:"criteria"`
	Count    int                     `json:"count"`
	Label    string                  `json:"label"`
	Startups []internal.Startup      `json:"startups"`
}

type facetsResponse struct {
	internal.Facets
	RevenueRanges  []string `json:"revenueRanges"`
	EmployeeRanges []string `json:"employeeRanges"`
	FounderGenders []string `json:"founderGenders"`
}

// view resolves the criteria for a request. Query parameters take precedence;
// without them the session's current criteria and result are used.
func (s *Server) view(r *http.Request) (internal.FilterCriteria, []internal.Startup) {
	q := r.URL.Query()
	if !hasCriteria(q) {
		return s.session.View()
	}
	c := CriteriaFromQuery(q)
	return c, pipeline.Filter(s.session.Records(), c)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	criteria, filtered := s.view(r)

	markers := make([]marker, 0, len(filtered))
	for _, st := range filtered {
		markers = append(markers, marker{
			ID:     st.ID,
			Lat:    st.Lat,
			Lng:    st.Lng,
			Popup:  render.NewPopup(st, s.money),
			Gender: string(st.FoundersGender),
		})
	}

	data := indexView{
		Criteria:       criteria,
		Facets:         s.session.Facets(),
		RevenueRanges:  pipeline.RevenueRanges(),
		EmployeeRanges: pipeline.EmployeeRanges,
		FounderGenders: pipeline.FounderGenders,
		ResultLabel:    render.ResultCountLabel(len(filtered)),
		Markers:        markers,
		Options:        s.opts,
		MapHref:        mapHref(r),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("render index", zap.Error(err))
	}
}

func (s *Server) handleStartups(w http.ResponseWriter, r *http.Request) {
	criteria, filtered := s.view(r)
	s.writeStartups(w, criteria, filtered)
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, facetsResponse{
		Facets:         s.session.Facets(),
		RevenueRanges:  pipeline.RevenueRanges(),
		EmployeeRanges: pipeline.EmployeeRanges,
		FounderGenders: pipeline.FounderGenders,
	})
}

func (s *Server) handleGetCriteria(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Criteria())
}

func (s *Server) handlePatchCriteria(w http.ResponseWriter, r *http.Request) {
	var patch internal.CriteriaPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid criteria: " + err.Error()})
		return
	}
	criteria, filtered := s.session.Update(patch)
	s.writeStartups(w, criteria, filtered)
}

func (s *Server) handleResetCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, filtered := s.session.Reset()
	s.writeStartups(w, criteria, filtered)
}

func (s *Server) handleMapPNG(w http.ResponseWriter, r *http.Request) {
	_, filtered := s.view(r)
	w.Header().Set("Content-Type", "image/png")
	err := render.RenderPNG(w, filtered, render.MapImageOptions{
		Width:     960,
		Height:    640,
		Title:     render.ResultCountLabel(len(filtered)),
		CenterLat: s.opts.CenterLat,
		CenterLng: s.opts.CenterLng,
	})
	if err != nil {
		s.logger.Error("render map", zap.Error(err))
	}
}

func (s *Server) writeStartups(w http.ResponseWriter, criteria internal.FilterCriteria, filtered []internal.Startup) {
	writeJSON(w, http.StatusOK, startupsResponse{
		Criteria: criteria,
		Count:    len(filtered),
		Label:    render.ResultCountLabel(len(filtered)),
		Startups: filtered,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func mapHref(r *http.Request) template.URL {
	if r.URL.RawQuery == "" {
		return "/map.png"
	}
	return template.URL("/map.png?" + r.URL.Query().Encode())
}
