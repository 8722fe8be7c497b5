package pipeline

import (
	"slices"
	"sync/atomic"

	"startupmap/internal"
)

// Session holds one analyst's view of the dataset: the normalized records and
// facets (fixed after construction) and the current criteria with the
// filtered records they produce. Criteria and result are swapped together so
// a reader never sees one without the other.
type Session struct {
	records []internal.Startup
	facets  internal.Facets
	view    atomic.Pointer[sessionView]
}

type sessionView struct {
	criteria internal.FilterCriteria
	filtered []internal.Startup
}

func NewSession(result NormalizeResult) *Session {
	s := &Session{records: result.Records, facets: result.Facets}
	criteria := internal.DefaultCriteria()
	s.view.Store(&sessionView{criteria: criteria, filtered: Filter(s.records, criteria)})
	return s
}

func (s *Session) Records() []internal.Startup { return s.records }

func (s *Session) Facets() internal.Facets { return s.facets }

func (s *Session) Criteria() internal.FilterCriteria {
	c, _ := s.View()
	return c
}

func (s *Session) Filtered() []internal.Startup { return s.view.Load().filtered }

// View returns the current criteria together with the records they produced,
// read from one snapshot.
func (s *Session) View() (internal.FilterCriteria, []internal.Startup) {
	return s.view.Load().snapshot()
}

func (v *sessionView) snapshot() (internal.FilterCriteria, []internal.Startup) {
	c := v.criteria
	c.Sectors = slices.Clone(c.Sectors)
	return c, v.filtered
}

// Update merges a partial change into the current criteria, re-filters the
// full collection and returns the new criteria and result.
func (s *Session) Update(patch internal.CriteriaPatch) (internal.FilterCriteria, []internal.Startup) {
	return s.Replace(s.view.Load().criteria.Merge(patch))
}

// Replace installs criteria wholesale.
func (s *Session) Replace(criteria internal.FilterCriteria) (internal.FilterCriteria, []internal.Startup) {
	criteria = criteria.Merge(internal.CriteriaPatch{})
	next := &sessionView{criteria: criteria, filtered: Filter(s.records, criteria)}
	s.view.Store(next)
	return next.snapshot()
}

// ToggleSector adds or removes one sector from the multi-select.
func (s *Session) ToggleSector(sector string, checked bool) (internal.FilterCriteria, []internal.Startup) {
	current := s.view.Load().criteria.Sectors
	var next []string
	if checked {
		next = append(slices.Clone(current), sector)
	} else {
		next = make([]string, 0, len(current))
		for _, v := range current {
			if v != sector {
				next = append(next, v)
			}
		}
	}
	return s.Update(internal.CriteriaPatch{Sectors: &next})
}

// Reset restores the all-permissive criteria.
func (s *Session) Reset() (internal.FilterCriteria, []internal.Startup) {
	return s.Replace(internal.DefaultCriteria())
}
