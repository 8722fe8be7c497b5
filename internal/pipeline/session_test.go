package pipeline

import (
	"slices"
	"sync"
	"testing"

	"startupmap/internal"
	"startupmap/internal/util"
)

func sessionFixture() *Session {
	records := []internal.Startup{
		{ID: 1, Sector: "Fintech", Stage: "Seed"},
		{ID: 2, Sector: "Agritech", Stage: "Seed"},
		{ID: 3, Sector: "Agritech", Stage: "Growth"},
	}
	return NewSession(NormalizeResult{Records: records, Facets: BuildFacets(records)})
}

func TestSessionStartsPermissive(t *testing.T) {
	s := sessionFixture()
	if len(s.Filtered()) != 3 {
		t.Fatalf("len=%d", len(s.Filtered()))
	}
	c := s.Criteria()
	if c.Stage != internal.AllOption || len(c.Sectors) != 0 {
		t.Fatalf("criteria=%+v", c)
	}
	if !slices.Equal(s.Facets().Sectors, []string{"Agritech", "Fintech"}) {
		t.Fatalf("sectors=%v", s.Facets().Sectors)
	}
}

func TestSessionUpdateMergesPatches(t *testing.T) {
	s := sessionFixture()
	s.Update(internal.CriteriaPatch{Stage: util.StringPtr("Seed")})
	c, got := s.ToggleSector("Agritech", true)
	if !slices.Equal(ids(got), []int{2}) {
		t.Fatalf("ids=%v", ids(got))
	}
	if c.Stage != "Seed" || !slices.Equal(c.Sectors, []string{"Agritech"}) {
		t.Fatalf("criteria=%+v", c)
	}

	_, got = s.ToggleSector("Agritech", false)
	if !slices.Equal(ids(got), []int{1, 2}) {
		t.Fatalf("ids=%v", ids(got))
	}

	c, got = s.Reset()
	if len(got) != 3 || c.Stage != internal.AllOption || s.Criteria().Stage != internal.AllOption {
		t.Fatalf("reset failed: %+v", c)
	}
}

func TestSessionCriteriaIsACopy(t *testing.T) {
	s := sessionFixture()
	s.ToggleSector("Fintech", true)
	c := s.Criteria()
	c.Sectors[0] = "Agritech"
	if s.Criteria().Sectors[0] != "Fintech" {
		t.Fatal("session criteria changed through returned copy")
	}
}

func TestSessionViewMatchesCriteriaUnderConcurrentUpdates(t *testing.T) {
	s := sessionFixture()
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				c, filtered := s.View()
				if want := ids(Filter(s.Records(), c)); !slices.Equal(ids(filtered), want) {
					t.Errorf("stage=%q ids=%v want %v", c.Stage, ids(filtered), want)
					return
				}
			}
		}()
	}
	stages := []string{"Seed", "Growth", internal.AllOption}
	for i := 0; i < 300; i++ {
		c, filtered := s.Update(internal.CriteriaPatch{Stage: util.StringPtr(stages[i%len(stages)])})
		if want := ids(Filter(s.Records(), c)); !slices.Equal(ids(filtered), want) {
			t.Fatalf("update stage=%q ids=%v want %v", c.Stage, ids(filtered), want)
		}
	}
	close(done)
	wg.Wait()
}
