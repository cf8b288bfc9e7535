package score

import (
	"testing"

	"github.com/bb-after/status-score/internal/model"
)

func TestResolve_PositiveMaximaSumTo100(t *testing.T) {
	for _, entityType := range EntityTypes() {
		p := Resolve(entityType)
		sum := p.PositiveMax + p.WikipediaMax + p.OwnedAssetsMax + p.SocialMax + p.GeoMax
		if sum != 100 {
			t.Errorf("%s: positive maxima sum to %v, want 100", entityType, sum)
		}
	}
}

func TestResolve_IndividualHasExplicitZeroWikipediaWeight(t *testing.T) {
	p := Resolve(model.EntityIndividual)
	if p.WikipediaMax != 0 {
		t.Errorf("individual wikipedia max = %v, want 0", p.WikipediaMax)
	}
	// The weight is zero, not the field missing: owned assets absorb the
	// headroom instead.
	if p.OwnedAssetsMax != 15 {
		t.Errorf("individual owned assets max = %v, want 15", p.OwnedAssetsMax)
	}
}

func TestResolve_UnknownTypeFallsBackToIndividual(t *testing.T) {
	got := Resolve(model.EntityType("household-pet"))
	want := Resolve(model.EntityIndividual)
	if got != want {
		t.Errorf("unknown entity type resolved to %+v, want individual profile %+v", got, want)
	}
}

func TestResolve_NegativePenaltyUniform(t *testing.T) {
	for _, entityType := range EntityTypes() {
		if p := Resolve(entityType); p.NegativePenaltyPerItem != 10 {
			t.Errorf("%s: negative penalty = %v, want 10", entityType, p.NegativePenaltyPerItem)
		}
	}
}
