package score

import "github.com/bb-after/status-score/internal/model"

// WeightProfile holds the per-entity-type weight and scaling constants.
// For every profile PositiveMax + WikipediaMax + OwnedAssetsMax + SocialMax +
// GeoMax == 100; the negative penalty is a deduction outside that ceiling.
type WeightProfile struct {
	PositiveMax            float64 // Max points from positive coverage (percentage-based)
	WikipediaMax           float64 // Max points from authority-page presence
	OwnedAssetsMax         float64 // Max points from owned digital assets (tiered)
	NegativePenaltyPerItem float64 // Points deducted per negative link
	SocialMax              float64 // Max points from social presence
	GeoMax                 float64 // Max points from generative-engine visibility
}

// profiles is the single authoritative weight table. Both the engine and the
// what-if simulation consult it; there is deliberately no second copy.
//
// The individual profile carries an explicit zero wikipedia weight rather
// than omitting the field, so the raw metric stays displayable downstream.
var profiles = map[model.EntityType]WeightProfile{
	model.EntityPublicFigure: {
		PositiveMax:            70,
		WikipediaMax:           10,
		OwnedAssetsMax:         10,
		NegativePenaltyPerItem: 10,
		SocialMax:              5,
		GeoMax:                 5,
	},
	model.EntityCompany: {
		PositiveMax:            70,
		WikipediaMax:           10,
		OwnedAssetsMax:         10,
		NegativePenaltyPerItem: 10,
		SocialMax:              5,
		GeoMax:                 5,
	},
	model.EntityIndividual: {
		PositiveMax:            70,
		WikipediaMax:           0,
		OwnedAssetsMax:         15,
		NegativePenaltyPerItem: 10,
		SocialMax:              10,
		GeoMax:                 5,
	},
}

// Resolve returns the weight profile for an entity type. Unknown types get
// the individual profile.
func Resolve(entityType model.EntityType) WeightProfile {
	if p, ok := profiles[entityType]; ok {
		return p
	}
	return profiles[model.EntityIndividual]
}

// EntityTypes lists the entity types with a registered profile.
func EntityTypes() []model.EntityType {
	return []model.EntityType{
		model.EntityIndividual,
		model.EntityCompany,
		model.EntityPublicFigure,
	}
}
