package model

import "strings"

// EntityType selects the weight profile used to score an analysis.
// It is fixed for the lifetime of an analysis.
type EntityType string

const (
	EntityIndividual   EntityType = "individual"    // Private individuals
	EntityCompany      EntityType = "company"       // Companies and brands
	EntityPublicFigure EntityType = "public-figure" // Public figures (politicians, executives, celebrities)
)

func (t EntityType) String() string {
	return string(t)
}

// ParseEntityType parses a user-supplied entity type string.
// Unknown values fall back to EntityIndividual, matching the engine's
// clamp-don't-reject posture.
func ParseEntityType(s string) EntityType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "company", "brand", "business":
		return EntityCompany
	case "public-figure", "public_figure", "publicfigure", "figure":
		return EntityPublicFigure
	default:
		return EntityIndividual
	}
}
