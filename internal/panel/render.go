package panel

import "floodwatch/internal/types"

// Placeholder text shown when the upstream prediction reports no areas.
const noAffectedAreasText = "No affected areas reported"

// AreaRow is one rendered row of the affected-areas listing. Population is
// omitted when the upstream prediction did not report one.
type AreaRow struct {
	Name              string `json:"name"`
	RiskLevel         string `json:"risk_level"`
	RiskClass         string `json:"risk_class"`
	Population        *int   `json:"population,omitempty"`
	EvacuationCenters int    `json:"evacuation_centers"`
	Placeholder       bool   `json:"placeholder,omitempty"`
}

// RenderAffectedAreas converts the prediction's affected areas into display
// rows. An empty (or nil) input yields exactly one placeholder row so the
// listing never renders blank.
func RenderAffectedAreas(areas []types.AffectedArea) []AreaRow {
	if len(areas) == 0 {
		return []AreaRow{{
			Name:        noAffectedAreasText,
			Placeholder: true,
		}}
	}
	rows := make([]AreaRow, 0, len(areas))
	for _, area := range areas {
		rows = append(rows, AreaRow{
			Name:              area.Name,
			RiskLevel:         string(area.RiskLevel),
			RiskClass:         AreaRiskClass(area.RiskLevel),
			Population:        area.Population,
			EvacuationCenters: area.EvacuationCenters,
		})
	}
	return rows
}

// Fallback recommendation when decision support returns nothing usable.
const noRecommendationText = "no recommendation available"

// DecisionView is the rendered decision-support block. The level and its
// numeric value are passed through as reported upstream.
type DecisionView struct {
	Subject        string   `json:"subject,omitempty"`
	Level          string   `json:"level,omitempty"`
	LevelNumeric   float64  `json:"level_numeric,omitempty"`
	Reasons        []string `json:"reasons,omitempty"`
	Recommendation string   `json:"recommendation"`
	Available      bool     `json:"available"`
}

// RenderDecision converts a decision-support result into a display view. A
// nil result or an empty suggested action renders the fallback text.
func RenderDecision(result *types.SuggestionResult) DecisionView {
	if result == nil || result.SuggestedAction == "" {
		return DecisionView{Recommendation: noRecommendationText}
	}
	return DecisionView{
		Subject:        result.Subject,
		Level:          result.Level,
		LevelNumeric:   result.LevelNumeric,
		Reasons:        append([]string(nil), result.Reasons...),
		Recommendation: result.SuggestedAction,
		Available:      true,
	}
}
