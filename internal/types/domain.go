// Package types defines the shared domain model for the flood panel service:
// chart filters, series and chart models, prediction and decision-support
// results, administrative locations, and flood alerts.
package types

import "time"

// Mode selects which measurement the chart displays.
type Mode string

const (
	ModeRainfall   Mode = "rainfall"
	ModeWaterLevel Mode = "water_level"
)

// Valid reports whether the mode is one of the two supported values.
func (m Mode) Valid() bool {
	return m == ModeRainfall || m == ModeWaterLevel
}

// FilterState holds the currently selected data scope for the panel:
// measurement mode, look-back period, and optional administrative location.
// It is owned by the panel controller and read (never mutated) by fetchers.
type FilterState struct {
	Mode           Mode   `json:"mode"`
	PeriodDays     int    `json:"period_days"`
	MunicipalityID string `json:"municipality_id,omitempty"`
	BarangayID     string `json:"barangay_id,omitempty"`
}

// DefaultFilterState returns the panel's initial scope: rainfall over the
// last 7 days with no location restriction.
func DefaultFilterState() FilterState {
	return FilterState{Mode: ModeRainfall, PeriodDays: 7}
}

// NumericSeries is a label-aligned sequence of samples. Values may be nil
// (missing sample); nil entries are excluded from min/max computation and
// break line continuity when rendered.
type NumericSeries struct {
	Labels []string   `json:"labels"`
	Values []*float64 `json:"values"`
}

// SeriesFetchResult is the parsed result of one chart-data fetch.
// HistoricalValues and ThresholdValue are populated only on historical
// fetches, and ThresholdValue only when the backend supplies one.
type SeriesFetchResult struct {
	Series           NumericSeries
	HistoricalValues []*float64
	ThresholdValue   *float64
}

// ThresholdSpec describes a constant-value reference line. Labels are unique
// per chart: re-adding a spec with the same label replaces its data.
type ThresholdSpec struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// RenderSeries is one renderable line of the chart, aligned to the model's
// label domain.
type RenderSeries struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
	Color  string     `json:"color,omitempty"`
	Dashed bool       `json:"dashed,omitempty"`
	Order  int        `json:"order"`
}

// AxisBounds carries optional overrides for the value axis. A nil field means
// the renderer should derive that bound from the data.
type AxisBounds struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ChartModel is the declarative series+axis model handed to the rendering
// collaborator. Series[0] is always the primary (current data) series;
// overlays occupy positions >= 1.
type ChartModel struct {
	Labels []string       `json:"labels"`
	Series []RenderSeries `json:"series"`
	Axis   AxisBounds     `json:"axis"`
}

// RiskBand is one of the two gauge classifications derived from probability.
type RiskBand string

const (
	RiskNormal RiskBand = "normal"
	RiskDanger RiskBand = "danger"
)

// AreaRiskLevel is the server-assigned risk level of an administrative area.
type AreaRiskLevel string

const (
	AreaRiskLow      AreaRiskLevel = "low"
	AreaRiskModerate AreaRiskLevel = "moderate"
	AreaRiskHigh     AreaRiskLevel = "high"
)

// AffectedArea is one at-risk administrative area reported by the prediction
// endpoint.
type AffectedArea struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Population        *int          `json:"population,omitempty"`
	RiskLevel         AreaRiskLevel `json:"risk_level"`
	EvacuationCenters int           `json:"evacuation_centers"`
}

// PredictionResult is the parsed response of the prediction endpoint.
// All numeric analysis happens server-side; this struct only carries the
// values through to the gauge and affected-area views.
type PredictionResult struct {
	ProbabilityPercent  float64        `json:"probability_percent"`
	ImpactText          string         `json:"impact_text"`
	HoursToFlood        *float64       `json:"hours_to_flood,omitempty"`
	FloodTimeISO        string         `json:"flood_time,omitempty"`
	ContributingFactors []string       `json:"contributing_factors"`
	AffectedAreas       []AffectedArea `json:"affected_areas"`
	Rainfall24h         *float64       `json:"rainfall_24h,omitempty"`
	WaterLevel          *float64       `json:"water_level,omitempty"`
	LastUpdatedISO      string         `json:"last_updated"`
}

// SuggestionResult is the parsed response of the decision-support endpoint.
type SuggestionResult struct {
	Subject         string   `json:"subject"`
	Level           string   `json:"level"`
	LevelNumeric    float64  `json:"level_numeric"`
	Reasons         []string `json:"reasons"`
	SuggestedAction string   `json:"suggested_action"`
}

// Municipality is a top-level administrative area.
type Municipality struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Barangay is a sub-municipal administrative area.
type Barangay struct {
	ID             string `json:"id"`
	MunicipalityID string `json:"municipality_id"`
	Name           string `json:"name"`
}

// AlertSeverity is the severity level of a flood alert.
type AlertSeverity string

const (
	SeverityAdvisory AlertSeverity = "advisory"
	SeverityWatch    AlertSeverity = "watch"
	SeverityWarning  AlertSeverity = "warning"
)

// FloodAlert is an operator-submitted alert scoped to a set of barangays.
type FloodAlert struct {
	ID                  string        `json:"id"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	SeverityLevel       AlertSeverity `json:"severity_level"`
	Active              bool          `json:"active"`
	AffectedBarangayIDs []string      `json:"affected_barangay_ids"`
	CreatedAt           time.Time     `json:"created_at"`
}

// EmergencyContact is a designated contact for a barangay, notified by SMS
// when an alert covers that barangay.
type EmergencyContact struct {
	ID         string `json:"id"`
	BarangayID string `json:"barangay_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

// SubscriberProfile is a registered user assigned to a location, with
// per-channel opt-in flags.
type SubscriberProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	MunicipalityID string `json:"municipality_id,omitempty"`
	BarangayID     string `json:"barangay_id,omitempty"`
	ReceiveEmail   bool   `json:"receive_email"`
	ReceiveSMS     bool   `json:"receive_sms"`
}

// NotificationChannel identifies the delivery channel of a notification.
type NotificationChannel string

const (
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
)

// NotificationLog records one simulated notification send for an alert.
type NotificationLog struct {
	ID        string              `json:"id"`
	AlertID   string              `json:"alert_id"`
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}
