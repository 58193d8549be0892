package panel

import "floodwatch/internal/types"

// Display colors for the two gauge bands. Exactly two bands exist; there is
// no graduated scale and no "unknown" band for valid numeric input.
const (
	ColorDanger = "#dc3545"
	ColorNormal = "#28a745"
)

// dangerCutoff is the probability (percent) at and above which the gauge
// shows the danger band.
const dangerCutoff = 50.0

// Classify maps a 0-100 flood probability to one of the two risk bands.
// The boundary sits exactly at 50: Classify(50) is danger.
func Classify(probabilityPercent float64) types.RiskBand {
	if probabilityPercent >= dangerCutoff {
		return types.RiskDanger
	}
	return types.RiskNormal
}

// BandColor returns the single display color paired with a risk band.
func BandColor(band types.RiskBand) string {
	if band == types.RiskDanger {
		return ColorDanger
	}
	return ColorNormal
}

// AreaRiskClass maps an area's server-assigned risk level to its display
// class: high is danger, moderate is warning, everything else is success.
func AreaRiskClass(level types.AreaRiskLevel) string {
	switch level {
	case types.AreaRiskHigh:
		return "danger"
	case types.AreaRiskModerate:
		return "warning"
	default:
		return "success"
	}
}
