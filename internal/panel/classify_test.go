package panel

import (
	"testing"

	"floodwatch/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		want        types.RiskBand
	}{
		{"zero", 0, types.RiskNormal},
		{"just below cutoff", 49.999, types.RiskNormal},
		{"exactly at cutoff", 50, types.RiskDanger},
		{"above cutoff", 75.5, types.RiskDanger},
		{"full", 100, types.RiskDanger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.probability); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.probability, got, tt.want)
			}
		})
	}
}

func TestBandColor(t *testing.T) {
	if got := BandColor(types.RiskDanger); got != ColorDanger {
		t.Errorf("danger color = %q, want %q", got, ColorDanger)
	}
	if got := BandColor(types.RiskNormal); got != ColorNormal {
		t.Errorf("normal color = %q, want %q", got, ColorNormal)
	}
}

func TestAreaRiskClass(t *testing.T) {
	if got := AreaRiskClass(types.AreaRiskHigh); got != "danger" {
		t.Errorf("high = %q, want danger", got)
	}
	if got := AreaRiskClass(types.AreaRiskModerate); got != "warning" {
		t.Errorf("moderate = %q, want warning", got)
	}
	if got := AreaRiskClass(types.AreaRiskLow); got != "success" {
		t.Errorf("low = %q, want success", got)
	}
	if got := AreaRiskClass(types.AreaRiskLevel("weird")); got != "success" {
		t.Errorf("unknown = %q, want success", got)
	}
}
