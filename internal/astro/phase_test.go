package astro

import "testing"

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		k      float64
		waxing bool
		want   Phase
	}{
		{0.001, true, PhaseNew},
		{0.001, false, PhaseNew},
		{0.2, true, PhaseWaxingCrescent},
		{0.5, true, PhaseFirstQuarter},
		{0.75, true, PhaseWaxingGibbous},
		{0.995, true, PhaseFull},
		{0.75, false, PhaseWaningGibbous},
		{0.49, false, PhaseLastQuarter},
		{0.2, false, PhaseWaningCrescent},
	}

	for _, tt := range tests {
		if got := phaseFor(tt.k, tt.waxing); got != tt.want {
			t.Errorf("phaseFor(%v, %v) = %q, want %q", tt.k, tt.waxing, got, tt.want)
		}
	}
}

func TestPhase_Dates(t *testing.T) {
	tests := []struct {
		epoch Epoch
		want  Phase
	}{
		{20230220.0706, PhaseNew},
		{20230223.1200, PhaseWaxingCrescent},
		{20230227.0806, PhaseFirstQuarter},
		{20230303.1200, PhaseWaxingGibbous},
		{20230307.1240, PhaseFull},
		{20230310.1200, PhaseWaningGibbous},
		{20230315.0208, PhaseLastQuarter},
		{20230318.1200, PhaseWaningCrescent},
	}

	for _, tt := range tests {
		res, err := Compute(tt.epoch)
		if err != nil {
			t.Fatalf("Compute(%s) error = %v", tt.epoch, err)
		}
		if got := res.Phase(); got != tt.want {
			t.Errorf("Phase() at %s = %q (k=%.3f, waxing=%v), want %q",
				tt.epoch, got, res.IlluminatedFraction, res.Waxing(), tt.want)
		}
	}
}
