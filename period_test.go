package modplayer

import "testing"

func TestPeriodTableIndexRoundTrip(t *testing.T) {
	for i, p := range PeriodTable {
		if idx := periodTableIndex(p); idx != i {
			t.Errorf("periodTableIndex(%d) = %d, want %d", p, idx, i)
		}
	}
}

func TestPeriodTableIndexUnknown(t *testing.T) {
	if idx := periodTableIndex(1); idx != -1 {
		t.Errorf("periodTableIndex(1) = %d, want -1", idx)
	}
}

func TestFineTuneNoChange(t *testing.T) {
	// Fine-tune 8 is the untuned center: every standard period should map
	// to itself.
	for _, p := range PeriodTable {
		if got := FineTune(p, 8, true); got != p {
			t.Errorf("FineTune(%d, 8, true) = %d, want %d", p, got, p)
		}
	}
}

func TestFineTuneClampsOutOfRange(t *testing.T) {
	a := FineTune(PeriodTable[24], 20, true)
	b := FineTune(PeriodTable[24], 15, true)
	if a != b {
		t.Errorf("FineTune with out-of-range fine-tune 20 = %d, want clamp to 15 = %d", a, b)
	}
}

func TestFineTuneNonStandardScales(t *testing.T) {
	got := FineTune(400, 8, false)
	if got != 400 {
		t.Errorf("FineTune(400, 8, false) = %d, want 400 (center fine-tune is a no-op)", got)
	}
}

func TestClampPeriod(t *testing.T) {
	tests := []struct{ in, want int }{
		{50, 113},
		{113, 113},
		{500, 500},
		{856, 856},
		{2000, 856},
	}
	for _, tt := range tests {
		if got := ClampPeriod(tt.in); got != tt.want {
			t.Errorf("ClampPeriod(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampVolume(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 0},
		{0, 0},
		{32, 32},
		{64, 64},
		{100, 64},
	}
	for _, tt := range tests {
		if got := ClampVolume(tt.in); got != tt.want {
			t.Errorf("ClampVolume(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
