package modplayer

import (
	"math"
	"sort"
)

// PeriodTable is the canonical Amiga period table: five octaves (60
// entries) of the twelve-tone periods ProTracker uses for pitch. Octaves
// 2-4 (indices 24..59) are the classic three-octave MOD range
// (856..113); octaves 0-1 extend it downward for arpeggio/vibrato
// headroom and for instruments fine-tuned low enough to walk off the
// bottom of the normal range.
var PeriodTable [60]int

// FineTuneTable[f][i] is the period to use for period-table index i when
// the sample's fine-tune value is f (f in 0..15, 8 = no tuning). Built at
// init time from PeriodTable so fine-tuned lookups stay internally
// consistent with the base table instead of drifting from independent
// rounding.
var FineTuneTable [16][60]int

// ScaleFineTune[f] is the multiplier applied directly to an arbitrary
// (non-tabular) period when the song doesn't use standard note periods.
var ScaleFineTune [16]float64

// LFOTable is the 64-sample sine table used by both the vibrato and
// tremolo oscillators.
var LFOTable [64]int

func init() {
	// Octave 2 (indices 24..35) is the familiar ProTracker C-2..B-2 row.
	octave2 := [12]int{
		856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
	}
	for i := 0; i < 12; i++ {
		PeriodTable[24+i] = octave2[i]
		PeriodTable[12+i] = octave2[i] * 2
		PeriodTable[0+i] = octave2[i] * 4
		PeriodTable[36+i] = octave2[i] / 2
		PeriodTable[48+i] = octave2[i] / 4
	}

	// Fine-tune step: 1/64 semitone per step, so the 16 steps span
	// roughly +/-1/8 semitone in each direction with f=8 as the untuned
	// center.
	const semitone = 1.0594630943592953 // 2^(1/12)
	for f := 0; f < 16; f++ {
		steps := float64(f-8) / 8.0 // -1..+0.875
		factor := math.Pow(semitone, steps/8.0)
		ScaleFineTune[f] = 1.0 / factor
		for i := 0; i < 60; i++ {
			FineTuneTable[f][i] = int(math.Round(float64(PeriodTable[i]) / factor))
		}
	}

	for i := 0; i < 64; i++ {
		LFOTable[i] = int(math.Round(255 * math.Sin(2*math.Pi*float64(i)/64)))
	}
}

// periodTableIndex finds the index of period p in PeriodTable, or -1 if
// p isn't one of the standard 60 periods. It walks the five 12-entry
// octave blocks (starting at indices 0,12,24,36,48) in turn; each block
// is strictly decreasing and is searched with a binary search.
func periodTableIndex(p int) int {
	for oct := 0; oct < 5; oct++ {
		base := oct * 12
		block := PeriodTable[base : base+12]
		// block is strictly decreasing
		i := sort.Search(12, func(i int) bool { return block[i] <= p })
		if i < 12 && block[i] == p {
			return base + i
		}
	}
	return -1
}

// FineTune applies a sample's fine-tune setting to a raw note period.
// When hasStandardNotes is true (the song's notes all land on the
// canonical table), the result is looked up directly in FineTuneTable so
// repeated application doesn't accumulate rounding error. Otherwise the
// period is linearly scaled.
func FineTune(period, fineTune int, hasStandardNotes bool) int {
	if fineTune < 0 {
		fineTune = 0
	}
	if fineTune > 15 {
		fineTune = 15
	}
	if hasStandardNotes {
		if idx := periodTableIndex(period); idx >= 0 {
			return FineTuneTable[fineTune][idx]
		}
		// Fell through despite the song claiming standard notes: the
		// caller validated this at load time, so this is a fatal
		// programmer error, not a recoverable data issue.
		panic("modplayer: period not in standard table despite HasStandardNotes")
	}
	return int(float64(period) * ScaleFineTune[fineTune])
}

// ClampPeriod restricts a period to the playable Amiga range.
func ClampPeriod(p int) int {
	if p < 113 {
		return 113
	}
	if p > 856 {
		return 856
	}
	return p
}

// ClampVolume restricts a volume to the valid [0,64] range.
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 64 {
		return 64
	}
	return v
}
