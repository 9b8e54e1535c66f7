package modplayer

// RowsPerPattern is the fixed number of rows ("lines") in every pattern.
const RowsPerPattern = 64

// Format describes the structural shape of a loaded module: how many
// channels it plays and how many instrument slots it carries.
type Format struct {
	NumChannels int // usually 4, 8 or 12; xCHN/xxCH tags and S3M files can give other counts
	NumSamples  int // 15 or 31 for MOD; the instrument count for S3M
	HasTag      bool
}

// Sample is one instrument slot: a name, playback parameters and raw
// signed 8-bit PCM data.
type Sample struct {
	Name         string
	Size         int // length of Data in bytes
	Volume       int // 0..64
	FineTune     int // 0..15
	RepeatOffset int
	RepeatSize   int
	Data         []int8
}

// Note is one channel's entry in one row of a pattern.
type Note struct {
	SampleNumber int    // 1-based, 0 = keep the channel's current sample
	Period       int    // Amiga period, 0 = no new pitch this row
	Effect       Effect // nil = no effect
}

// Pattern is a fixed 64-row block of per-channel notes.
type Pattern struct {
	Rows [RowsPerPattern][]Note
}

// Song is the fully decoded, read-only module. It is built once by a
// loader and shared for the lifetime of playback; nothing in the mixer
// or effect engine ever mutates it.
type Song struct {
	Name   string
	Format Format

	Samples      []Sample  // index 0 is sample number 1
	Patterns     []Pattern
	PatternTable [128]int
	NumUsedPatterns int
	EndPosition     int // pattern-table index to loop back to, or >= NumUsedPatterns to end

	// HasStandardNotes is true iff every note period in the song appears
	// in the canonical 60-entry period table, which enables table-based
	// fine-tuning. Otherwise FineTune falls back to linear scaling.
	HasStandardNotes bool
}

// SampleAt returns the sample for a 1-based sample number, or nil if the
// number is out of range or 0 ("no sample").
func (s *Song) SampleAt(sampleNumber int) *Sample {
	if sampleNumber <= 0 || sampleNumber > len(s.Samples) {
		return nil
	}
	return &s.Samples[sampleNumber-1]
}

// RowAt resolves a (pattern position, line) pair to the row of notes that
// plays there. It honors the pattern table indirection; ok is false if
// either index is out of range.
func (s *Song) RowAt(patternPosition, line int) (row []Note, ok bool) {
	if patternPosition < 0 || patternPosition >= s.NumUsedPatterns {
		return nil, false
	}
	if line < 0 || line >= RowsPerPattern {
		return nil, false
	}
	patIdx := s.PatternTable[patternPosition]
	if patIdx < 0 || patIdx >= len(s.Patterns) {
		return nil, false
	}
	return s.Patterns[patIdx].Rows[line], true
}
