package modplayer

import (
	"strconv"
	"strings"
	"testing"

	clone "github.com/huandu/go-clone/generic"
)

const testSampleLength = 1000

// testSong is a small canonical Song that table-driven tests clone from
// instead of constructing one from scratch every time.
var testSong = Song{
	Name:   "testsong",
	Format: Format{NumChannels: 4, NumSamples: 2, HasTag: true},
	Samples: []Sample{
		{Name: "square", Volume: 64, FineTune: 8, Size: testSampleLength, Data: squareWave(testSampleLength)},
		{Name: "saw", Volume: 50, FineTune: 8, Size: testSampleLength, Data: sawWave(testSampleLength)},
	},
	HasStandardNotes: true,
}

func squareWave(n int) []int8 {
	data := make([]int8, n)
	for i := range data {
		if i%2 == 0 {
			data[i] = 127
		} else {
			data[i] = -128
		}
	}
	return data
}

func sawWave(n int) []int8 {
	data := make([]int8, n)
	for i := range data {
		data[i] = int8(i % 256)
	}
	return data
}

var noteNamesTest = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// newPlayerWithPattern builds a one-pattern, one-row-block Song around
// pattern (each row is a slice of per-channel textual notes) and returns
// a ready PlayerState positioned at the start. Column syntax:
//
//	"A-4 01 C40" - play A-4 (period from the canonical table) with
//	               sample 1, effect C (set volume) param 0x40
//	"... .. ..." - empty column: no note, no sample, no effect
//	""           - shorthand for an empty column
func newPlayerWithPattern(pattern [][]string, t *testing.T) (*Song, *PlayerState) {
	t.Helper()

	nChannels := len(pattern[0])
	rows := make([][]Note, len(pattern))
	for r, row := range pattern {
		if len(row) != nChannels {
			t.Fatalf("row %d has %d channels, want %d", r, len(row), nChannels)
		}
		rows[r] = make([]Note, nChannels)
		for c, col := range row {
			rows[r][c] = decodeTestNote(col, t)
		}
	}

	song := clone.Clone(testSong)
	song.Format.NumChannels = nChannels
	song.NumUsedPatterns = 1
	song.EndPosition = 1
	song.PatternTable[0] = 0

	var pat Pattern
	for i := 0; i < RowsPerPattern; i++ {
		if i < len(rows) {
			pat.Rows[i] = rows[i]
		} else {
			pat.Rows[i] = make([]Note, nChannels)
		}
	}
	song.Patterns = []Pattern{pat}

	ps := NewPlayerState(nChannels, 44100)
	return &song, ps
}

func decodeTestNote(col string, t *testing.T) Note {
	t.Helper()
	if col == "" {
		col = "... .. ..."
	}
	parts := strings.Fields(col)
	for len(parts) < 3 {
		parts = append(parts, "..")
	}

	var n Note
	if parts[0] != "..." {
		n.Period = decodeTestPeriod(parts[0], t)
	}
	if parts[1] != ".." {
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			t.Fatalf("bad sample number %q: %v", parts[1], err)
		}
		n.SampleNumber = v
	}
	if parts[2] != "..." && parts[2] != "" {
		code, err := strconv.ParseUint(parts[2][0:1], 16, 8)
		if err != nil {
			t.Fatalf("bad effect code %q: %v", parts[2], err)
		}
		param, err := strconv.ParseUint(parts[2][1:3], 16, 8)
		if err != nil {
			t.Fatalf("bad effect param %q: %v", parts[2], err)
		}
		eff, err := DecodeEffect(byte(code), byte(param))
		if err != nil {
			t.Fatalf("DecodeEffect(%q): %v", parts[2], err)
		}
		n.Effect = eff
	}
	return n
}

// decodeTestPeriod parses a note name like "A-4" into its canonical
// period table entry, octave 2 being the table's middle octave (indices
// 24..35) to match ProTracker's own octave numbering.
func decodeTestPeriod(note string, t *testing.T) int {
	t.Helper()
	if len(note) != 3 {
		t.Fatalf("invalid note %q", note)
	}
	name := note[0:2]
	idx := -1
	for i, n := range noteNamesTest {
		if n == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatalf("invalid note name %q", name)
	}
	octave := int(note[2] - '0')
	tableIdx := 24 + idx + (octave-2)*12
	if tableIdx < 0 || tableIdx >= len(PeriodTable) {
		t.Fatalf("note %q out of table range", note)
	}
	return PeriodTable[tableIdx]
}

// advanceRows steps ps through exactly n full rows' worth of ticks by
// calling NextSample at the device-sample rate implied by the song's
// scheduling, one row at a time.
func advanceRows(song *Song, ps *PlayerState, n int) {
	startPos, startLine := ps.SongPatternPosition, ps.CurrentLine
	rows := 0
	for rows < n && !ps.SongHasEnded {
		NextSample(song, ps)
		if ps.SongPatternPosition != startPos || ps.CurrentLine != startLine {
			rows++
			startPos, startLine = ps.SongPatternPosition, ps.CurrentLine
		}
	}
}
