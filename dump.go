package modplayer

import (
	"fmt"
	"io"
)

// dumpWriter receives textual song dumps written by DumpSong. A nil
// writer (the default) makes DumpSong a no-op, so instrumenting a
// build for cmd/moddump never costs callers who don't use it.
var dumpWriter io.Writer

// SetDumpWriter directs DumpSong's output to w. Passing nil disables
// dumping again.
func SetDumpWriter(w io.Writer) { dumpWriter = w }

// DumpSong writes a human-readable listing of a song's samples and
// pattern data to the writer configured via SetDumpWriter. It is the
// engine underneath cmd/moddump; tests and other tools can call it
// directly against any io.Writer by wiring SetDumpWriter first.
func DumpSong(song *Song) {
	if dumpWriter == nil {
		return
	}

	fmt.Fprintf(dumpWriter, "%s (%d channels, %d samples)\n", song.Name, song.Format.NumChannels, len(song.Samples))
	fmt.Fprintf(dumpWriter, "used patterns: %d, end position: %d\n\n", song.NumUsedPatterns, song.EndPosition)

	dumpSamples(song)
	dumpOrderTable(song)
	dumpPatterns(song)
}

func dumpSamples(song *Song) {
	fmt.Fprintln(dumpWriter, "samples:")
	for i, smp := range song.Samples {
		if smp.Size == 0 && smp.Name == "" {
			continue
		}
		fmt.Fprintf(dumpWriter, "  %2d %-22q len=%-6d vol=%-3d ft=%-2d loop=%d+%d\n",
			i+1, smp.Name, smp.Size, smp.Volume, smp.FineTune, smp.RepeatOffset, smp.RepeatSize)
	}
	fmt.Fprintln(dumpWriter)
}

func dumpOrderTable(song *Song) {
	fmt.Fprintln(dumpWriter, "order table:")
	for i := 0; i < song.NumUsedPatterns; i++ {
		fmt.Fprintf(dumpWriter, " %3d", song.PatternTable[i])
		if (i+1)%16 == 0 {
			fmt.Fprintln(dumpWriter)
		}
	}
	fmt.Fprintln(dumpWriter)
	fmt.Fprintln(dumpWriter)
}

func dumpPatterns(song *Song) {
	for p, pat := range song.Patterns {
		fmt.Fprintf(dumpWriter, "pattern %d:\n", p)
		for row, notes := range pat.Rows {
			fmt.Fprintf(dumpWriter, "%02X ", row)
			for ci, n := range notes {
				dumpNote(n)
				if ci < len(notes)-1 {
					fmt.Fprint(dumpWriter, "|")
				}
			}
			fmt.Fprintln(dumpWriter)
		}
		fmt.Fprintln(dumpWriter)
	}
}

func dumpNote(n Note) {
	note := "..."
	if n.Period != 0 {
		note = periodToNoteName(n.Period)
	}
	inst := ".."
	if n.SampleNumber != 0 {
		inst = fmt.Sprintf("%02X", n.SampleNumber)
	}
	code, param, ok := effectCodeParam(n.Effect)
	if !ok {
		fmt.Fprintf(dumpWriter, "%s %s ....", note, inst)
		return
	}
	fmt.Fprintf(dumpWriter, "%s %s %X%02X", note, inst, code, param)
}
