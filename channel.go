package modplayer

// ChannelInfo is the mutable playback state of a single channel. One
// exists per channel in a PlayerState; the row interpreter initializes it
// each row and the tick updater and mixer evolve it every tick/sample.
type ChannelInfo struct {
	// Playback.
	SampleNum  int     // 1-based, 0 = no sample assigned
	SamplePos  float64 // fractional position in bytes into the sample data
	Size       int     // effective end of the currently playing region
	Period     int     // currently sounding period, after fine-tune & effects
	FineTune   int
	BasePeriod int // last played untuned period; arpeggio/vibrato reference
	Volume     int // 0..64

	// Row-scoped effect parameters, reset at the start of every row.
	VolumeChange int
	NoteChange   int

	// Tone portamento.
	PeriodTarget    int
	LastPortaSpeed  int
	LastPortaTarget int

	// Vibrato. Speed/Depth are this row's effective values (zeroed every
	// row and reset by a Vibrato effect from either the row's parameter or
	// the Mem* memory below); Pos is the free-running LFO phase.
	VibratoPos      int
	VibratoSpeed    int
	VibratoDepth    int
	VibratoMemSpeed int
	VibratoMemDepth int

	// Tremolo, same shape as vibrato. TremoloVolumeBase is the volume the
	// oscillator perturbs around, captured at row start so repeated ticks
	// don't drift the stored Volume.
	TremoloPos       int
	TremoloSpeed     int
	TremoloDepth     int
	TremoloMemSpeed  int
	TremoloMemDepth  int
	TremoloVolumeBase int

	// Retrigger (E9x).
	RetriggerDelay   int
	RetriggerCounter int

	// Note cut (ECx). -1 means no cut scheduled.
	CutNoteDelay int

	// Arpeggio (0xy).
	ArpeggioCounter int
	ArpeggioOffsets [2]int

	// Panning. (The E6x pattern loop anchor is not kept here; it lives in
	// PlayerState.PatternLoopPosition.)
	Pan int // parsed from 8xx/E8x, never applied by the mixer

	// ActiveEffect is the decoded effect for the currently playing row,
	// set by the row interpreter and read every tick by the tick updater.
	ActiveEffect Effect

	// TrigPosition/TrigLine record where the channel's sample was last
	// triggered, for UI highlighting (cmd/modplay) only; the mixer never
	// reads them.
	TrigPosition int
	TrigLine     int
}

func newChannelInfo() ChannelInfo {
	return ChannelInfo{
		SampleNum:    0,
		CutNoteDelay: -1,
	}
}
