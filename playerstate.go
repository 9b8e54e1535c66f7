package modplayer

const (
	// amigaClockHz is the NTSC vertical-retrace-derived timer constant
	// ProTracker-family players use to convert an Amiga period into a
	// sample advance rate.
	amigaClockHz = 3_579_545

	defaultSongSpeed = 6
	defaultVblankHz  = 50
)

// PlayerState is the mutable, per-playback state for a song. A Song is
// built once and shared read-only; a PlayerState is created per
// concurrent playback of that song and advanced strictly forward by
// NextSample.
type PlayerState struct {
	Channels []ChannelInfo

	// Position.
	SongPatternPosition int
	CurrentLine         int
	SongHasEnded        bool
	HasLooped           bool

	// Scheduling.
	DeviceSampleRate      int
	SongSpeed             int // ticks (vblanks) per row
	SamplesPerVblank      int
	ClockTicksPerDeviceSample float64
	CurrentVblank         int
	CurrentVblankSample   int

	// Row-transition intents, resolved at the start of the next row.
	NextPatternPos      int // -1 = none
	NextPosition        int // -1 = none
	DelayLine           int // extra ticks to hold the current row
	PatternLoopPosition int // anchor row, -1 = none
	PatternLoop         int // remaining repeats, 0 = inactive
	SetPatternPosition  bool

	// Mute is a bitmask of muted channels, channel 0 in the LSB. It is
	// read by the mixer and written by Player/cmd/modplay; the core
	// sequencer never sets it itself.
	Mute uint

	// Tempo is the last BPM value set by an Fxx effect with value > 31,
	// kept only for display (cmd/modplay's status line); SamplesPerVblank
	// is what actually drives scheduling.
	Tempo int
}

// NewPlayerState creates a fresh playback state for a song at the given
// output sample rate. Playback starts at pattern-table position 0, line 0.
func NewPlayerState(numChannels, deviceSampleRate int) *PlayerState {
	ps := &PlayerState{
		Channels:            make([]ChannelInfo, numChannels),
		DeviceSampleRate:    deviceSampleRate,
		SongSpeed:           defaultSongSpeed,
		NextPatternPos:      -1,
		NextPosition:        -1,
		PatternLoopPosition: -1,
		Tempo:               125,
	}
	for i := range ps.Channels {
		ps.Channels[i] = newChannelInfo()
	}
	ps.SamplesPerVblank = deviceSampleRate / defaultVblankHz
	ps.ClockTicksPerDeviceSample = float64(amigaClockHz) / float64(deviceSampleRate)
	return ps
}

// SetSpeed implements the Fxx effect's dual meaning: values <= 31 set the
// number of vblanks per row (SongSpeed); values > 31 reprogram the vblank
// rate itself from a BPM value, per the classic "VBI count vs BPM"
// ProTracker split at 0x20.
func (ps *PlayerState) SetSpeed(value int) {
	if value <= 31 {
		ps.SongSpeed = value
		return
	}
	// samples_per_vblank = sample_rate / (bpm * 0.4)
	ps.Tempo = value
	hz := float64(value) * 0.4
	ps.SamplesPerVblank = int(float64(ps.DeviceSampleRate) / hz)
}
