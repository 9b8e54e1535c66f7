// Useful notes https://github.com/AntonioND/gbt-player/blob/master/mod2gbt/FMODDOC.TXT

package modplayer

import (
	"errors"
	"fmt"
)

// Player is a convenience façade bundling a Song with the PlayerState
// that tracks one playback of it, the way cmd/modplay's PortAudio
// callback and cmd/modwav's batch renderer both want to drive a song
// one buffer at a time without re-deriving sequencer plumbing.
type Player struct {
	Song *Song
	*PlayerState

	playing bool
}

// ErrNilSong is returned by NewPlayer when given a nil Song.
var ErrNilSong = errors.New("modplayer: nil song")

// NewPlayer creates a Player starting playback at the beginning of song,
// rendering at deviceSampleRate. Row 0 is applied immediately so the very
// first call to GenerateAudio already reflects it, rather than leaving
// the channels silent for the first row's worth of ticks.
func NewPlayer(song *Song, deviceSampleRate int) (*Player, error) {
	if song == nil {
		return nil, ErrNilSong
	}
	ps := NewPlayerState(song.Format.NumChannels, deviceSampleRate)
	AdvanceRow(song, ps)
	return &Player{
		Song:        song,
		PlayerState: ps,
		playing:     true,
	}, nil
}

// ToggleMute flips the muted state of a single channel, leaving every
// other channel's mute bit untouched.
func (p *Player) ToggleMute(channel int) {
	p.Mute ^= 1 << uint(channel)
}

// Start resumes playback; GenerateAudio will advance the song again.
func (p *Player) Start() { p.playing = true }

// Stop pauses playback; GenerateAudio continues to be callable (it
// fills out with silence) so a caller can keep feeding an audio device
// that expects a steady stream.
func (p *Player) Stop() { p.playing = false }

// IsPlaying reports whether the player is actively advancing the song.
func (p *Player) IsPlaying() bool { return p.playing }

// GenerateAudio fills out with interleaved stereo frames (out[2n] = left,
// out[2n+1] = right). When stopped or the song has ended it writes
// silence instead, so a caller feeding a fixed-size audio buffer never
// needs to special-case the tail.
func (p *Player) GenerateAudio(out []float32) {
	for i := 0; i+1 < len(out); i += 2 {
		if !p.playing || p.SongHasEnded {
			out[i], out[i+1] = 0, 0
			continue
		}
		out[i], out[i+1] = NextSample(p.Song, p.PlayerState)
	}
}

// Position returns the current pattern-table position and row, for
// callers that want to display or persist playback position without
// reaching into PlayerState directly. The row is PlayerState.CurrentLine:
// the line AdvanceRow will apply next, one past the row just triggered.
func (p *Player) Position() (position, row int) {
	return p.SongPatternPosition, p.CurrentLine
}

// SeekTo moves playback to the start of (position, row), resetting
// every channel's triggered state and immediately applying the note at
// (position, row). It does not replay the rows skipped over, so any
// instrument a channel was mid-note on goes silent until the target row
// retriggers it.
func (p *Player) SeekTo(position, row int) {
	p.PlayerState = NewPlayerState(len(p.Channels), p.DeviceSampleRate)
	p.SongPatternPosition = position
	p.CurrentLine = row
	AdvanceRow(p.Song, p.PlayerState)
}

// ChannelSnapshot is the per-channel slice of PlaybackSnapshot: enough
// to drive a UI without exposing the mixer's internal ChannelInfo.
type ChannelSnapshot struct {
	Instrument   int // 1-based sample number, 0 = none assigned
	TrigPosition int
	TrigLine     int
}

// PlaybackSnapshot is a read-only, UI-oriented view of PlayerState.
type PlaybackSnapshot struct {
	Position int
	Row      int
	Channels []ChannelSnapshot
}

// State returns a snapshot of the current playback position and
// per-channel trigger info, suitable for polling from a render loop.
func (p *Player) State() PlaybackSnapshot {
	chans := make([]ChannelSnapshot, len(p.Channels))
	for i, c := range p.Channels {
		chans[i] = ChannelSnapshot{
			Instrument:   c.SampleNum,
			TrigPosition: c.TrigPosition,
			TrigLine:     c.TrigLine,
		}
	}
	return PlaybackSnapshot{
		Position: p.SongPatternPosition,
		Row:      p.CurrentLine,
		Channels: chans,
	}
}

// ChannelNoteData is a single channel's note at a given row, formatted
// for display rather than playback.
type ChannelNoteData struct {
	Note       string // e.g. "C-4", or "..." for no note
	Instrument int    // 1-based sample number, 0 = none
	Volume     byte   // 0xFF sentinel = no volume set on this note
	Effect     byte
	Param      byte
}

const noVolumeSet = 0xFF

var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// NoteDataFor returns the formatted note data for every channel at
// (position, row), or nil if the position/row is out of range.
func (p *Player) NoteDataFor(position, row int) []ChannelNoteData {
	notes, ok := p.Song.RowAt(position, row)
	if !ok {
		return nil
	}

	out := make([]ChannelNoteData, len(notes))
	for i, n := range notes {
		nd := ChannelNoteData{Note: "...", Instrument: n.SampleNumber, Volume: noVolumeSet}
		if n.Period != 0 {
			nd.Note = periodToNoteName(n.Period)
		}
		if code, param, ok := effectCodeParam(n.Effect); ok {
			nd.Effect, nd.Param = code, param
			if sv, ok := n.Effect.(SetVolumeEffect); ok {
				nd.Volume = sv.Volume
			}
		}
		out[i] = nd
	}
	return out
}

// periodToNoteName formats a raw MOD period as a note name, e.g. "C-2".
// Periods that aren't in the canonical table print as "???".
func periodToNoteName(period int) string {
	idx := periodTableIndex(period)
	if idx < 0 {
		return "???"
	}
	return fmt.Sprintf("%s%d", noteNames[idx%12], idx/12)
}

// effectCodeParam is the display-oriented inverse of DecodeEffect: it
// recovers a representative (code, param) pair for a decoded Effect.
// It is lossy where DecodeEffect itself is lossy (e.g. TonePortamentoEffect
// with HasSpeed=false always prints param 00), which is acceptable since
// callers only use this for status output, never to re-decode playback.
func effectCodeParam(e Effect) (code, param byte, ok bool) {
	switch v := e.(type) {
	case nil:
		return 0, 0, false
	case ArpeggioEffect:
		return 0x0, v.X<<4 | v.Y, true
	case SlideUpEffect:
		return 0x1, v.Speed, true
	case SlideDownEffect:
		return 0x2, v.Speed, true
	case TonePortamentoEffect:
		return 0x3, v.Speed, true
	case VibratoEffect:
		return 0x4, v.Speed<<4 | v.Depth, true
	case TonePortaVolSlideEffect:
		return 0x5, v.Up<<4 | v.Down, true
	case VibratoVolSlideEffect:
		return 0x6, v.Up<<4 | v.Down, true
	case TremoloEffect:
		return 0x7, v.Speed<<4 | v.Depth, true
	case PanEffect:
		return 0x8, v.Value, true
	case SampleOffsetEffect:
		return 0x9, v.Offset, true
	case VolumeSlideEffect:
		return 0xA, v.Up<<4 | v.Down, true
	case PositionJumpEffect:
		return 0xB, v.Position, true
	case SetVolumeEffect:
		return 0xC, v.Volume, true
	case PatternBreakEffect:
		return 0xD, (v.Row/10)<<4 | v.Row%10, true
	case SetSpeedEffect:
		return 0xF, v.Value, true
	case FilterEffect:
		return 0xE, 0x00 | v.Value&0xF, true
	case FinePortaUpEffect:
		return 0xE, 0x10 | v.Amount&0xF, true
	case FinePortaDownEffect:
		return 0xE, 0x20 | v.Amount&0xF, true
	case GlissandoEffect:
		if v.Enabled {
			return 0xE, 0x31, true
		}
		return 0xE, 0x30, true
	case VibratoWaveformEffect:
		return 0xE, 0x40 | v.Waveform&0xF, true
	case SetFineTuneEffect:
		return 0xE, 0x50 | v.Value&0xF, true
	case PatternLoopEffect:
		return 0xE, 0x60 | v.Count&0xF, true
	case TremoloWaveformEffect:
		return 0xE, 0x70 | v.Waveform&0xF, true
	case CoarsePanEffect:
		return 0xE, 0x80 | v.Value&0xF, true
	case RetriggerEffect:
		return 0xE, 0x90 | v.Ticks&0xF, true
	case FineVolumeUpEffect:
		return 0xE, 0xA0 | v.Amount&0xF, true
	case FineVolumeDownEffect:
		return 0xE, 0xB0 | v.Amount&0xF, true
	case NoteCutEffect:
		return 0xE, 0xC0 | v.Ticks&0xF, true
	case NoteDelayEffect:
		return 0xE, 0xD0 | v.Ticks&0xF, true
	case PatternDelayEffect:
		return 0xE, 0xE0 | v.Lines&0xF, true
	case InvertLoopEffect:
		return 0xE, 0xF0 | v.Value&0xF, true
	}
	return 0, 0, false
}
