package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/gomodtracker/modplayer"
	"github.com/gomodtracker/modplayer/internal/comb"
	"github.com/gordonklaus/portaudio"
)

var (
	white   = color.New(color.FgWhite).SprintfFunc()
	cyan    = color.New(color.FgCyan).SprintfFunc()
	magenta = color.New(color.FgMagenta).SprintfFunc()
	yellow  = color.New(color.FgYellow).SprintfFunc()
	blue    = color.New(color.FgHiBlue).SprintFunc()
	green   = color.New(color.FgGreen).SprintfFunc()
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

const (
	scratchBufferSize = 10 * 1024
	audioBufferSize   = 756 / 2
	patternRowsBefore = 4
	patternRowsAfter  = 4
	uiLineCount       = 13
)

type displayMode int

const (
	displayModeWide displayMode = iota
	displayModeNarrow
	displayModeCompact
)

// AudioPlayer encapsulates audio playback and UI rendering.
type AudioPlayer struct {
	player  *modplayer.Player
	reverb  comb.Reverber
	stream  *portaudio.Stream
	scratch []float32

	// UI state.
	uiWriter        io.Writer
	selectedChannel int
	soloChannel     int
	haveLastState   bool
	lastState       modplayer.PlaybackSnapshot
	displayMode     displayMode
	formatter       *noteFormatter

	// Lifecycle management.
	ctx            context.Context
	cancelFn       context.CancelFunc
	wg             sync.WaitGroup
	stopOnce       sync.Once
	terminated     bool
	keyboardDoneCh chan struct{}
}

// noteFormatter handles formatting note data for display.
type noteFormatter struct {
	mode displayMode
}

// NewAudioPlayer creates a new AudioPlayer instance.
func NewAudioPlayer(player *modplayer.Player, reverb comb.Reverber, noUI bool) *AudioPlayer {
	var uiw io.Writer = os.Stdout
	if noUI {
		uiw = io.Discard
	}

	mode := determineDisplayMode(player.Song.Format.NumChannels)
	ctx, cancel := context.WithCancel(context.Background())

	return &AudioPlayer{
		player:         player,
		reverb:         reverb,
		scratch:        make([]float32, scratchBufferSize),
		uiWriter:       uiw,
		soloChannel:    -1,
		displayMode:    mode,
		formatter:      &noteFormatter{mode: mode},
		ctx:            ctx,
		cancelFn:       cancel,
		keyboardDoneCh: make(chan struct{}),
	}
}

// Run starts the audio playback and UI rendering.
func (ap *AudioPlayer) Run() error {
	if err := ap.Initialize(); err != nil {
		return err
	}

	if err := ap.setupAudioStream(); err != nil {
		return err
	}

	ap.setupSignalHandlers()
	ap.setupKeyboardHandlers()

	fmt.Fprint(ap.uiWriter, hideCursor)

	for {
		select {
		case <-ap.ctx.Done():
			goto exit
		default:
		}

		state := ap.player.State()

		if ap.shouldUpdateUI(state) {
			ap.renderUI(state)
			ap.lastState = state
			ap.haveLastState = true
		}
	}

exit:

	fmt.Fprint(ap.uiWriter, showCursor)

	select {
	case <-ap.keyboardDoneCh:
	case <-time.After(500 * time.Millisecond):
	}

	ap.wg.Wait()
	return nil
}

// Initialize handles PortAudio initialization.
func (ap *AudioPlayer) Initialize() error {
	return portaudio.Initialize()
}

// startAudioStream opens and starts a PortAudio output stream driving
// player through reverb, independent of AudioPlayer's own keyboard/UI
// plumbing. Used by -tui, which hands the terminal to bubbletea instead.
func startAudioStream(player *modplayer.Player, reverb comb.Reverber, sampleRate int) (*portaudio.Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	scratch := make([]float32, scratchBufferSize)
	callback := func(out []float32) {
		sc := scratch[:len(out)]
		if player.IsPlaying() {
			player.GenerateAudio(sc)
		} else {
			clear(sc)
		}
		reverb.InputSamples(sc)
		if n := reverb.GetAudio(out); n == 0 {
			player.Stop()
		}
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(sampleRate), audioBufferSize, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	return stream, nil
}

// setupAudioStream creates and starts the audio stream.
func (ap *AudioPlayer) setupAudioStream() error {
	stream, err := portaudio.OpenDefaultStream(
		0, 2,
		float64(*flagHz),
		audioBufferSize,
		ap.streamCallback,
	)
	if err != nil {
		return err
	}

	ap.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}

	return nil
}

// streamCallback is called by PortAudio to generate audio samples.
func (ap *AudioPlayer) streamCallback(out []float32) {
	sc := ap.scratch[:len(out)]

	if ap.player.IsPlaying() {
		ap.player.GenerateAudio(sc)
	} else {
		// Clear out the audio buffer to prevent unpleasant loops when
		// paused (we are still pushing PCM data to the audio device).
		clear(sc)
	}

	ap.reverb.InputSamples(sc)
	n := ap.reverb.GetAudio(out)

	if n == 0 {
		ap.player.Stop()
	}
}

// setupSignalHandlers handles OS signals like SIGINT.
func (ap *AudioPlayer) setupSignalHandlers() {
	sigch := make(chan os.Signal, 5)
	signal.Notify(sigch, syscall.SIGINT)

	ap.wg.Add(1)
	go func() {
		defer ap.wg.Done()
		for {
			select {
			case <-ap.ctx.Done():
				return
			case sig := <-sigch:
				if sig == syscall.SIGINT {
					ap.Stop()
					return
				}
			}
		}
	}()
}

// setupKeyboardHandlers handles keyboard input.
func (ap *AudioPlayer) setupKeyboardHandlers() {
	ap.wg.Add(1)
	go func() {
		defer ap.wg.Done()
		keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			if key.Code == keys.CtrlC || key.Code == keys.Escape {
				ap.Stop()
				return true, nil
			}

			ap.handleKeyPress(key)

			return false, nil
		})
		close(ap.keyboardDoneCh)
	}()
}

// handleKeyPress processes a single key press.
func (ap *AudioPlayer) handleKeyPress(key keys.Key) {
	switch key.Code {
	case keys.Left:
		ap.selectedChannel = max(ap.selectedChannel-1, 0)

	case keys.Right:
		ap.selectedChannel = min(ap.selectedChannel+1, ap.player.Song.Format.NumChannels-1)

	case keys.Space:
		if ap.player.IsPlaying() {
			ap.player.Stop()
		} else {
			ap.player.Start()
		}

	case keys.RuneKey:
		if len(key.Runes) > 0 {
			switch key.Runes[0] {
			case 'q':
				ap.player.Mute ^= 1 << uint(ap.selectedChannel)

			case 's':
				if ap.soloChannel != ap.selectedChannel {
					ap.soloChannel = ap.selectedChannel
					ap.player.Mute = ^uint(0) ^ (1 << uint(ap.selectedChannel))
				} else {
					ap.soloChannel = -1
					ap.player.Mute = 0
				}
			}
		}
	}
}

// Stop performs clean shutdown.
func (ap *AudioPlayer) Stop() {
	ap.stopOnce.Do(func() {
		ap.player.Stop()
		ap.cancelFn()

		if ap.stream != nil {
			ap.stream.Stop()
			ap.stream.Close()
		}

		if !ap.terminated {
			portaudio.Terminate()
			ap.terminated = true
		}

		fmt.Fprint(ap.uiWriter, showCursor)
	})
}

// renderUI renders the complete UI.
func (ap *AudioPlayer) renderUI(state modplayer.PlaybackSnapshot) {
	ap.renderHeader(state)
	ap.renderInstrumentStatus(state)
	ap.renderChannelHeaders()
	ap.renderPatternRows(state)

	ncl := len(state.Channels) / 2
	fmt.Fprintf(ap.uiWriter, escape+"%dF", uiLineCount+ncl)
}

// renderHeader renders the title and playback info.
func (ap *AudioPlayer) renderHeader(state modplayer.PlaybackSnapshot) {
	song := ap.player.Song
	if len(song.Name) > 0 {
		fmt.Fprint(ap.uiWriter, song.Name+" ")
	}
	fmt.Fprintf(ap.uiWriter, "%s %02X/%02X %s %02X/%02X %s %02d %s %3d\n",
		blue("row"), state.Row, modplayer.RowsPerPattern-1,
		blue("pat"), state.Position, song.NumUsedPatterns,
		blue("speed"), ap.player.SongSpeed,
		blue("bpm"), ap.player.Tempo)
}

// renderInstrumentStatus shows which instruments are playing on each channel.
func (ap *AudioPlayer) renderInstrumentStatus(state modplayer.PlaybackSnapshot) {
	song := ap.player.Song
	for i, ch := range state.Channels {
		tc := ' '
		if state.Position == ch.TrigPosition && state.Row == ch.TrigLine {
			tc = '■'
		} else if ch.Instrument != 0 {
			tc = '□'
		}
		outs := fmt.Sprintf("%2d%c ", i+1, tc)

		if smp := song.SampleAt(ch.Instrument); smp != nil {
			outs += smp.Name
		}
		fmt.Fprintf(ap.uiWriter, "%-32s", outs)
		if i&1 == 1 {
			fmt.Fprintln(ap.uiWriter)
		}
	}
	fmt.Fprintln(ap.uiWriter)
	fmt.Fprintln(ap.uiWriter)
}

// renderChannelHeaders renders the channel number headers.
func (ap *AudioPlayer) renderChannelHeaders() {
	song := ap.player.Song
	headerChannels := 8
	if ap.displayMode == displayModeCompact {
		headerChannels = 12
	}
	fmt.Fprint(ap.uiWriter, "        ")
	for i := range min(song.Format.NumChannels, headerChannels) {
		const chanstr = "%2d       "
		if i == ap.selectedChannel {
			fmt.Fprint(ap.uiWriter, green(chanstr, i+1))
			continue
		}
		fmt.Fprintf(ap.uiWriter, chanstr, i+1)
	}
	fmt.Fprintln(ap.uiWriter)
}

// renderPatternRows renders the pattern data rows.
func (ap *AudioPlayer) renderPatternRows(state modplayer.PlaybackSnapshot) {
	for i := -patternRowsBefore; i <= patternRowsAfter; i++ {
		ap.renderNoteRow(state.Position, state.Row+i, i == 0)
	}
}

// renderNoteRow renders a single row of note data.
func (ap *AudioPlayer) renderNoteRow(position, row int, isCurrent bool) {
	nd := ap.player.NoteDataFor(position, row)
	if nd == nil {
		fmt.Fprintln(ap.uiWriter)
		return
	}

	if isCurrent {
		fmt.Fprint(ap.uiWriter, ">>> ")
	} else {
		fmt.Fprint(ap.uiWriter, "    ")
	}

	maxChannels := 8
	switch ap.displayMode {
	case displayModeWide:
		maxChannels = 4
	case displayModeCompact:
		maxChannels = 12
	}

	for ni, n := range nd {
		if ni >= maxChannels {
			if ni == maxChannels {
				fmt.Fprint(ap.uiWriter, " ...")
			}
			break
		}

		ap.formatter.formatNote(ni, n, ap.uiWriter)
	}

	if isCurrent {
		fmt.Fprint(ap.uiWriter, " <<<")
	}
	fmt.Fprintln(ap.uiWriter)
}

// formatNote formats and writes a single note to the writer.
func (nf *noteFormatter) formatNote(ni int, n modplayer.ChannelNoteData, w io.Writer) {
	switch nf.mode {
	case displayModeWide:
		nf.formatWide(ni, n, w)
	case displayModeNarrow:
		nf.formatNarrow(ni, n, w)
	case displayModeCompact:
		nf.formatCompact(ni, n, w)
	}
}

// formatWide formats a note in wide display mode (shows all details).
func (nf *noteFormatter) formatWide(ni int, n modplayer.ChannelNoteData, w io.Writer) {
	fmt.Fprint(w, white("%s", n.Note), " ", cyan("%2X", n.Instrument), " ")
	if n.Volume != 0xFF {
		fmt.Fprint(w, green("%02X", n.Volume))
	} else {
		fmt.Fprint(w, green(".."))
	}
	fmt.Fprint(w, " ", magenta("%X", n.Effect), yellow("%02X", n.Param))

	if ni < 3 {
		fmt.Fprint(w, "|")
	}
}

// formatNarrow formats a note in narrow display mode (omits instrument and volume).
func (nf *noteFormatter) formatNarrow(ni int, n modplayer.ChannelNoteData, w io.Writer) {
	fmt.Fprint(w, white("%s", n.Note), " ", magenta("%X", n.Effect), yellow("%02X", n.Param))
	if ni < 7 {
		fmt.Fprint(w, "|")
	}
}

// formatCompact formats a note in compact display mode: note name only,
// so a 12-channel pattern still fits one terminal line.
func (nf *noteFormatter) formatCompact(ni int, n modplayer.ChannelNoteData, w io.Writer) {
	fmt.Fprint(w, white("%s", n.Note))
	if ni < 11 {
		fmt.Fprint(w, "|")
	}
}

// determineDisplayMode selects the appropriate display mode based on channel count.
func determineDisplayMode(channels int) displayMode {
	switch {
	case channels <= 4:
		return displayModeWide
	case channels <= 8:
		return displayModeNarrow
	default:
		return displayModeCompact
	}
}

// shouldUpdateUI determines if the UI needs to be redrawn.
func (ap *AudioPlayer) shouldUpdateUI(current modplayer.PlaybackSnapshot) bool {
	if !ap.haveLastState {
		return true
	}
	return ap.lastState.Position != current.Position || ap.lastState.Row != current.Row
}

// play is the original entry point, now a thin wrapper.
func play(player *modplayer.Player, reverb comb.Reverber) {
	ap := NewAudioPlayer(player, reverb, *flagNoUI)

	defer func() {
		if ap.stream != nil {
			ap.stream.Stop()
			ap.stream.Close()
		}
		if !ap.terminated {
			portaudio.Terminate()
		}
		fmt.Fprint(ap.uiWriter, showCursor)
	}()

	if err := ap.Run(); err != nil {
		log.Fatal(err)
	}
}
