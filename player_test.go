package modplayer

import "testing"

func TestNewPlayerNilSong(t *testing.T) {
	_, err := NewPlayer(nil, 44100)
	if err != ErrNilSong {
		t.Fatalf("err = %v, want ErrNilSong", err)
	}
}

// TestNewPlayerTriggersRowZeroImmediately guards the one-tone regression
// scenario at the Player level: the very first GenerateAudio call must
// already reflect row 0, not a row's worth of silence.
func TestNewPlayerTriggersRowZeroImmediately(t *testing.T) {
	song := oneChannelOneToneSong(t)

	player, err := NewPlayer(song, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	out := make([]float32, 2)
	player.GenerateAudio(out)
	if out[0] == 0 {
		t.Fatalf("first generated sample is silent, want the triggered note already sounding")
	}
}

func TestPlayerSeekToAppliesTargetRow(t *testing.T) {
	song := oneChannelOneToneSong(t)
	// Row 1 is silent, so after row 0 is applied the sequencer sits on a
	// line distinguishable from the seek target.
	song.Patterns[0].Rows[1] = []Note{{}}

	player, err := NewPlayer(song, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	player.SeekTo(0, 0)
	if player.Channels[0].Period == 0 {
		t.Fatalf("SeekTo(0,0): channel not triggered")
	}
	pos, row := player.Position()
	if pos != 0 || row != 1 {
		t.Fatalf("Position() = (%d,%d), want (0,1): row 0 applied, line 1 next", pos, row)
	}
}

func TestPlayerStopSilencesOutput(t *testing.T) {
	song := oneChannelOneToneSong(t)
	player, err := NewPlayer(song, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	player.Stop()
	if player.IsPlaying() {
		t.Fatalf("IsPlaying() = true after Stop")
	}

	out := []float32{1, 1}
	player.GenerateAudio(out)
	if out[0] != 0 || out[1] != 0 {
		t.Fatalf("GenerateAudio while stopped = %v, want silence", out)
	}

	player.Start()
	if !player.IsPlaying() {
		t.Fatalf("IsPlaying() = false after Start")
	}
}

func TestPlayerStateReflectsChannels(t *testing.T) {
	song := oneChannelOneToneSong(t)
	player, err := NewPlayer(song, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	snap := player.State()
	if len(snap.Channels) != 1 {
		t.Fatalf("len(Channels) = %d, want 1", len(snap.Channels))
	}
	if snap.Channels[0].Instrument != 1 {
		t.Fatalf("Instrument = %d, want 1", snap.Channels[0].Instrument)
	}
}

func TestNoteDataForFormatsRow(t *testing.T) {
	song := oneChannelOneToneSong(t)
	player, err := NewPlayer(song, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	notes := player.NoteDataFor(0, 0)
	if len(notes) != 1 {
		t.Fatalf("len(notes) = %d, want 1", len(notes))
	}
	if notes[0].Note != "C-2" {
		t.Fatalf("Note = %q, want C-2", notes[0].Note)
	}
	if notes[0].Instrument != 1 {
		t.Fatalf("Instrument = %d, want 1", notes[0].Instrument)
	}
}

func TestNoteDataForOutOfRange(t *testing.T) {
	song := oneChannelOneToneSong(t)
	player, err := NewPlayer(song, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	if got := player.NoteDataFor(99, 0); got != nil {
		t.Fatalf("NoteDataFor(99,0) = %v, want nil", got)
	}
}

func TestPeriodToNoteNameUnknownPeriod(t *testing.T) {
	if got := periodToNoteName(999); got != "???" {
		t.Fatalf("periodToNoteName(999) = %q, want ???", got)
	}
}

// oneChannelOneToneSong builds a single-channel, single-pattern Song
// whose only row triggers sample 1 at a canonical period, the same shape
// as the one-tone mixer regression scenario, via the shared test DSL.
func oneChannelOneToneSong(t *testing.T) *Song {
	t.Helper()
	song, _ := newPlayerWithPattern([][]string{
		{"C-2 01 ..."},
	}, t)
	return song
}
