package modplayer

import "testing"

func TestApplyArpeggioCycle(t *testing.T) {
	song := &Song{HasStandardNotes: true}
	c := &ChannelInfo{BasePeriod: PeriodTable[24], FineTune: 8, ArpeggioOffsets: [2]int{3, 7}}

	base := FineTune(PeriodTable[24], 8, true)
	applyArpeggio(song, c, 0) // tick%3==0: base note
	if c.Period != base {
		t.Fatalf("tick 0: Period = %d, want base %d", c.Period, base)
	}

	applyArpeggio(song, c, 1) // tick%3==1: +3 semitones
	want := FineTune(PeriodTable[24+3], 8, true)
	if c.Period != want {
		t.Fatalf("tick 1: Period = %d, want %d", c.Period, want)
	}

	applyArpeggio(song, c, 2) // tick%3==2: +7 semitones
	want = FineTune(PeriodTable[24+7], 8, true)
	if c.Period != want {
		t.Fatalf("tick 2: Period = %d, want %d", c.Period, want)
	}

	applyArpeggio(song, c, 3) // back to base
	if c.Period != base {
		t.Fatalf("tick 3: Period = %d, want base %d", c.Period, base)
	}
}

func TestSlideTonePortaSnapsToTarget(t *testing.T) {
	c := &ChannelInfo{Period: 400, PeriodTarget: 420, LastPortaSpeed: 30}

	slideTonePorta(c)
	if c.Period != 420 {
		t.Fatalf("Period = %d, want 420 (overshoot snaps to target)", c.Period)
	}

	c.PeriodTarget = 300
	slideTonePorta(c)
	if c.Period != 390 {
		t.Fatalf("Period = %d, want 390 (420-30)", c.Period)
	}
}

func TestSlideTonePortaNoTargetIsNoOp(t *testing.T) {
	c := &ChannelInfo{Period: 400, LastPortaSpeed: 10}
	slideTonePorta(c)
	if c.Period != 400 {
		t.Fatalf("Period = %d, want unchanged 400 when PeriodTarget is 0", c.Period)
	}
}

func TestApplyVibratoOscillatesAroundBase(t *testing.T) {
	song := &Song{HasStandardNotes: true}
	c := &ChannelInfo{BasePeriod: PeriodTable[24], FineTune: 8, VibratoSpeed: 4, VibratoDepth: 8}

	base := FineTune(c.BasePeriod, 8, true)
	seen := map[int]bool{}
	for i := 0; i < 16; i++ {
		applyVibrato(song, c)
		seen[c.Period] = true
	}
	if len(seen) < 2 {
		t.Fatalf("vibrato never moved the period away from a single value: %v", seen)
	}
	// It must stay centered close to base, not walk off indefinitely: at
	// depth 8 the largest swing is 255*8/32 = 63 periods.
	for p := range seen {
		if d := p - base; d > 63 || d < -63 {
			t.Fatalf("period %d strayed too far from base %d", p, base)
		}
	}
}

func TestApplyTremoloOscillatesAroundBaseVolume(t *testing.T) {
	c := &ChannelInfo{TremoloVolumeBase: 40, TremoloSpeed: 4, TremoloDepth: 8}
	for i := 0; i < 16; i++ {
		applyTremolo(c)
		if c.Volume < 0 || c.Volume > 64 {
			t.Fatalf("tremolo produced out-of-range volume %d", c.Volume)
		}
	}
}

func TestUpdateChannelTickRetrigger(t *testing.T) {
	c := &ChannelInfo{ActiveEffect: RetriggerEffect{Ticks: 3}, SamplePos: 50}
	updateChannelTick(&Song{}, c, 1)
	if c.SamplePos != 50 {
		t.Fatalf("SamplePos = %v, want unchanged at tick 1", c.SamplePos)
	}
	updateChannelTick(&Song{}, c, 3)
	if c.SamplePos != 0 {
		t.Fatalf("SamplePos = %v, want reset to 0 at tick 3 (multiple of Ticks)", c.SamplePos)
	}
}

func TestUpdateChannelTickNoteCut(t *testing.T) {
	c := &ChannelInfo{ActiveEffect: NoteCutEffect{Ticks: 2}, CutNoteDelay: 2, Volume: 64}
	updateChannelTick(&Song{}, c, 1)
	if c.Volume != 64 {
		t.Fatalf("Volume = %d, want unchanged before the cut tick", c.Volume)
	}
	updateChannelTick(&Song{}, c, 2)
	if c.Volume != 0 {
		t.Fatalf("Volume = %d, want 0 at the scheduled cut tick", c.Volume)
	}
}

func TestUpdateTickEvolvesEveryChannel(t *testing.T) {
	song := &Song{HasStandardNotes: true}
	ps := NewPlayerState(2, 44100)
	ps.Channels[0].ActiveEffect = SlideUpEffect{Speed: 4}
	ps.Channels[0].NoteChange = -4
	ps.Channels[0].Period = 400
	ps.Channels[1].ActiveEffect = SlideDownEffect{Speed: 4}
	ps.Channels[1].NoteChange = 4
	ps.Channels[1].Period = 400

	UpdateTick(song, ps)
	if ps.Channels[0].Period != 396 {
		t.Fatalf("channel 0 Period = %d, want 396 after one tick of slide-up", ps.Channels[0].Period)
	}
	if ps.Channels[1].Period != 404 {
		t.Fatalf("channel 1 Period = %d, want 404 after one tick of slide-down", ps.Channels[1].Period)
	}
}
