package modplayer

// UpdateTick is "update_effects": the per-vblank evolution of every
// channel's ActiveEffect, driven by NextSample whenever it crosses a
// vblank boundary. It is called before the row interpreter checks
// whether the row itself has elapsed, so it always evolves the row that
// was already playing, never the one about to be triggered in the same
// vblank.
func UpdateTick(song *Song, ps *PlayerState) {
	// tick counts vblanks elapsed since the active row was triggered:
	// tick 0 is the trigger itself, the first UpdateTick call after a
	// trigger reports 1, and the last one, made in the vblank that
	// triggers the next row just before AdvanceRow runs, reports
	// SongSpeed plus any pattern delay.
	tick := ps.CurrentVblank + 1

	for i := range ps.Channels {
		updateChannelTick(song, &ps.Channels[i], tick)
	}
}

func updateChannelTick(song *Song, c *ChannelInfo, tick int) {
	switch e := c.ActiveEffect.(type) {
	case ArpeggioEffect:
		applyArpeggio(song, c, tick)

	case SlideUpEffect:
		c.Period = ClampPeriod(c.Period + c.NoteChange)

	case SlideDownEffect:
		c.Period = ClampPeriod(c.Period + c.NoteChange)

	case TonePortamentoEffect:
		slideTonePorta(c)

	case VibratoEffect:
		applyVibrato(song, c)

	case TonePortaVolSlideEffect:
		slideTonePorta(c)
		c.Volume = ClampVolume(c.Volume + c.VolumeChange)

	case VibratoVolSlideEffect:
		applyVibrato(song, c)
		c.Volume = ClampVolume(c.Volume + c.VolumeChange)

	case TremoloEffect:
		applyTremolo(c)

	case VolumeSlideEffect:
		c.Volume = ClampVolume(c.Volume + c.VolumeChange)

	case RetriggerEffect:
		if e.Ticks > 0 && tick%int(e.Ticks) == 0 {
			c.SamplePos = 0
		}

	case NoteCutEffect:
		if c.CutNoteDelay >= 0 && tick == c.CutNoteDelay {
			c.Volume = 0
		}
	}
}

// applyArpeggio rotates the channel's sounding period between its base
// note and the two semitone offsets carried in ArpeggioOffsets, one
// tick per phase.
func applyArpeggio(song *Song, c *ChannelInfo, tick int) {
	offset := 0
	switch tick % 3 {
	case 1:
		offset = c.ArpeggioOffsets[0]
	case 2:
		offset = c.ArpeggioOffsets[1]
	}
	if offset == 0 {
		c.Period = FineTune(c.BasePeriod, c.FineTune, song.HasStandardNotes)
		return
	}

	idx := periodTableIndex(c.BasePeriod)
	if idx < 0 {
		c.Period = FineTune(c.BasePeriod, c.FineTune, song.HasStandardNotes)
		return
	}
	idx += offset
	if idx < 0 {
		idx = 0
	}
	if idx > 59 {
		idx = 59
	}
	c.Period = FineTune(PeriodTable[idx], c.FineTune, song.HasStandardNotes)
}

// slideTonePorta moves the channel's period toward PeriodTarget by
// LastPortaSpeed per tick, snapping exactly onto the target rather than
// overshooting it.
func slideTonePorta(c *ChannelInfo) {
	if c.PeriodTarget == 0 {
		return
	}
	if c.Period < c.PeriodTarget {
		c.Period += c.LastPortaSpeed
		if c.Period > c.PeriodTarget {
			c.Period = c.PeriodTarget
		}
	} else if c.Period > c.PeriodTarget {
		c.Period -= c.LastPortaSpeed
		if c.Period < c.PeriodTarget {
			c.Period = c.PeriodTarget
		}
	}
	c.Period = ClampPeriod(c.Period)
}

// applyVibrato perturbs the channel's period around its fine-tuned base
// period using the shared 64-entry sine LFO table.
func applyVibrato(song *Song, c *ChannelInfo) {
	c.VibratoPos = (c.VibratoPos + c.VibratoSpeed) & 63
	delta := (LFOTable[c.VibratoPos] * c.VibratoDepth) / 32
	base := FineTune(c.BasePeriod, c.FineTune, song.HasStandardNotes)
	c.Period = ClampPeriod(base + delta)
}

// applyTremolo perturbs the channel's volume around the value captured
// at row start using the same LFO table as vibrato.
func applyTremolo(c *ChannelInfo) {
	c.TremoloPos = (c.TremoloPos + c.TremoloSpeed) & 63
	delta := (LFOTable[c.TremoloPos] * c.TremoloDepth) / 64
	c.Volume = ClampVolume(c.TremoloVolumeBase + delta)
}
