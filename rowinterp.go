package modplayer

// AdvanceRow resolves any pending transition (pattern break, position
// jump, pattern loop), applies the row at the resulting position to
// every channel, and leaves the PlayerState positioned for the row that
// follows. It is invoked by the tick scheduler in NextSample whenever a
// row boundary is reached; it is exported so that callers building
// tooling (dumpers, seek, tests) can step the sequencer without driving
// the full mixer.
func AdvanceRow(song *Song, ps *PlayerState) {
	if ps.SongHasEnded {
		return
	}

	resolveRowTransition(song, ps)
	if ps.SongHasEnded {
		return
	}

	row, ok := song.RowAt(ps.SongPatternPosition, ps.CurrentLine)
	if !ok {
		ps.SongHasEnded = true
		return
	}

	for ch := range ps.Channels {
		if ch < len(row) {
			applyChannelNote(song, ps, ch, &row[ch])
		}
	}

	advanceRowPosition(song, ps)
}

// resolveRowTransition implements the §4.2 "transition resolution order
// at row start".
func resolveRowTransition(song *Song, ps *PlayerState) {
	switch {
	case ps.NextPatternPos != -1:
		ps.SongPatternPosition++
		ps.CurrentLine = ps.NextPatternPos
		ps.NextPatternPos = -1
	case ps.NextPosition != -1:
		oldPos := ps.SongPatternPosition
		ps.SongPatternPosition = ps.NextPosition
		ps.CurrentLine = 0
		ps.NextPosition = -1
		if ps.SongPatternPosition <= oldPos {
			ps.HasLooped = true
		}
	}

	clampPatternPosition(song, ps)
}

// clampPatternPosition applies the loop-or-end rule shared by row start
// and row end: once SongPatternPosition walks past the last used
// pattern, either loop back to EndPosition or end the song.
func clampPatternPosition(song *Song, ps *PlayerState) {
	if ps.SongPatternPosition < song.NumUsedPatterns {
		return
	}
	if song.EndPosition < song.NumUsedPatterns {
		ps.SongPatternPosition = song.EndPosition
		ps.HasLooped = true
	} else {
		ps.SongHasEnded = true
	}
}

// advanceRowPosition implements the §4.2 "at row end" step: either honor
// a pending pattern-loop jump, or move to the next line/pattern.
func advanceRowPosition(song *Song, ps *PlayerState) {
	if ps.SetPatternPosition && ps.PatternLoopPosition >= 0 {
		ps.CurrentLine = ps.PatternLoopPosition
		ps.SetPatternPosition = false
		return
	}
	ps.SetPatternPosition = false

	ps.CurrentLine++
	if ps.CurrentLine >= RowsPerPattern {
		ps.CurrentLine = 0
		ps.SongPatternPosition++
		clampPatternPosition(song, ps)
	}
}

// applyChannelNote is "play_note": the per-channel, row-start
// application of one note, per §4.2.
func applyChannelNote(song *Song, ps *PlayerState, ch int, note *Note) {
	c := &ps.Channels[ch]
	oldPeriod := c.Period
	oldSamplePos := c.SamplePos

	if note.SampleNumber > 0 {
		if smp := song.SampleAt(note.SampleNumber); smp != nil {
			c.Volume = smp.Volume
			c.Size = smp.Size
			c.FineTune = smp.FineTune
		}
		c.SampleNum = note.SampleNumber
	}
	c.TremoloVolumeBase = c.Volume

	// Reset per-row transient state.
	c.VolumeChange = 0
	c.NoteChange = 0
	c.RetriggerDelay = 0
	c.RetriggerCounter = 0
	c.VibratoSpeed = 0
	c.VibratoDepth = 0
	c.TremoloSpeed = 0
	c.TremoloDepth = 0
	c.ArpeggioCounter = 0
	c.ArpeggioOffsets = [2]int{}
	c.CutNoteDelay = -1

	isNoteDelay := false
	if nd, ok := note.Effect.(NoteDelayEffect); ok && nd.Ticks > 0 {
		isNoteDelay = true
	}

	isTonePorta := false
	switch note.Effect.(type) {
	case TonePortamentoEffect, TonePortaVolSlideEffect:
		isTonePorta = true
	}

	if note.Period != 0 {
		c.Period = FineTune(note.Period, c.FineTune, song.HasStandardNotes)
		c.BasePeriod = note.Period
		if !isNoteDelay {
			c.SamplePos = 0
			if smp := song.SampleAt(c.SampleNum); smp != nil {
				c.Size = smp.Size
			}
			c.TrigPosition = ps.SongPatternPosition
			c.TrigLine = ps.CurrentLine
		}
		if isTonePorta {
			// Tone portamento slides into the new note rather than
			// jumping straight to it: keep the channel sounding at its
			// old period and playing position on the same sample.
			c.Period = oldPeriod
			c.SamplePos = oldSamplePos
		}
	}

	applyRowStartEffect(song, ps, ch, note)
}

// applyRowStartEffect dispatches a decoded Effect's row-start behavior,
// per the §4.3 catalog.
func applyRowStartEffect(song *Song, ps *PlayerState, ch int, note *Note) {
	c := &ps.Channels[ch]
	eff := note.Effect
	c.ActiveEffect = eff

	switch e := eff.(type) {
	case ArpeggioEffect:
		c.ArpeggioOffsets = [2]int{int(e.X), int(e.Y)}
		c.ArpeggioCounter = 0

	case SlideUpEffect:
		c.NoteChange = -int(e.Speed)

	case SlideDownEffect:
		c.NoteChange = int(e.Speed)

	case TonePortamentoEffect:
		if c.BasePeriod != 0 {
			c.PeriodTarget = FineTune(c.BasePeriod, c.FineTune, song.HasStandardNotes)
		}
		if e.HasSpeed {
			c.LastPortaSpeed = int(e.Speed)
		}
		if c.PeriodTarget == 0 {
			c.PeriodTarget = c.LastPortaTarget
		} else {
			c.LastPortaTarget = c.PeriodTarget
		}

	case VibratoEffect:
		if e.HasSpeed {
			c.VibratoMemSpeed = int(e.Speed)
		}
		if e.HasDepth {
			c.VibratoMemDepth = int(e.Depth)
		}
		c.VibratoSpeed = c.VibratoMemSpeed
		c.VibratoDepth = c.VibratoMemDepth

	case TonePortaVolSlideEffect:
		c.VolumeChange = volumeSlideDelta(e.Up, e.Down)
		c.PeriodTarget = c.LastPortaTarget

	case VibratoVolSlideEffect:
		c.VolumeChange = volumeSlideDelta(e.Up, e.Down)
		c.VibratoSpeed = c.VibratoMemSpeed
		c.VibratoDepth = c.VibratoMemDepth

	case TremoloEffect:
		if e.HasSpeed {
			c.TremoloMemSpeed = int(e.Speed)
		}
		if e.HasDepth {
			c.TremoloMemDepth = int(e.Depth)
		}
		c.TremoloSpeed = c.TremoloMemSpeed
		c.TremoloDepth = c.TremoloMemDepth

	case PanEffect:
		c.Pan = int(e.Value)

	case SampleOffsetEffect:
		if note.Period != 0 && c.SampleNum > 0 {
			if smp := song.SampleAt(c.SampleNum); smp != nil && smp.Size > 0 {
				off := int(e.Offset) * 256
				c.SamplePos = float64(off % smp.Size)
			}
		}

	case VolumeSlideEffect:
		c.VolumeChange = volumeSlideDelta(e.Up, e.Down)

	case PositionJumpEffect:
		ps.NextPosition = int(e.Position)
		if ps.NextPosition <= ps.SongPatternPosition {
			ps.HasLooped = true
		}

	case SetVolumeEffect:
		c.Volume = ClampVolume(int(e.Volume))
		c.TremoloVolumeBase = c.Volume

	case PatternBreakEffect:
		r := int(e.Row)
		if r > 63 {
			r = 0
		}
		ps.NextPatternPos = r

	case SetSpeedEffect:
		ps.SetSpeed(int(e.Value))

	case FinePortaUpEffect:
		c.Period = ClampPeriod(c.Period - int(e.Amount))

	case FinePortaDownEffect:
		c.Period = ClampPeriod(c.Period + int(e.Amount))

	case RetriggerEffect:
		c.RetriggerDelay = int(e.Ticks)
		c.RetriggerCounter = 0

	case FineVolumeUpEffect:
		c.Volume = ClampVolume(c.Volume + int(e.Amount))
		c.TremoloVolumeBase = c.Volume

	case FineVolumeDownEffect:
		c.Volume = ClampVolume(c.Volume - int(e.Amount))
		c.TremoloVolumeBase = c.Volume

	case NoteCutEffect:
		c.CutNoteDelay = int(e.Ticks)

	case PatternLoopEffect:
		applyPatternLoop(ps, e.Count)

	case PatternDelayEffect:
		ps.DelayLine = int(e.Lines)

		// FilterEffect, GlissandoEffect, VibratoWaveformEffect,
		// SetFineTuneEffect, TremoloWaveformEffect, CoarsePanEffect,
		// NoteDelayEffect, InvertLoopEffect: accepted, no mixer-visible
		// behavior (see the Effect doc comments).
	}
}

func volumeSlideDelta(up, down byte) int {
	if up != 0 {
		return int(up)
	}
	return -int(down)
}

// applyPatternLoop implements E6x: x=0 drops a loop anchor at the
// current row; x>0 arms (or continues) a repeat counter and, while it
// remains nonzero, requests a jump back to the anchor at row end.
func applyPatternLoop(ps *PlayerState, count byte) {
	if count == 0 {
		ps.PatternLoopPosition = ps.CurrentLine
		return
	}
	if ps.PatternLoopPosition < 0 {
		// No anchor was ever set: drop the jump request per the open
		// question resolution in DESIGN.md.
		return
	}
	if ps.PatternLoop == 0 {
		ps.PatternLoop = int(count)
	} else {
		ps.PatternLoop--
	}
	if ps.PatternLoop > 0 {
		ps.SetPatternPosition = true
	} else {
		ps.PatternLoopPosition = -1
	}
}
