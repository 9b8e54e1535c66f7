package modplayer

// These are scalar mixing routines. In this context scalar means non-SIMD
// and implemented in Go. They are shared by both the !arm64 dispatch in
// mixer.go and the (currently stubbed) arm64 dispatch in mixer_arm64.go.

// nextSample is the temporal hierarchy shared by every mixer backend:
// device sample -> vblank tick -> row.
func nextSample(song *Song, ps *PlayerState) (float32, float32) {
	if ps.SongHasEnded {
		return 0, 0
	}

	ps.CurrentVblankSample++
	if ps.CurrentVblankSample >= ps.SamplesPerVblank {
		ps.CurrentVblankSample = 0
		UpdateTick(song, ps)
		ps.CurrentVblank++
		if ps.CurrentVblank >= ps.SongSpeed+ps.DelayLine {
			ps.CurrentVblank = 0
			ps.DelayLine = 0
			AdvanceRow(song, ps)
		}
	}

	var left, right float32
	for i := range ps.Channels {
		c := &ps.Channels[i]
		if c.Period <= 0 || c.Size <= 2 {
			continue
		}
		smp := song.SampleAt(c.SampleNum)
		if smp == nil || len(smp.Data) == 0 {
			continue
		}

		// mixChannel always runs, muted or not, so SamplePos keeps
		// advancing in lockstep with the rest of the song - muting just
		// drops the contribution from the mix.
		v := mixChannel(c, smp, ps.ClockTicksPerDeviceSample)
		if ps.Mute&(1<<uint(i)) != 0 {
			continue
		}
		lvol, rvol := panWeights(i)
		left += v * lvol
		right += v * rvol
	}
	return left, right
}

// panWeights implements the hard-panned Amiga 4-channel stereo image:
// channels 0 and 3 (mod 4) go left, channels 1 and 2 go right.
func panWeights(channel int) (float32, float32) {
	if m := channel % 4; m == 0 || m == 3 {
		return 1, 0
	}
	return 0, 1
}

// mixChannelScalar resamples and scales one channel's contribution for
// the current device sample: a nearest-neighbor read at the channel's
// fractional SamplePos, volume-scaled per the Amiga 8-bit-sample x
// 0..64-volume convention, with loop-point wraparound.
func mixChannelScalar(c *ChannelInfo, smp *Sample, clockTicksPerDeviceSample float64) float32 {
	pos := int(c.SamplePos)
	if pos < 0 || pos >= c.Size {
		if !loopChannel(c, smp) {
			return 0
		}
		pos = int(c.SamplePos)
	}
	if pos < 0 || pos >= len(smp.Data) {
		return 0
	}

	sd := int(smp.Data[pos])
	v := float32(sd*c.Volume) / (128 * 64)

	c.SamplePos += clockTicksPerDeviceSample / float64(c.Period)
	if int(c.SamplePos) >= c.Size {
		loopChannel(c, smp)
	}
	return v
}

// loopChannel rewinds a channel's SamplePos/Size into the sample's
// repeat region when it runs past Size. It reports false when the
// sample doesn't loop, so the caller can silence the channel instead.
func loopChannel(c *ChannelInfo, smp *Sample) bool {
	if smp.RepeatSize <= 2 {
		c.Size = 0
		return false
	}
	loopEnd := smp.RepeatOffset + smp.RepeatSize
	over := c.SamplePos - float64(c.Size)
	if over < 0 {
		over = 0
	}
	c.SamplePos = float64(smp.RepeatOffset) + over
	c.Size = loopEnd
	return true
}
