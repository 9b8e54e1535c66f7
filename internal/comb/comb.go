// Package comb implements a small Freeverb-style reverb: parallel comb
// filters (with damping) feeding a serial allpass stage per channel,
// mixed stereo. It is built to stream - InputSamples/GetAudio can be
// called with arbitrarily sized, arbitrarily chunked buffers and the
// result never depends on how the caller chose to chunk them.
package comb

// allpassFilter is a classic Schroeder allpass, used here to diffuse the
// comb bank's periodic echoes into a denser tail.
type allpassFilter struct {
	buf []int32
	pos int
}

const allpassGain = 0.5

func newAllpass(delay int) *allpassFilter {
	if delay < 1 {
		delay = 1
	}
	return &allpassFilter{buf: make([]int32, delay)}
}

func (a *allpassFilter) process(in int32) int32 {
	bufOut := a.buf[a.pos]
	out := bufOut - in
	a.buf[a.pos] = in + int32(float32(bufOut)*allpassGain)
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

// combFilter is a feedback comb filter with a one-pole lowpass in the
// feedback path (the "damping" of Freeverb's comb design) so the decay
// rolls off high frequencies faster than low ones.
type combFilter struct {
	buf     []int32
	pos     int
	decay   float32
	damping float32
	damp    float32 // one-pole filter state
}

func newCombFilter(delay int, decay, damping float32) *combFilter {
	if delay < 1 {
		delay = 1
	}
	return &combFilter{buf: make([]int32, delay), decay: decay, damping: damping}
}

func (c *combFilter) process(in int32) int32 {
	out := c.buf[c.pos]
	c.damp = float32(out)*(1-c.damping) + c.damp*c.damping
	c.buf[c.pos] = in + int32(c.decay*c.damp)
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

// channelChain is one stereo leg's filter bank: two parallel combs
// summed into a single allpass.
type channelChain struct {
	combs   [2]*combFilter
	allpass *allpassFilter
}

func msToSamples(ms float64, sampleRate int) int {
	return int(ms * float64(sampleRate) / 1000.0)
}

func newChannelChain(combTuningsMs [2]float64, allpassMs float64, decay, damping float32, sampleRate int) channelChain {
	return channelChain{
		combs: [2]*combFilter{
			newCombFilter(msToSamples(combTuningsMs[0], sampleRate), decay, damping),
			newCombFilter(msToSamples(combTuningsMs[1], sampleRate), decay, damping),
		},
		allpass: newAllpass(msToSamples(allpassMs, sampleRate)),
	}
}

func (ch *channelChain) process(in int16) int16 {
	var sum int32
	for _, c := range ch.combs {
		sum += c.process(int32(in))
	}
	return int16(ch.allpass.process(sum / int32(len(ch.combs))))
}

// StereoReverb is the int16 PCM engine underneath Fixed. It owns a
// bounded ring buffer of already-processed (wet-mixed) output samples;
// InputSamples refuses once that buffer is full rather than growing
// without bound, so callers must keep draining with GetAudio.
type StereoReverb struct {
	left, right channelChain
	mix         float32

	buf                  []int16
	readPos, writePos, n int
}

// NewStereoReverb creates a reverb with a ring buffer capacity of
// bufferSize stereo sample pairs.
func NewStereoReverb(bufferSize int, decay, damping, mix float32, sampleRate int) *StereoReverb {
	return &StereoReverb{
		left:  newChannelChain([2]float64{25.3, 29.9}, 5.0, decay, damping, sampleRate),
		right: newChannelChain([2]float64{26.9, 30.7}, 5.7, decay, damping, sampleRate),
		mix:   mix,
		buf:   make([]int16, bufferSize*2),
	}
}

func (sr *StereoReverb) InputSamples(in []int16) int {
	free := len(sr.buf) - sr.n
	n := len(in)
	if n > free {
		n = free
	}
	n -= n % 2 // only consume whole stereo pairs

	for i := 0; i < n; i += 2 {
		wetL := sr.left.process(in[i])
		wetR := sr.right.process(in[i+1])
		outL := int16(float32(in[i])*(1-sr.mix) + float32(wetL)*sr.mix)
		outR := int16(float32(in[i+1])*(1-sr.mix) + float32(wetR)*sr.mix)
		sr.push(outL)
		sr.push(outR)
	}
	return n
}

func (sr *StereoReverb) push(s int16) {
	sr.buf[sr.writePos] = s
	sr.writePos = (sr.writePos + 1) % len(sr.buf)
	sr.n++
}

func (sr *StereoReverb) GetAudio(out []int16) int {
	n := len(out)
	if n > sr.n {
		n = sr.n
	}
	for i := 0; i < n; i++ {
		out[i] = sr.buf[sr.readPos]
		sr.readPos = (sr.readPos + 1) % len(sr.buf)
	}
	sr.n -= n
	return n
}

// Reverber is implemented by anything that can buffer and process
// modplayer's native float32 stereo frames - the shape Player.GenerateAudio
// and the cmd/modplay audio callback both speak.
type Reverber interface {
	InputSamples(in []float32) int
	GetAudio(out []float32) int
}

// Fixed adapts a StereoReverb, which works in the int16 PCM domain
// ProTracker-era reverb tunings were written against, to modplayer's
// float32 frame pipeline.
type Fixed struct {
	inner *StereoReverb

	scratchIn  []int16
	scratchOut []int16
}

// NewCombFixed builds a Fixed reverb. delayMs biases the ring buffer's
// capacity so a caller asking for a long reverb tail doesn't get
// throttled by InputSamples refusing to accept more data before the
// tail has had a chance to drain.
func NewCombFixed(bufferSize int, decay float32, delayMs, sampleRate int) Reverber {
	const damping, mix = 0.5, 0.5

	minCap := (delayMs * sampleRate / 1000) * 4
	if minCap > bufferSize {
		bufferSize = minCap
	}

	return &Fixed{inner: NewStereoReverb(bufferSize, decay, damping, mix, sampleRate)}
}

func (f *Fixed) InputSamples(in []float32) int {
	if cap(f.scratchIn) < len(in) {
		f.scratchIn = make([]int16, len(in))
	}
	buf := f.scratchIn[:len(in)]
	for i, s := range in {
		buf[i] = floatToInt16(s)
	}
	return f.inner.InputSamples(buf)
}

func (f *Fixed) GetAudio(out []float32) int {
	if cap(f.scratchOut) < len(out) {
		f.scratchOut = make([]int16, len(out))
	}
	buf := f.scratchOut[:len(out)]
	n := f.inner.GetAudio(buf)
	for i := 0; i < n; i++ {
		out[i] = float32(buf[i]) / 32768
	}
	return n
}

func floatToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
