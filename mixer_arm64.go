package modplayer

// The arm64 backend currently falls back to the scalar mixer. A NEON
// path belongs here once one is written; until then this file exists so
// the build tag split (see mixer.go's `!arm64`) has an arm64 half to
// dispatch from.

// NextSample advances playback by exactly one output sample and returns
// the mixed stereo frame.
func NextSample(song *Song, ps *PlayerState) (float32, float32) {
	return nextSample(song, ps)
}

func mixChannel(c *ChannelInfo, smp *Sample, clockTicksPerDeviceSample float64) float32 {
	return mixChannelScalar(c, smp, clockTicksPerDeviceSample)
}
