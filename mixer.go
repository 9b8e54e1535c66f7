//go:build !arm64

package modplayer

// NextSample advances playback by exactly one output sample and returns
// the mixed stereo frame. It owns the full temporal hierarchy: device
// sample -> vblank tick -> row, in that order, so a vblank and a row
// boundary landing on the same call are still resolved tick-before-row.
func NextSample(song *Song, ps *PlayerState) (float32, float32) {
	return nextSample(song, ps)
}

// mixChannel resamples and scales one channel's contribution for the
// current device sample. The !arm64 build uses the portable scalar path
// directly.
func mixChannel(c *ChannelInfo, smp *Sample, clockTicksPerDeviceSample float64) float32 {
	return mixChannelScalar(c, smp, clockTicksPerDeviceSample)
}
