package modplayer

import clone "github.com/huandu/go-clone/generic"

// Snapshot returns a deep copy of the player state, safe to hold onto
// after further calls to NextSample mutate the original, for callers
// that need to compare before/after playback without aliasing slices.
// Player.State does not use it; it builds its own PlaybackSnapshot.
func (ps *PlayerState) Snapshot() *PlayerState {
	return clone.Clone(ps)
}

// Clone returns a deep copy of the song. Song is treated as immutable
// once loaded, but tooling that wants to
// mutate a working copy - e.g. to preview an edited pattern - should
// clone first rather than share the original.
func (s *Song) Clone() *Song {
	return clone.Clone(s)
}
