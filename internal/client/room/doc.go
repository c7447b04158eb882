// Package room bootstraps a two-party video call for a confirmed meeting.
//
// A Session moves through idle, acquiring-media, awaiting-peer, connected
// and ended, or lands in failed. Media, the peer connection and the
// signaling subscription are owned by the session and released on every
// exit path.
package room
