// Package peer implements the meeting room's media and peer connection
// capabilities on top of pion/webrtc.
package peer
