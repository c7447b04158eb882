package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/room"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

// Join enters the meeting room. The joinability check runs before any device
// is touched; the call then owns the prompt until it ends.
func (a *App) Join(ctx context.Context, args []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	id, err := idArg("join", args)
	if err != nil {
		return err
	}
	m, err := a.meetings.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := room.Check(m, u.ID, a.now()); err != nil {
		return err
	}

	sock := a.realtimeSocket()
	if sock == nil {
		a.connectRealtime(ctx)
		if sock = a.realtimeSocket(); sock == nil {
			return fmt.Errorf("call signaling error: %w", common.ErrNetwork)
		}
	}

	deps := room.Deps{
		Devices:   a.media,
		Peers:     a.peers,
		Signaling: sock,
		Meetings:  a.meetings,
		Log:       a.log.With("meeting_id", m.ID),
		Now:       a.now,
	}
	if a.metrics != nil {
		deps.Calls = a.metrics
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := room.Join(callCtx, deps, m, u)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.session = s
	a.mu.Unlock()

	done := make(chan struct{})
	go watchRoom(s, done)

	if s.Initiator() {
		printlnFn("Calling, waiting for the expert to join...")
	} else {
		printlnFn("Joined, waiting for the requester...")
	}
	a.roomLoop(ctx, s, m, u)

	s.Close()
	<-done
	a.mu.Lock()
	if a.session == s {
		a.session = nil
	}
	a.mu.Unlock()
	return nil
}

// roomLoop reads call commands until the user ends the call, the input ends
// or the session stops on its own.
func (a *App) roomLoop(ctx context.Context, s *room.Session, m models.Meeting, u models.User) {
	for {
		printlnFn(fmt.Sprintf("call #%d (%s)> ", m.ID, s.State()))
		line, rerr := a.reader.ReadString('\n')

		if st := s.State(); st == room.StateEnded || st == room.StateFailed {
			return
		}

		parts := strings.Fields(line)
		if len(parts) > 0 {
			if a.roomCommand(ctx, s, m, u, parts[0]) {
				return
			}
		}
		if rerr != nil {
			return
		}
	}
}

// roomCommand runs one call command and reports whether the call is over.
func (a *App) roomCommand(ctx context.Context, s *room.Session, m models.Meeting, u models.User, cmd string) bool {
	switch cmd {
	case "mute":
		on, err := s.ToggleAudio()
		if err != nil {
			printlnFn(err.Error())
			break
		}
		printf("Microphone %s.", onOff(on))

	case "camera":
		on, err := s.ToggleVideo()
		if err != nil {
			printlnFn(err.Error())
			break
		}
		printf("Camera %s.", onOff(on))

	case "share":
		if err := s.ShareScreen(ctx); err != nil {
			printlnFn("Screen sharing failed: " + err.Error())
			break
		}
		printlnFn("Sharing your screen.")

	case "unshare":
		s.StopScreenShare()

	case "status":
		st := s.Status()
		printf("State: %s, microphone %s, camera %s, sharing %s", st.State, onOff(st.Audio), onOff(st.Video), onOff(st.Sharing))
		if st.Remote != nil {
			printf("Remote stream: %s", st.Remote.ID)
		}

	case "end", "leave":
		res := s.End(ctx)
		if res.StatusErr != nil {
			for _, l := range describeError(res.StatusErr) {
				printlnFn("Could not mark the meeting completed: " + l)
			}
		} else if res.Completed {
			printlnFn("Meeting marked as completed.")
		}
		if detail, err := a.meetings.Get(ctx, m.ID); err == nil {
			a.printMeeting(detail, u.ID)
		}
		return true

	case "help":
		printlnFn("Call commands: mute, camera, share, unshare, status, end")

	default:
		printlnFn("Unknown call command: " + cmd)
	}
	return false
}

// watchRoom prints what happens on the call until the event stream closes.
func watchRoom(s *room.Session, done chan<- struct{}) {
	defer close(done)
	for ev := range s.Events() {
		switch ev.Type {
		case room.EventState:
			switch ev.State {
			case room.StateConnected:
				printlnFn("Connected.")
			case room.StateFailed:
				msg := "Call failed."
				if ev.Err != nil {
					msg = "Call failed: " + ev.Err.Error()
				}
				printlnFn(msg)
			case room.StateEnded:
				printlnFn("Call ended.")
			}
		case room.EventRemoteStream:
			if ev.Remote != nil {
				printf("Receiving the other participant's stream (%s).", ev.Remote.ID)
			}
		case room.EventScreenShare:
			if !ev.Enabled {
				printlnFn("Screen sharing stopped, camera restored.")
			}
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
