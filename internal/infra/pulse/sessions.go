package pulse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jfreymuth/pulse/proto"

	"keep-connect/internal/domain"
)

var errUnreadableSession = errors.New("sink input info missing")

// SessionSource lists sink inputs as audio sessions. A corked stream is
// paused; anything else is playing.
type SessionSource struct{}

func NewSessionSource() *SessionSource {
	return &SessionSource{}
}

func (s *SessionSource) Name() string {
	return "pulse"
}

func (s *SessionSource) Sessions(ctx context.Context) ([]domain.Session, error) {
	client, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var reply proto.GetSinkInputInfoListReply
	if err := client.RawRequest(&proto.GetSinkInputInfoList{}, &reply); err != nil {
		return nil, fmt.Errorf("listing sink inputs: %w", err)
	}

	return sessionsFromSinkInputs(reply), nil
}

func sessionsFromSinkInputs(inputs []*proto.GetSinkInputInfoReply) []domain.Session {
	sessions := make([]domain.Session, 0, len(inputs))
	for i, in := range inputs {
		if in == nil {
			sessions = append(sessions, domain.Session{
				ID:  "#" + strconv.Itoa(i),
				Err: errUnreadableSession,
			})
			continue
		}

		app := propString(in.Properties, "application.name")
		if app == AppName {
			continue
		}

		state := domain.SessionActive
		switch {
		case in.Corked:
			state = domain.SessionPaused
		case in.Muted:
			state = domain.SessionInactive
		}

		sessions = append(sessions, domain.Session{
			ID:          strconv.FormatUint(uint64(in.SinkInputIndex), 10),
			Application: app,
			State:       state,
		})
	}
	return sessions
}

func propString(props proto.PropList, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	return strings.TrimRight(string(v), "\x00")
}
