package world

import (
	"fmt"
	"time"

	"github.com/hako/durafmt"
)

// Status summarizes the session for the on-screen overlay.
type Status struct {
	Conn      string
	Player    string
	Entities  int
	Uptime    time.Duration
	Session   string
	Err       error
	Throttled int
}

// Lines renders the status as overlay text. Debug adds session details.
func (s Status) Lines(debug bool) []string {
	lines := []string{fmt.Sprintf("%s - entities: %d", s.Conn, s.Entities)}
	if s.Player != "" {
		lines[0] = s.Player + " " + lines[0]
	}
	if s.Uptime > 0 {
		lines = append(lines, "online "+durafmt.Parse(s.Uptime.Truncate(time.Second)).LimitFirstN(2).String())
	}
	if s.Err != nil {
		lines = append(lines, "error: "+s.Err.Error())
	}
	if debug {
		lines = append(lines,
			"session "+s.Session,
			fmt.Sprintf("throttled inputs: %d", s.Throttled))
	}
	return lines
}
