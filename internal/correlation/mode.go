package correlation

import "fmt"

// Mode selects which lifecycle phases originate, forward or accept the
// correlation identifier.
type Mode string

// Supported modes.
const (
	// ModeRequestOnly validates or generates the id on the inbound request only.
	ModeRequestOnly Mode = "request-only"
	// ModeResponseOnly ensures the response carries an id and ignores the request.
	ModeResponseOnly Mode = "response-only"
	// ModeProxy forwards an inbound id to the response and never originates one.
	ModeProxy Mode = "proxy"
	// ModeAll validates or generates on the way in and echoes on the way out.
	ModeAll Mode = "all"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeRequestOnly, ModeResponseOnly, ModeProxy, ModeAll}

// ParseMode parses s into a Mode. Matching is exact.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func (m Mode) String() string { return string(m) }
