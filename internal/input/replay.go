package input

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/inkpad/internal/ink"
)

// EventType identifies a recorded pointer event
type EventType string

const (
	// EventDown starts a drag with the current tool
	EventDown EventType = "down"

	// EventMove extends the active drag
	EventMove EventType = "move"

	// EventUp ends the active drag
	EventUp EventType = "up"

	// EventLeave ends the active drag when the pointer leaves the canvas
	EventLeave EventType = "leave"
)

// Event is one recorded pointer event in client coordinates. Tool, when set
// on a down event, replaces the script's tool from that drag on.
type Event struct {
	Type EventType      `yaml:"type"`
	X    float64        `yaml:"x"`
	Y    float64        `yaml:"y"`
	Tool *ink.ToolState `yaml:"tool,omitempty"`
}

// Script is a recorded sequence of pointer events
type Script struct {
	Tool   ink.ToolState `yaml:"tool"`
	Events []Event       `yaml:"events"`
}

// LoadScript decodes a YAML event script. A missing tool defaults to the
// standard pen.
func LoadScript(r io.Reader) (*Script, error) {
	script := &Script{Tool: ink.DefaultToolState()}
	if err := yaml.NewDecoder(r).Decode(script); err != nil {
		if err == io.EOF {
			return script, nil
		}
		return nil, fmt.Errorf("failed to parse event script: %w", err)
	}
	return script, nil
}

// Replay feeds every event of script into session in order. It stops at the
// first event it cannot interpret; events already applied stay applied.
func Replay(session *Session, script *Script) error {
	tool := script.Tool
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid script tool: %w", err)
	}

	for i, ev := range script.Events {
		switch ev.Type {
		case EventDown:
			if ev.Tool != nil {
				if err := ev.Tool.Validate(); err != nil {
					return fmt.Errorf("event %d: invalid tool: %w", i, err)
				}
				tool = *ev.Tool
			}
			session.PointerDown(ev.X, ev.Y, tool)
		case EventMove:
			session.PointerMove(ev.X, ev.Y)
		case EventUp:
			session.PointerUp()
		case EventLeave:
			session.PointerLeave()
		default:
			return fmt.Errorf("event %d: unknown event type %q", i, ev.Type)
		}
	}

	// a recording cut off mid-drag still commits what was drawn
	session.PointerUp()
	return nil
}
