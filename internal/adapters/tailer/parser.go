package tailer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corey/tabwarden/internal/ports"
)

// MaxLineBytes caps a single feed line. Browser events are tiny; anything
// larger is a corrupt or hostile write.
const MaxLineBytes = 64 * 1024

// ErrUnknownKind is returned for a well-formed line whose kind the
// dispatcher does not handle.
var ErrUnknownKind = errors.New("unknown event kind")

// ParseLine decodes one JSONL feed line into an event.
// Returns nil, nil for blank lines.
func ParseLine(line []byte) (*ports.Event, error) {
	line = trimBOM(line)
	if len(line) == 0 {
		return nil, nil
	}
	var ev ports.Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, fmt.Errorf("parse feed line: %w", err)
	}
	if !ev.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	return &ev, nil
}

// trimBOM strips UTF-8 BOM if present.
func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	return data
}

// trimNewline removes trailing \n and \r\n from a line.
func trimNewline(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line
}
