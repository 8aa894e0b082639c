// Package parser turns raw log lines into structured events.
package parser

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// ParseErrorTag marks events whose line could not be decoded.
const ParseErrorTag = "ParseError"

// ParseLine parses one log line from the given source into an event.
//
// Lines starting with '{' are decoded as one JSON object per line and their
// fields used directly. Otherwise the line is split on whitespace: a leading
// IPv4 dotted-quad becomes the ip field and the remainder the message, else
// the whole line is the message.
//
// ParseLine never fails: undecodable lines yield an event carrying the raw
// line, the current time and a ParseError tag.
func ParseLine(line, source string) *models.Event {
	line = strings.TrimSpace(line)

	e := &models.Event{
		Source: source,
		RawLog: line,
	}

	if strings.HasPrefix(line, "{") {
		if err := parseJSONLine(line, e); err != nil {
			return parseFailure(line, source)
		}
	} else {
		parts := strings.Fields(line)
		if len(parts) > 0 && IsIPv4(parts[0]) {
			e.IP = parts[0]
			e.Message = strings.Join(parts[1:], " ")
		} else {
			e.Message = line
		}
	}

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}

func parseJSONLine(line string, e *models.Event) error {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return err
	}

	for k, v := range record {
		switch k {
		case "timestamp":
			if s, ok := v.(string); ok {
				if ts, err := time.Parse(time.RFC3339, s); err == nil {
					e.Timestamp = ts
				}
			}
		case "message":
			e.Message, _ = v.(string)
		case "ip":
			e.IP, _ = v.(string)
		default:
			if e.Extras == nil {
				e.Extras = make(map[string]any)
			}
			e.Extras[k] = v
		}
	}
	return nil
}

func parseFailure(line, source string) *models.Event {
	return &models.Event{
		Timestamp:  time.Now().UTC(),
		Source:     source,
		RawLog:     line,
		ParseError: ParseErrorTag,
	}
}

// IsIPv4 reports whether s is a dotted-quad IPv4 address: four integer
// fields each in 0-255.
func IsIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if len(p) == 0 || len(p) > 3 {
			return false
		}
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return false
		}
	}
	return true
}
