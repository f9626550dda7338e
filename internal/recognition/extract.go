package recognition

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"vinscan/internal/location"
)

var errNoObject = errors.New("no JSON object found")

// DecodeFirstObject decodes the first well-formed JSON object in text into
// target. Leading prose, code fences and trailing text are ignored.
func DecodeFirstObject(text string, target any) error {
	for offset := 0; offset < len(text); {
		idx := strings.IndexByte(text[offset:], '{')
		if idx < 0 {
			break
		}
		start := offset + idx
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&raw); err == nil {
			return json.Unmarshal(raw, target)
		}
		offset = start + 1
	}
	return errNoObject
}

// ExtractLocationCode pulls a location code from a free-text reply. The
// first non-empty line is kept whole after any "label:" or "... is" lead-in,
// so multi-word codes survive. The sentinel UNKNOWN and negative replies such
// as "No code visible" are reported as not found.
func ExtractLocationCode(text string) (string, bool) {
	text = strings.ReplaceAll(text, "```", "\n")
	for _, line := range strings.Split(text, "\n") {
		if i := strings.LastIndexByte(line, ':'); i >= 0 {
			line = line[i+1:]
		}
		reply := strings.ToUpper(strings.Join(strings.Fields(line), " "))
		if i := strings.LastIndex(reply, " IS "); i >= 0 {
			reply = reply[i+len(" IS "):]
		}
		reply = strings.TrimFunc(reply, notCodeRune)
		switch reply {
		case "", "TEXT", "PLAINTEXT":
			continue
		}
		if isNegativeReply(reply) {
			return "", false
		}
		return location.Normalize(reply), true
	}
	return "", false
}

func notCodeRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func isNegativeReply(reply string) bool {
	for _, word := range strings.Fields(reply) {
		word = strings.TrimFunc(word, func(r rune) bool { return r != '/' && notCodeRune(r) })
		switch word {
		case "UNKNOWN", "NONE", "N/A", "NULL", "NO", "NOT", "CANNOT", "UNREADABLE", "ILLEGIBLE":
			return true
		}
	}
	return false
}
