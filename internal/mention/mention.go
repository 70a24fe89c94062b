// Package mention extracts @token mentions from note text and resolves them
// to known users.
package mention

import (
	"regexp"
	"strings"

	"github.com/marlowe/talenttrack/internal/models"
)

var tokenRe = regexp.MustCompile(`@(\w+)`)

// Mention is one @token occurrence. Start and End are byte offsets of the
// full match (including the @) for client-side highlighting.
type Mention struct {
	Token string
	Start int
	End   int
}

// Parse scans text for @token patterns and returns them in order of first
// appearance. Duplicates are kept; deduplication happens after resolution.
// Malformed runs (trailing @, @@) simply produce no match at that position.
func Parse(text string) []Mention {
	if text == "" {
		return nil
	}
	idx := tokenRe.FindAllStringSubmatchIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	out := make([]Mention, 0, len(idx))
	for _, m := range idx {
		out = append(out, Mention{
			Token: text[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		})
	}
	return out
}

// Resolve returns the first user whose name contains token as a
// case-insensitive substring. The caller supplies users in a stable order
// (the store returns them by ascending id), which makes the documented
// first-match-wins ambiguity policy deterministic. An empty token never
// matches.
func Resolve(token string, users []models.User) (models.User, bool) {
	if token == "" {
		return models.User{}, false
	}
	needle := strings.ToLower(token)
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			return u, true
		}
	}
	return models.User{}, false
}

// ResolveAll parses text, resolves every token against users, and returns
// the deduplicated recipient ids in order of first resolution. excludeID
// (the note author) is never included, so self-mentions produce nothing.
func ResolveAll(text string, users []models.User, excludeID int64) []int64 {
	mentions := Parse(text)
	if len(mentions) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(mentions))
	var out []int64
	for _, m := range mentions {
		u, ok := Resolve(m.Token, users)
		if !ok || u.ID == excludeID {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u.ID)
	}
	return out
}
