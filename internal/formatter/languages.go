package formatter

import (
	"fmt"
	"strings"

	"github.com/desertthunder/mtcat/internal/shared"
)

// FormatLanguages renders langs as a list literal: ['en', 'fr'].
func FormatLanguages(langs []string) string {
	quoted := make([]string, len(langs))
	for i, l := range langs {
		if strings.Contains(l, "'") && !strings.Contains(l, `"`) {
			quoted[i] = `"` + l + `"`
		} else {
			quoted[i] = "'" + strings.ReplaceAll(l, "'", `\'`) + "'"
		}
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ParseLanguages reads a list literal with single- or double-quoted items.
// A bare comma-separated list and an empty cell are also accepted.
func ParseLanguages(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("%w: unterminated language list %q", shared.ErrMalformedTable, s)
		}
		s = s[1 : len(s)-1]
	}

	langs := []string{}
	var item strings.Builder
	var quote rune

	flush := func() {
		if v := item.String(); v != "" {
			langs = append(langs, v)
		}
		item.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0 && r == '\\' && i+1 < len(runes):
			i++
			item.WriteRune(runes[i])
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			item.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			flush()
		case r == ' ' || r == '\t':
			// separators outside quotes
		default:
			item.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote in %q", shared.ErrMalformedTable, s)
	}
	flush()
	return langs, nil
}
