package icons

import "strings"

// Call is a recognized icon function call.
type Call struct {
	Name     string // icon name with quotes removed, never empty
	Color    string // second argument, valid when HasColor is set
	HasColor bool
}

// ParseCall reports whether the whole value (surrounding whitespace aside)
// is exactly one call of function fn with one or two comma separated
// arguments. Values which merely contain such call, have wrong number of
// arguments or an empty name do not match.
func ParseCall(value, fn string) (Call, bool) {
	s := strings.TrimSpace(value)
	if fn == "" || !strings.HasPrefix(s, fn+"(") || !strings.HasSuffix(s, ")") {
		return Call{}, false
	}

	args, ok := splitArgs(s[len(fn)+1 : len(s)-1])
	if !ok || len(args) < 1 || len(args) > 2 {
		return Call{}, false
	}

	call := Call{Name: unquote(args[0])}
	if call.Name == "" {
		return Call{}, false
	}
	if len(args) == 2 {
		if color := unquote(args[1]); color != "" {
			call.Color, call.HasColor = color, true
		}
	}
	return call, true
}

type splitState int

const (
	stateNormal splitState = iota
	stateQuoted
)

// splitArgs splits call arguments on commas which are outside of quotes and
// parentheses. Unbalanced parentheses or unterminated quote mean the text is
// not a single well formed call.
func splitArgs(s string) ([]string, bool) {
	var (
		args  []string
		state = stateNormal
		quote byte
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateQuoted:
			switch c {
			case '\\':
				i++
			case quote:
				state = stateNormal
			}
		case stateNormal:
			switch c {
			case '"', '\'':
				state, quote = stateQuoted, c
			case '(':
				depth++
			case ')':
				if depth--; depth < 0 {
					return nil, false
				}
			case ',':
				if depth == 0 {
					args = append(args, s[start:i])
					start = i + 1
				}
			}
		}
	}
	if state != stateNormal || depth != 0 {
		return nil, false
	}
	return append(args, s[start:]), true
}

// unquote trims s and removes one level of matching quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
