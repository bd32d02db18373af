package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into ordered, editable items.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// container is the current insertion point while parsing: either stylesheet
// itself (at == nil) or a block at-rule.
type container struct {
	at    *AtRule
	items *[]*Item
}

// Parse parses UTF-8 CSS text into a Stylesheet. Parsing never fails: syntax
// problems are recorded in Stylesheet.Warnings and parsing continues with
// the next construct. The optional source parameter identifies what's being
// parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]*Item, 0),
		Warnings: make([]string, 0),
	}

	log := p.log
	if len(source) > 0 && source[0] != "" {
		log = log.With(zap.String("source", source[0]))
	}
	log.Debug("Parsing CSS", zap.Int("bytes", len(data)))

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	stack := []container{{items: &sheet.Items}}
	top := func() container { return stack[len(stack)-1] }

	var rule *Rule
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if parser.HasParseError() {
				msg := parseErrorMessage(parser.Err())
				sheet.Warnings = append(sheet.Warnings, msg)
				log.Debug("CSS parse error", zap.String("error", msg))
				continue
			}
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				sheet.Warnings = append(sheet.Warnings, err.Error())
				log.Debug("CSS read error", zap.Error(err))
			}
			if len(stack) > 1 {
				log.Debug("Unterminated @-rule block at end of input", zap.String("rule", top().at.Name))
			}
			log.Debug("Parsed CSS", zap.Int("items", len(sheet.Items)), zap.Int("warnings", len(sheet.Warnings)))
			return sheet

		case css.CommentGrammar:
			comment := string(data)
			c := top()
			*c.items = append(*c.items, &Item{Comment: &comment})

		case css.AtRuleGrammar:
			ar := &AtRule{Name: string(data), Prelude: joinTokens(parser.Values())}
			c := top()
			*c.items = append(*c.items, &Item{AtRule: ar})

		case css.BeginAtRuleGrammar:
			ar := &AtRule{Name: string(data), Prelude: joinTokens(parser.Values()), Block: true}
			c := top()
			*c.items = append(*c.items, &Item{AtRule: ar})
			stack = append(stack, container{at: ar, items: &ar.Items})

		case css.EndAtRuleGrammar:
			if len(stack) > 1 {
				if ar := top().at; ar.Body != "" {
					ar.Body = strings.TrimSpace(ar.Body)
				}
				stack = stack[:len(stack)-1]
			}

		case css.BeginRulesetGrammar:
			rule = NewRule(joinSelector(parser.Values()))
			c := top()
			*c.items = append(*c.items, &Item{Rule: rule})

		case css.EndRulesetGrammar:
			rule = nil

		case css.DeclarationGrammar:
			value, important := splitImportant(parser.Values())
			p.addDeclaration(sheet, top(), rule, &Declaration{
				Property:  string(data),
				Value:     value,
				Important: important,
			}, log)

		case css.CustomPropertyGrammar:
			var raw string
			if values := parser.Values(); len(values) > 0 {
				raw = string(values[0].Data)
			}
			value, important := cutImportant(strings.TrimSpace(raw))
			p.addDeclaration(sheet, top(), rule, &Declaration{
				Property:  string(data),
				Value:     value,
				Important: important,
			}, log)

		case css.TokenGrammar:
			// Raw body of @-rules with unknown content model, CDO/CDC at
			// top level are dropped.
			if c := top(); c.at != nil {
				c.at.Body += string(data)
			}
		}
	}
}

// parseErrorMessage formats tokenizer error as a single line.
func parseErrorMessage(err error) string {
	var perr *parse.Error
	if errors.As(err, &perr) {
		return fmt.Sprintf("%s at line %d, column %d", perr.Message, perr.Line, perr.Column)
	}
	return err.Error()
}

func (p *Parser) addDeclaration(sheet *Stylesheet, c container, rule *Rule, d *Declaration, log *zap.Logger) {
	switch {
	case rule != nil:
		rule.Append(d)
	case c.at != nil:
		c.at.Declarations = append(c.at.Declarations, d)
	default:
		sheet.Warnings = append(sheet.Warnings, "declaration outside of rule: "+d.Property)
		log.Debug("Skipping declaration outside of rule", zap.String("property", d.Property))
	}
}

// splitImportant renders declaration value tokens and strips trailing
// "!important" which tokenizer delivers as delimiter followed by identifier.
func splitImportant(tokens []css.Token) (string, bool) {
	n := len(tokens)
	for n > 0 && tokens[n-1].TokenType == css.WhitespaceToken {
		n--
	}
	if n >= 2 && tokens[n-2].TokenType == css.DelimToken && string(tokens[n-2].Data) == "!" &&
		tokens[n-1].TokenType == css.IdentToken && strings.EqualFold(string(tokens[n-1].Data), "important") {
		return joinTokens(tokens[:n-2]), true
	}
	return joinTokens(tokens[:n]), false
}

// cutImportant strips "!important" from raw custom property value.
func cutImportant(s string) (string, bool) {
	const important = "important"
	if len(s) < len(important)+1 || !strings.EqualFold(s[len(s)-len(important):], important) {
		return s, false
	}
	rest := strings.TrimRight(s[:len(s)-len(important)], " \t\r\n\f")
	if !strings.HasSuffix(rest, "!") {
		return s, false
	}
	return strings.TrimSpace(strings.TrimSuffix(rest, "!")), true
}

// joinTokens renders tokens as CSS text. Whitespace collapses to a single
// space and top-level commas are followed by a space.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			sb.WriteByte(' ')
		case css.CommaToken:
			sb.WriteByte(',')
			if i+1 < len(tokens) && tokens[i+1].TokenType != css.WhitespaceToken {
				sb.WriteByte(' ')
			}
		default:
			sb.Write(t.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// joinSelector renders selector tokens spacing out combinators and selector
// list separators which tokenizer delivers without surrounding whitespace.
func joinSelector(tokens []css.Token) string {
	var sb strings.Builder
	depth := 0
	for _, t := range tokens {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth = max(0, depth-1)
		case css.WhitespaceToken:
			sb.WriteByte(' ')
			continue
		case css.CommaToken:
			if depth == 0 {
				sb.WriteString(", ")
				continue
			}
		case css.DelimToken:
			if depth == 0 && len(t.Data) == 1 && strings.IndexByte(">+~", t.Data[0]) >= 0 {
				sb.WriteString(" " + string(t.Data) + " ")
				continue
			}
		}
		sb.Write(t.Data)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
