package mergefield

import (
	"errors"
	"strings"
	"unicode"
)

var errUnclosedQuote = errors.New("no closing quotation")

// splitInstruction splits field instruction text the way a POSIX shell splits
// words, minus escapes and comments: whitespace separates tokens, single and
// double quotes group, and a backslash is an ordinary character (Word
// switches such as \* and \@ start with one).
func splitInstruction(s string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inToken bool
		quote   rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, errUnclosedQuote
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

// parseInstruction fills code, extra and format of f from instruction text.
// A token starting with a backslash names a switch and consumes the next
// token as its argument.
func parseInstruction(f *Field, instr string) error {
	tokens, err := splitInstruction(instr)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	f.Code = tokens[0]
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, `\`) {
			f.Extra = append(f.Extra, tok)
			continue
		}
		name := tok[1:]
		if i+1 < len(tokens) {
			i++
			f.Format[name] = append(f.Format[name], tokens[i])
		} else if _, ok := f.Format[name]; !ok {
			f.Format[name] = nil
		}
	}
	return nil
}
