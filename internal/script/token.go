package script

import (
	"strings"
	"unicode"
)

// Token is one lexical unit of a script line. Backtick delimiters are
// stripped during scanning; Literal records that the token contained a
// quoted span, so its text may legally hold whitespace. Tokens are
// ephemeral - produced by Tokenize and consumed by Parse within one line.
type Token struct {
	Text    string
	Literal bool
	Line    int
}

// Tokenize splits one line of script text into tokens.
//
// Outside a backtick pair, whitespace separates tokens. A backtick opens a
// literal that runs to the next backtick, internal whitespace included; the
// quoted span continues the current token, so `msg=` + backtick literal is
// a single token. An unterminated literal at end of line is a syntax error
// carrying the line number.
//
// Blank lines and comment lines (first non-whitespace character '#') yield
// zero tokens and a nil error. Leading and trailing whitespace is
// insignificant.
func Tokenize(line string, lineNo int) ([]Token, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	var (
		tokens  []Token
		current strings.Builder
		inLit   bool
		sawLit  bool // current token contained a quoted span
		open    bool // current token has begun (distinguishes `` from no token)
	)

	flush := func() {
		if !open {
			return
		}
		tokens = append(tokens, Token{Text: current.String(), Literal: sawLit, Line: lineNo})
		current.Reset()
		sawLit = false
		open = false
	}

	for _, r := range trimmed {
		switch {
		case r == '`':
			inLit = !inLit
			sawLit = true
			open = true
		case unicode.IsSpace(r) && !inLit:
			flush()
		default:
			current.WriteRune(r)
			open = true
		}
	}

	if inLit {
		return nil, &SyntaxError{Kind: ErrUnterminatedLiteral, Line: lineNo, Token: "`" + current.String()}
	}
	flush()

	return tokens, nil
}
