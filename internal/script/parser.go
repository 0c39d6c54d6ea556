package script

import "strings"

// Parse consumes one line's token sequence and produces an Instruction.
//
// The first token is the command name: a bare word, case-sensitive, never
// quoted (ErrQuotedCommand). Every remaining token must be key=value: key a
// bare identifier, value a bare word or the content of a backtick literal.
// A missing '=' or an empty key is ErrMalformedAttribute; a repeated key is
// ErrDuplicateAttribute.
//
// A zero-token line (blank or comment) yields (nil, nil): no instruction.
func Parse(tokens []Token, lineNo int) (*Instruction, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if tokens[0].Literal {
		return nil, &SyntaxError{Kind: ErrQuotedCommand, Line: lineNo, Token: tokens[0].Text}
	}

	in := &Instruction{
		Command: tokens[0].Text,
		Line:    lineNo,
		attrs:   make(map[string]string, len(tokens)-1),
	}

	for _, tok := range tokens[1:] {
		key, value, ok := splitAttribute(tok)
		if !ok {
			return nil, &SyntaxError{Kind: ErrMalformedAttribute, Line: lineNo, Token: tok.Text}
		}
		if _, dup := in.attrs[key]; dup {
			return nil, &SyntaxError{Kind: ErrDuplicateAttribute, Line: lineNo, Key: key}
		}
		in.keys = append(in.keys, key)
		in.attrs[key] = value
	}

	return in, nil
}

// splitAttribute splits an attribute token at its first '='. The key must
// be non-empty and is always a bare identifier; the value may contain
// anything a literal carried, including further '=' characters.
func splitAttribute(tok Token) (key, value string, ok bool) {
	i := strings.IndexByte(tok.Text, '=')
	if i <= 0 {
		return "", "", false
	}
	return tok.Text[:i], tok.Text[i+1:], true
}
