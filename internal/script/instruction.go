package script

import "strings"

// Instruction is one parsed script command: a command name plus an ordered
// set of attributes. Immutable once parsed; owned by the Program that
// contains it.
//
// Attribute keys are unique within one instruction. Insertion order does
// not matter for lookup but is preserved for diagnostics and round-trip
// reconstruction.
type Instruction struct {
	Command string
	Line    int

	keys  []string
	attrs map[string]string
}

// Attr returns the value for key and whether the key is present.
func (in *Instruction) Attr(key string) (string, bool) {
	v, ok := in.attrs[key]
	return v, ok
}

// MustAttr returns the value for key, or the empty string when absent.
// Use Attr when presence matters.
func (in *Instruction) MustAttr(key string) string {
	return in.attrs[key]
}

// Has reports whether the instruction carries the attribute.
func (in *Instruction) Has(key string) bool {
	_, ok := in.attrs[key]
	return ok
}

// Keys returns the attribute keys in the order they appeared on the line.
// The returned slice is a copy.
func (in *Instruction) Keys() []string {
	out := make([]string, len(in.keys))
	copy(out, in.keys)
	return out
}

// Len returns the number of attributes.
func (in *Instruction) Len() int {
	return len(in.keys)
}

// String reconstructs a source line semantically equivalent to the one the
// instruction was parsed from: the command, then each key=value in original
// order, values re-wrapped in backticks when they contain whitespace or are
// empty.
func (in *Instruction) String() string {
	var b strings.Builder
	b.WriteString(in.Command)
	for _, k := range in.keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		v := in.attrs[k]
		if v == "" || strings.ContainsAny(v, " \t") {
			b.WriteByte('`')
			b.WriteString(v)
			b.WriteByte('`')
		} else {
			b.WriteString(v)
		}
	}
	return b.String()
}
