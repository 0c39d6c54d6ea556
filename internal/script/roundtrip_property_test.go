package script

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genAttrValue generates attribute values: bare identifiers or phrases with
// internal spaces (which authors must backtick-quote).
func genAttrValue() gopter.Gen {
	return gen.OneGenOf(
		gen.Identifier(),
		gen.RegexMatch(`[a-z]{1,8}( [a-z]{1,8}){1,3}`),
	)
}

// TestRoundTripProperty checks the reconstruction property: parsing
// a line and re-rendering the instruction yields a line that parses to the
// same command and attribute set.
func TestRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("parse/render/parse is a fixpoint", prop.ForAll(
		func(command, key1, key2 string, val1, val2 string) bool {
			if key1 == key2 {
				return true // duplicate keys are a parse error, not a round-trip case
			}

			line := command +
				" " + key1 + "=`" + val1 + "`" +
				" " + key2 + "=`" + val2 + "`"

			tokens, err := Tokenize(line, 1)
			if err != nil {
				return false
			}
			first, err := Parse(tokens, 1)
			if err != nil || first == nil {
				return false
			}

			tokens2, err := Tokenize(first.String(), 1)
			if err != nil {
				return false
			}
			second, err := Parse(tokens2, 1)
			if err != nil || second == nil {
				return false
			}

			if first.Command != second.Command || second.Len() != first.Len() {
				return false
			}
			for _, k := range first.Keys() {
				v1, _ := first.Attr(k)
				v2, ok := second.Attr(k)
				if !ok || v1 != v2 {
					return false
				}
			}
			return true
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
		genAttrValue(),
		genAttrValue(),
	))

	properties.TestingRun(t)
}

// TestTokenizeTotalProperty checks that the tokenizer never panics and
// either errors or fully consumes any single-line input.
func TestTokenizeTotalProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("tokenize is total over single lines", prop.ForAll(
		func(line string) bool {
			if strings.ContainsAny(line, "\n\r") {
				return true
			}
			tokens, err := Tokenize(line, 1)
			if err != nil {
				return IsSyntaxError(err, ErrUnterminatedLiteral)
			}
			for _, tok := range tokens {
				if !tok.Literal && strings.ContainsAny(tok.Text, " \t") {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
