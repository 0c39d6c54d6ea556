package playtest

import (
	"fmt"
	"strings"

	"github.com/sabi-vn/sabi/internal/engine"
)

// AssertionError reports one failed assertion with enough context to
// debug it from the test log alone.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []engine.Event
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s scene=%s", i+1, ev.Kind, ev.Scene)
		if ev.Character != "" {
			fmt.Fprintf(&buf, " character=%s", ev.Character)
		}
		if ev.Text != "" {
			fmt.Fprintf(&buf, " text=%q", ev.Text)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// checkAssertion dispatches one assertion against the result.
func checkAssertion(result *Result, assertion Assertion) error {
	switch assertion.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, assertion)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, assertion)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, assertion)
	case AssertFinalState:
		return assertFinalState(result, assertion)
	default:
		// validateScenario rejects unknown types at load time.
		return fmt.Errorf("unknown assertion type %q", assertion.Type)
	}
}

// matchEvent reports whether an event matches the assertion's set fields.
// Unset fields match anything.
func matchEvent(ev engine.Event, a Assertion) bool {
	if a.Kind != "" && string(ev.Kind) != a.Kind {
		return false
	}
	if a.Scene != "" && ev.Scene != a.Scene {
		return false
	}
	if a.Character != "" && ev.Character != a.Character {
		return false
	}
	if a.Text != "" && ev.Text != a.Text {
		return false
	}
	return true
}

func assertTraceContains(trace []engine.Event, a Assertion) error {
	for _, ev := range trace {
		if matchEvent(ev, a) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("event kind=%s scene=%s character=%s text=%q", a.Kind, a.Scene, a.Character, a.Text),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that event kinds appear in the given relative
// order. Kinds don't need to be consecutive; intervening events are
// allowed. Each expected kind consumes the earliest unconsumed match.
func assertTraceOrder(trace []engine.Event, a Assertion) error {
	pos := 0
	for _, want := range a.Kinds {
		found := false
		for ; pos < len(trace); pos++ {
			if string(trace[pos].Kind) == want {
				pos++
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
				Actual:   fmt.Sprintf("kind %q not found in order", want),
				Trace:    trace,
			}
		}
	}
	return nil
}

func assertTraceCount(trace []engine.Event, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if matchEvent(ev, a) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("kind %q exactly %d times", a.Kind, a.Count),
			Actual:   fmt.Sprintf("found %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertFinalState(result *Result, a Assertion) error {
	fail := func(field, want, got string) error {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %q", field, want),
			Actual:   fmt.Sprintf("%s = %q", field, got),
			Trace:    result.Trace,
		}
	}

	if a.State != "" && result.State.String() != a.State {
		return fail("state", a.State, result.State.String())
	}
	if a.Speaker != "" && result.Final.Speaker != a.Speaker {
		return fail("speaker", a.Speaker, result.Final.Speaker)
	}
	if a.Line != "" && result.Final.Line != a.Line {
		return fail("line", a.Line, result.Final.Line)
	}
	if a.Background != "" && result.Final.Background != a.Background {
		return fail("background", a.Background, result.Final.Background)
	}
	return nil
}
