package engine

// HistoryEntry records one dialogue line the player has seen, along with
// the cursor position of the instruction that produced it. The position
// is what makes Rewind possible: re-entering at that cursor replays the
// same line.
type HistoryEntry struct {
	Cursor    Cursor `json:"cursor"`
	Character string `json:"character,omitempty"`
	Text      string `json:"text"`
}

// history is the append-only dialogue log for a playthrough.
// Owned by the Engine; never mutated outside its methods.
type history struct {
	entries []HistoryEntry
}

func (h *history) push(e HistoryEntry) {
	h.entries = append(h.entries, e)
}

// pop removes and returns the most recent entry.
// The second return is false when the log is empty.
func (h *history) pop() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

func (h *history) len() int { return len(h.entries) }

// snapshot returns a copy safe to hand to callers.
func (h *history) snapshot() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// tail returns up to n most recent entries, oldest first.
func (h *history) tail(n int) []HistoryEntry {
	if n <= 0 || len(h.entries) == 0 {
		return nil
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]HistoryEntry, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}
