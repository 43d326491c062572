package domain

// Role identifies the author of a conversation turn.
// It is a closed enumeration: only the three constants below are valid.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known constants.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is one message in a conversation. Turns are never mutated after
// creation; trimming drops whole turns, it does not rewrite them.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is a bounded, ordered log of conversation turns. It is owned
// by a single session and mutated only by that session's turn loop, so
// it carries no locking.
type History struct {
	maxTurns int
	turns    []Turn
}

// DefaultMaxTurns bounds history growth when no limit is configured.
const DefaultMaxTurns = 10

// NewHistory creates an empty history bounded at maxTurns.
func NewHistory(maxTurns int) *History {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &History{maxTurns: maxTurns}
}

// RestoreHistory rebuilds a history from persisted turns, applying the
// trimming policy so the bound holds even if the snapshot was larger.
func RestoreHistory(maxTurns int, turns []Turn) *History {
	h := NewHistory(maxTurns)
	for _, t := range turns {
		h.Append(t.Role, t.Content)
	}
	return h
}

// Append adds a turn and trims to the configured bound. System turns are
// retained preferentially: when over the limit, all system turns are kept
// and only the oldest user/assistant turns are dropped.
func (h *History) Append(role Role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content})

	if len(h.turns) <= h.maxTurns {
		return
	}

	system := make([]Turn, 0, len(h.turns))
	other := make([]Turn, 0, len(h.turns))
	for _, t := range h.turns {
		if t.Role == RoleSystem {
			system = append(system, t)
		} else {
			other = append(other, t)
		}
	}

	if len(system) >= h.maxTurns {
		h.turns = system[:h.maxTurns]
		return
	}

	keep := h.maxTurns - len(system)
	if keep < len(other) {
		other = other[len(other)-keep:]
	}
	h.turns = append(system, other...)
}

// Messages returns a copy of the turns in order.
func (h *History) Messages() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// LastN returns a copy of the most recent n turns.
func (h *History) LastN(n int) []Turn {
	if n <= 0 || len(h.turns) == 0 {
		return nil
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}
	out := make([]Turn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out
}

// Len returns the current turn count.
func (h *History) Len() int {
	return len(h.turns)
}

// UserTurns counts the user turns currently retained.
func (h *History) UserTurns() int {
	n := 0
	for _, t := range h.turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// Clear resets the history to empty. The swap is a single slice
// assignment, so no partial state is observable.
func (h *History) Clear() {
	h.turns = nil
}
