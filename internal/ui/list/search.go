package list

import (
	"strings"

	"subs/internal/ui/input"
)

// Search is the incremental search attached to a list. A query starting
// with '!' matches rows that do not contain the rest of it.
type Search struct {
	buf         []rune
	inputActive bool
	active      bool
}

// Reset starts a new search with an empty query
func (s *Search) Reset() {
	s.buf = s.buf[:0]
	s.inputActive = true
	s.active = true
}

// Cancel clears the search entirely
func (s *Search) Cancel() {
	s.buf = s.buf[:0]
	s.inputActive = false
	s.active = false
}

// AddChar appends c to the query
func (s *Search) AddChar(c rune) {
	s.buf = append(s.buf, c)
}

// EraseChar removes the last character. Erasing the last one ends input
// but keeps the search active.
func (s *Search) EraseChar() {
	if len(s.buf) > 0 {
		s.buf = s.buf[:len(s.buf)-1]
	}
	if len(s.buf) == 0 {
		s.inputActive = false
	}
}

// IsEmpty reports whether the query is empty
func (s *Search) IsEmpty() bool { return len(s.buf) == 0 }

// IsActive reports whether a search is in progress or committed
func (s *Search) IsActive() bool { return s.active }

// IsInputActive reports whether keys are being typed into the query
func (s *Search) IsInputActive() bool { return s.inputActive }

// Query returns the query as typed
func (s *Search) Query() string { return string(s.buf) }

// Matches reports whether line matches the query
func (s *Search) Matches(line string) bool {
	q := string(s.buf)
	if rest, ok := strings.CutPrefix(q, "!"); ok {
		return !strings.Contains(line, rest)
	}
	return strings.Contains(line, q)
}

// NextMatch selects the first matching row after from. It never wraps and
// leaves the list alone when nothing matches.
func (s *Search) NextMatch(l *List, from int) (bool, error) {
	for i := max(from+1, 0); i < l.Len(); i++ {
		if s.Matches(l.Line(i)) {
			return true, l.MoveTo(i)
		}
	}
	return false, nil
}

// HandleKey feeds a key typed while input is active. Control keys other
// than Enter and Backspace are left to the caller.
func (s *Search) HandleKey(l *List, code int) (bool, error) {
	switch {
	case code == input.KeyEnter:
		s.inputActive = false
		if s.IsEmpty() {
			s.active = false
			return true, nil
		}
		_, err := s.NextMatch(l, l.Selected())
		return true, err
	case code == input.KeyBackspace || code == input.KeyDel:
		s.EraseChar()
		return true, nil
	case input.IsControl(code):
		return false, nil
	}
	s.AddChar(rune(code))
	return true, nil
}
