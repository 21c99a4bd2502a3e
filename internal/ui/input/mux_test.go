package input

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subs/internal/domain"
	"subs/internal/eventbus"
)

func TestNextPrefersLoopbackThenResizeThenKeys(t *testing.T) {
	keys := make(chan int, 1)
	resized := make(chan struct{}, 1)
	bus := eventbus.New(4)
	mux := NewMultiplexer(keys, resized, bus)

	keys <- 'j'
	resized <- struct{}{}
	require.NoError(t, bus.Publish(domain.TaskDoneEvent(func() error { return nil })))

	assert.Equal(t, domain.EventTaskDone, mux.Next().Type)
	assert.Equal(t, domain.EventResize, mux.Next().Type)

	ev := mux.Next()
	assert.Equal(t, domain.EventKey, ev.Type)
	assert.Equal(t, 'j', rune(ev.Key))
}

func TestNextReportsClosedSources(t *testing.T) {
	t.Run("keys", func(t *testing.T) {
		keys := make(chan int)
		close(keys)
		mux := NewMultiplexer(keys, nil, eventbus.New(1))

		ev := mux.Next()
		assert.Equal(t, domain.EventError, ev.Type)
		assert.ErrorIs(t, ev.Err, ErrInputClosed)
	})

	t.Run("loopback", func(t *testing.T) {
		bus := eventbus.New(1)
		bus.Close()
		mux := NewMultiplexer(make(chan int), nil, bus)

		ev := mux.Next()
		assert.Equal(t, domain.EventError, ev.Type)
		assert.ErrorIs(t, ev.Err, eventbus.ErrClosed)
	})
}

func TestNextPassesErrorRecordsThrough(t *testing.T) {
	bus := eventbus.New(1)
	mux := NewMultiplexer(make(chan int), nil, bus)
	boom := errors.New("task failed")

	require.NoError(t, bus.Publish(domain.ErrorEvent(boom)))

	ev := mux.Next()
	assert.Equal(t, domain.EventError, ev.Type)
	assert.ErrorIs(t, ev.Err, boom)
}

func TestFromTea(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []int
	}{
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, []int{'j'}},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")}, []int{'a', 'b'}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, []int{KeyEnter}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, []int{KeyTab}},
		{"shift tab", tea.KeyMsg{Type: tea.KeyShiftTab}, []int{KeyBackTab}},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, []int{KeyEsc}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, []int{KeyBackspace}},
		{"ctrl+l", tea.KeyMsg{Type: tea.KeyCtrlL}, []int{Ctrl('l')}},
		{"page down", tea.KeyMsg{Type: tea.KeyPgDown}, []int{KeyPgDn}},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, []int{' '}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromTea(tt.msg))
		})
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "ctrl+r", Name(Ctrl('r')))
	assert.Equal(t, "x", Name('x'))
	assert.Equal(t, "shift+tab", Name(KeyBackTab))
}
