// Package input turns terminal input into key codes and merges keys, resize
// notifications and loopback records into one event stream.
package input

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Key codes. Printable characters are their own code and control keys use
// their ASCII value; keys without one are numbered from 0x100.
const (
	KeyTab   = '\t'
	KeyEnter = '\n'
	KeyEsc   = 0x1b
	KeyDel   = 0x7f

	KeyBackspace = 0x100 + iota
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyBackTab
)

// Ctrl returns the code of the control key for c
func Ctrl(c byte) int {
	return int(c) & 0x1f
}

// IsDigit reports whether code is '0' to '9'
func IsDigit(code int) bool {
	return code >= '0' && code <= '9'
}

// IsControl reports whether code is not a printable character
func IsControl(code int) bool {
	return code < 0x20 || code == KeyDel || code >= KeyBackspace && code <= KeyBackTab
}

// Name returns a short readable name for code, used in logs and by scripts
func Name(code int) string {
	switch code {
	case KeyTab:
		return "tab"
	case KeyEnter:
		return "enter"
	case KeyEsc:
		return "esc"
	case KeyDel, KeyBackspace:
		return "backspace"
	case KeyDelete:
		return "delete"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyPgUp:
		return "pgup"
	case KeyPgDn:
		return "pgdown"
	case KeyBackTab:
		return "shift+tab"
	case ' ':
		return "space"
	}
	if code > 0 && code < 0x20 {
		return "ctrl+" + string(rune('a'+code-1))
	}
	return string(rune(code))
}

// FromTea translates a bubbletea key message into key codes. Pasted text
// yields one code per rune.
func FromTea(msg tea.KeyMsg) []int {
	switch msg.Type {
	case tea.KeyRunes:
		codes := make([]int, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			codes = append(codes, int(r))
		}
		return codes
	case tea.KeySpace:
		return []int{' '}
	case tea.KeyEnter:
		return []int{KeyEnter}
	case tea.KeyTab:
		return []int{KeyTab}
	case tea.KeyShiftTab:
		return []int{KeyBackTab}
	case tea.KeyEsc:
		return []int{KeyEsc}
	case tea.KeyBackspace:
		return []int{KeyBackspace}
	case tea.KeyDelete:
		return []int{KeyDelete}
	case tea.KeyUp:
		return []int{KeyUp}
	case tea.KeyDown:
		return []int{KeyDown}
	case tea.KeyLeft:
		return []int{KeyLeft}
	case tea.KeyRight:
		return []int{KeyRight}
	case tea.KeyHome:
		return []int{KeyHome}
	case tea.KeyEnd:
		return []int{KeyEnd}
	case tea.KeyPgUp:
		return []int{KeyPgUp}
	case tea.KeyPgDown:
		return []int{KeyPgDn}
	}
	if msg.Type >= 0 && msg.Type < 0x20 {
		return []int{int(msg.Type)}
	}
	return nil
}
