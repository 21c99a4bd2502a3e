package scripting

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subs/internal/domain"
	"subs/internal/ui/coordinator"
	"subs/internal/ui/display"
)

type fakeBinding struct {
	messages []string
	current  int64
	hasCur   bool
	ids      []int64
	shell    []string
}

func (b *fakeBinding) PostMessage(text string) { b.messages = append(b.messages, text) }

func (b *fakeBinding) CurrentVideo() (int64, bool) { return b.current, b.hasCur }

func (b *fakeBinding) VideoIDs() []int64 { return b.ids }

func (b *fakeBinding) ShellMode(fn func() error) error {
	b.shell = append(b.shell, "release")
	err := fn()
	b.shell = append(b.shell, "restore")
	return err
}

func newEngine(t *testing.T, src string) (*Engine, *fakeBinding) {
	t.Helper()
	e := NewEngine()
	t.Cleanup(e.Close)
	b := &fakeBinding{}
	e.Bind(b)
	if src != "" {
		require.NoError(t, e.DoString(src))
	}
	return e, b
}

func TestLayoutFromTable(t *testing.T) {
	e, _ := newEngine(t, `
function calc_pos(lines, cols, n_tags)
  local h = n_tags + 8
  return {
    message = {x = 10, y = 5, w = 60, h = 10},
    source_bar = {0, 0, 32, h},
    subs_bar = {x = 0, y = h, w = 32, h = lines - h},
    videos = {x = 32, y = 0, w = cols - 32, h = lines},
  }
end`)
	require.True(t, e.HasLayout())

	l, err := e.Layout(24, 80, 2)
	require.NoError(t, err)
	assert.Equal(t, coordinator.Layout{
		Message: display.Rect{X: 10, Y: 5, W: 60, H: 10},
		Source:  display.Rect{X: 0, Y: 0, W: 32, H: 10},
		Subs:    display.Rect{X: 0, Y: 10, W: 32, H: 14},
		Videos:  display.Rect{X: 32, Y: 0, W: 48, H: 24},
	}, l)
	assert.Zero(t, e.L.GetTop())
}

func TestLayoutFromSixteenValues(t *testing.T) {
	e, _ := newEngine(t, `
function calc_pos(lines, cols, n_tags)
  return 1, 2, 3, 4,  0, 0, 20, 9,  0, 9, 20, lines - 9,  20, 0, cols - 20, lines
end`)
	l, err := e.Layout(30, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, display.Rect{X: 1, Y: 2, W: 3, H: 4}, l.Message)
	assert.Equal(t, display.Rect{X: 0, Y: 9, W: 20, H: 21}, l.Subs)
	assert.Equal(t, display.Rect{X: 20, Y: 0, W: 80, H: 30}, l.Videos)
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"too few values", `function calc_pos() return 1, 2, 3 end`, "expected 16 values"},
		{"missing part", `function calc_pos() return {message = {1, 2, 3, 4}} end`, "missing source_bar"},
		{"bad field", `function calc_pos() return {message = {x = "a"}} end`, "field x"},
		{"not a table", `function calc_pos() return "x" end`, "expected a table"},
		{"runtime error", `function calc_pos() error("nope") end`, "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t, tt.src)
			_, err := e.Layout(24, 80, 0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLayoutOrFallsBack(t *testing.T) {
	e, _ := newEngine(t, "")
	_, err := e.Layout(24, 80, 0)
	assert.ErrorIs(t, err, ErrNoLayout)

	called := false
	layout := e.LayoutOr(func(lines, cols, nTags int) (coordinator.Layout, error) {
		called = true
		return coordinator.Layout{}, nil
	})
	_, err = layout(24, 80, 0)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestVideosInput(t *testing.T) {
	e, b := newEngine(t, `
function videos_input(key)
  if key == string.byte("x") then
    curses:add_message("x pressed on " .. curses.videos:cur_item())
    return curses.KEY_HANDLED
  elseif key == string.byte("e") then
    return curses.KEY_ERROR
  elseif key == string.byte("z") then
    error("broken hook")
  end
  return curses.KEY_IGNORED
end`)
	b.current, b.hasCur = 42, true

	handled, err := e.VideosInput('x')
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"x pressed on 42"}, b.messages)

	handled, err = e.VideosInput('y')
	require.NoError(t, err)
	assert.False(t, handled)

	_, err = e.VideosInput('e')
	assert.Error(t, err)

	_, err = e.VideosInput('z')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken hook")
	assert.Zero(t, e.L.GetTop())
}

func TestVideosInputWithoutHook(t *testing.T) {
	e, _ := newEngine(t, "")
	handled, err := e.VideosInput('x')
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestItemsIterator(t *testing.T) {
	e, b := newEngine(t, "")
	b.ids = []int64{5, 9, 12}
	require.NoError(t, e.DoString(`
seen = {}
for i, id in curses.videos:items() do
  seen[#seen + 1] = i .. "=" .. id
end
curses.add_message(table.concat(seen, ","))`))
	assert.Equal(t, []string{"1=5,2=9,3=12"}, b.messages)
}

func TestCurItemWithoutVideos(t *testing.T) {
	e, b := newEngine(t, "")
	require.NoError(t, e.DoString(`curses.add_message(tostring(curses.videos:cur_item()))`))
	assert.Equal(t, []string{"nil"}, b.messages)
}

func TestShellModeAlwaysRestores(t *testing.T) {
	e, b := newEngine(t, "")
	require.NoError(t, e.DoString(`curses.shell_mode(function() curses.add_message("inside") end)`))
	assert.Equal(t, []string{"release", "restore"}, b.shell)
	assert.Equal(t, []string{"inside"}, b.messages)

	b.shell = nil
	err := e.DoString(`curses.shell_mode(function() error("boom") end)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"release", "restore"}, b.shell)
}

func TestUnboundEngineRaises(t *testing.T) {
	e := NewEngine()
	defer e.Close()
	err := e.DoString(`curses.add_message("hi")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestOpen(t *testing.T) {
	e, b := newEngine(t, `
function open(type, ext_id)
  curses.add_message(type .. ":" .. ext_id)
end`)
	require.NoError(t, e.Open(domain.VideoRef{ID: 1, Type: domain.SubYouTube, ExtID: "abc"}))
	assert.Equal(t, []string{"2:abc"}, b.messages)
}

func TestOpenWithoutOpenerLogs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	e, _ := newEngine(t, "")
	require.NoError(t, e.Open(domain.VideoRef{ID: 1}))
	assert.Contains(t, buf.String(), "no opener defined")
}

func TestDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function calc_pos() return nil end`), 0o644))
	e, _ := newEngine(t, "")
	require.NoError(t, e.DoFile(path))
	assert.True(t, e.HasLayout())

	err := e.DoFile(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoLayout))
}
