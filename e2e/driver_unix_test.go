//go:build e2e && unix

package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"
)

const maxOutput = 1 << 20 // 1 MiB of scrollback

var (
	binPath    = "subs_e2e"
	dbToolPath = "subsdb_e2e"
)

// Key constants for better readability
const (
	KeyEnter = "\r"
	KeyTab   = "\t"
	KeyEsc   = "\x1b"
	KeyCtrlL = "\x0c"
	KeyDown  = "j"
	KeyQuit  = "q"
	KeyHelp  = "?"
)

// ANSI escape sequence regex for normalization - covers CSI, OSC, charset, keypad modes
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`, // carriage returns
)

// TUITestFramework drives the subs binary through a pseudo-terminal
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	tty       *os.File
	cmd       *exec.Cmd
	workspace string
	db        string
	done      chan struct{}
	exitErr   error
	out       *outputLog
}

// outputLog keeps the most recent terminal output
type outputLog struct {
	mu  sync.Mutex
	buf []byte
}

func (o *outputLog) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf = append(o.buf, p...)
	if over := len(o.buf) - maxOutput; over > 0 {
		o.buf = append(o.buf[:0], o.buf[over:]...)
	}
	return len(p), nil
}

func (o *outputLog) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return string(o.buf)
}

// NewTUITest creates a framework with a private workspace and database
func NewTUITest(t *testing.T) *TUITestFramework {
	t.Helper()
	ws := t.TempDir()
	return &TUITestFramework{
		t:         t,
		out:       &outputLog{},
		workspace: ws,
		db:        filepath.Join(ws, "subs.db"),
	}
}

// DB runs subsdb against the workspace database and returns its trimmed output
func (tf *TUITestFramework) DB(args ...string) string {
	tf.t.Helper()
	cmd := exec.Command(dbToolPath, append([]string{"-db", tf.db}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		tf.t.Fatalf("subsdb %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// WriteScript stores a Lua script in the workspace and returns its path
func (tf *TUITestFramework) WriteScript(src string) string {
	tf.t.Helper()
	p := filepath.Join(tf.workspace, "init.lua")
	if err := os.WriteFile(p, []byte(src), 0644); err != nil {
		tf.t.Fatalf("write script: %v", err)
	}
	return p
}

// LogPath is where the application writes its log
func (tf *TUITestFramework) LogPath() string {
	return filepath.Join(tf.workspace, "subs.log")
}

// StartApp launches subs on the workspace database in a 40x120 PTY
func (tf *TUITestFramework) StartApp(args ...string) error {
	base := []string{
		"-db", tf.db,
		"-log", tf.LogPath(),
		"-config", filepath.Join(tf.workspace, "config.toml"),
	}
	tf.cmd = exec.Command(binPath, append(base, args...)...)

	// Set per-process environment variables
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C.UTF-8",
		"HOME="+tf.workspace, // isolate $HOME
		"SUBS_CONFIG_DIR="+tf.workspace,
		"XDG_STATE_HOME="+tf.workspace,
	)

	ptyFile, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}
	tf.pty = ptyFile
	tf.tty = tty
	tf.cmd.Stdout = tty
	tf.cmd.Stdin = tty
	tf.cmd.Stderr = tty
	// Own session so size changes deliver SIGWINCH
	tf.cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := tf.Resize(40, 120); err != nil {
		return err
	}
	if err := tf.cmd.Start(); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to start command: %w", err)
	}
	tf.done = make(chan struct{})
	go func() {
		tf.exitErr = tf.cmd.Wait()
		close(tf.done)
	}()

	tf.startReader()
	return nil
}

// Resize changes the PTY size
func (tf *TUITestFramework) Resize(rows, cols uint16) error {
	if err := pty.Setsize(tf.pty, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		return fmt.Errorf("failed to set pty size: %w", err)
	}
	return nil
}

// startReader copies PTY output into the log until the PTY closes
func (tf *TUITestFramework) startReader() {
	go func() { _, _ = io.Copy(tf.out, tf.pty) }()
}

// SendKeys sends keystrokes to the application
func (tf *TUITestFramework) SendKeys(keys string) {
	tf.t.Helper()
	if _, err := tf.pty.Write([]byte(keys)); err != nil {
		tf.t.Fatalf("send keys %q: %v", keys, err)
	}
}

// Ready waits for the first full draw of the source pane
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.SeePlain("[untagged]")
}

// SeePlain waits for specific plain text to appear (normalized output)
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool { return strings.Contains(s, text) }, 5*time.Second)
}

// SeeAfter waits for text to appear in output produced after mark
func (tf *TUITestFramework) SeeAfter(mark int, text string) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return len(s) > mark && strings.Contains(s[mark:], text)
	}, 5*time.Second)
}

// Mark returns the current length of the normalized output
func (tf *TUITestFramework) Mark() int {
	return len(tf.SnapshotPlain())
}

// WaitFor waits for a predicate over the normalized output
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.SnapshotPlain()) {
			return true
		}
		if time.Now().After(deadline) {
			tf.DumpTail(4096)
			return false
		}
		time.Sleep(25 * time.Millisecond) // simple, reliable polling; tests only
	}
}

// WaitExit waits for the process to end and returns its exit error
func (tf *TUITestFramework) WaitExit(timeout time.Duration) (bool, error) {
	select {
	case <-tf.done:
		return true, tf.exitErr
	case <-time.After(timeout):
		return false, nil
	}
}

// SnapshotPlain returns the output so far with ANSI sequences removed
func (tf *TUITestFramework) SnapshotPlain() string {
	return ansiRe.ReplaceAllString(tf.out.String(), "")
}

// DumpTail logs the last n bytes of normalized output
func (tf *TUITestFramework) DumpTail(n int) {
	s := tf.SnapshotPlain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	tf.t.Logf("--- tail ---\n%s", s)
}

// Cleanup closes the PTY and terminates the application
func (tf *TUITestFramework) Cleanup() {
	// Close PTY first to deliver SIGHUP to child process
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.tty != nil {
		_ = tf.tty.Close()
		tf.tty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		if tf.done != nil {
			<-tf.done
		}
		tf.cmd = nil
	}
}
