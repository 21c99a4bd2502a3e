package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/noborus/ov/oviewer"
)

const helpTitle = "subs help"

// RenderHelp renders every binding of km in columns no wider than width
func RenderHelp(km help.KeyMap, s Styles, width int) string {
	h := help.New()
	h.ShowAll = true
	h.Width = width
	h.Styles.FullKey = s.Key
	h.Styles.FullDesc = s.Desc
	h.Styles.FullSeparator = s.Separator

	var b strings.Builder
	b.WriteString(s.Title.Render(helpTitle))
	b.WriteString("\n")
	b.WriteString(h.View(km))
	b.WriteString("\n")
	return b.String()
}

// ShowHelp shows the key bindings in the ov pager with the terminal released
func (t *Terminal) ShowHelp(km help.KeyMap) error {
	w, _ := t.Size()
	content := RenderHelp(km, t.styles, w)

	if err := t.Release(); err != nil {
		return err
	}
	// Ensure terminal is restored even if ov fails
	defer func() {
		_ = t.Restore() // Ignore error as we're in defer context
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	root.SetConfig(pagerConfig())
	return root.Run()
}

func pagerConfig() oviewer.Config {
	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	configureVimKeyBindings(&config)
	return config
}

// configureVimKeyBindings adds j/k to the pager's line movement
func configureVimKeyBindings(config *oviewer.Config) {
	if config.Keybind == nil {
		config.Keybind = make(map[string][]string)
	}
	config.Keybind["down"] = []string{"Enter", "Down", "ctrl+n", "j"}
	config.Keybind["up"] = []string{"Up", "ctrl+p", "k"}
}
