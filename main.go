package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"subs/internal/config"
	"subs/internal/domain"
	"subs/internal/eventbus"
	"subs/internal/logging"
	"subs/internal/scripting"
	"subs/internal/store"
	"subs/internal/ui"
	"subs/internal/ui/coordinator"
	"subs/internal/ui/display"
	"subs/internal/ui/input"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line arguments
	var configPath, dbPath, logPath, scriptPath string
	flag.StringVar(&configPath, "config", "", "Path to the configuration file")
	flag.StringVar(&dbPath, "db", "", "Path to the subscription database")
	flag.StringVar(&logPath, "log", "", "Path to the log file")
	flag.StringVar(&scriptPath, "script", "", "Lua script loaded at startup")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	if logPath != "" {
		cfg.LogFile = logPath
	}
	if scriptPath != "" {
		cfg.Script = scriptPath
	}
	if cfg.NoColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// Set up logging
	sink := logging.NewSink(cfg.LogCapacity)
	logFile, err := logging.Setup(cfg.LogFile, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		return 1
	}
	defer logFile.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return 1
	}
	defer db.Close()
	log.Printf("Opened database %s", db.Path())

	engine := scripting.NewEngine()
	defer engine.Close()
	if err := loadScript(engine, cfg.Script, scriptPath != ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading script: %v\n", err)
		return 1
	}

	terminal := ui.NewTerminal(ui.NewStyles(cfg.Theme))
	bus := eventbus.New(eventbus.DefaultCapacity)

	c := coordinator.New(ctx, coordinator.Options{
		Screen:   display.NewScreen(terminal),
		Events:   input.NewMultiplexer(terminal.Keys(), terminal.Resized(), bus),
		Bus:      bus,
		Sink:     sink,
		Store:    db,
		Terminal: terminal,
		Layout:   engine.LayoutOr(coordinator.FixedLayout(cfg.Layout)),
		Opener:   engine,
		Hook:     engine,
	})
	engine.Bind(c)

	// Handle termination signals by asking the loop to quit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			log.Printf("Received %v, quitting", sig)
			if err := bus.Publish(domain.QuitEvent()); err != nil && !errors.Is(err, eventbus.ErrClosed) {
				log.Printf("Failed to request quit: %v", err)
			}
		case <-ctx.Done():
		}
	}()

	log.Printf("Starting UI...")
	terminal.Start()
	runErr := c.Run()
	if err := c.Close(); err != nil && !errors.Is(err, runErr) {
		log.Printf("Error shutting down: %v", err)
	}
	if err := terminal.Stop(); err != nil {
		log.Printf("Error stopping terminal: %v", err)
	}

	// The screen is gone; whatever the loop did not draw goes to stderr
	log.SetOutput(logFile)
	if text := sink.Take(); text != "" {
		fmt.Fprint(os.Stderr, text)
	}
	if runErr != nil {
		log.Printf("Error running program: %v", runErr)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
		return 1
	}
	log.Printf("UI exited normally")
	return 0
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist
func loadConfig(path string) (*config.Config, error) {
	configSvc := config.NewConfigService()
	if path != "" {
		configSvc = config.NewConfigServiceAt(path)
	}
	cfg, err := configSvc.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadScript runs the init script. A missing default script is fine; a
// missing script named on the command line is not.
func loadScript(engine *scripting.Engine, path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read script: %w", err)
	}
	if err := engine.DoFile(path); err != nil {
		return err
	}
	log.Printf("Loaded script %s", path)
	return nil
}
