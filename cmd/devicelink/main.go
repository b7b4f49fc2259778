// Command devicelink inspects and exercises device interface definitions.
//
// It loads the interfaces a device declares, prints the introspection
// string, validates payloads the way the device SDK does before publishing
// and prints reconnect backoff sequences and captured event logs.
//
// Usage:
//
//	devicelink [flags] <command> [args]
//
// Flags:
//
//	-config string      YAML configuration file
//	-interfaces string  Interface definitions directory (default "interfaces")
//	-device-id string   Device id stamped on captured events
//	-event-log string   Capture events to this CBOR file
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Print the introspection of a directory of interfaces
//	devicelink -interfaces ./interfaces introspection
//
//	# Validate a datastream value with an explicit timestamp
//	devicelink validate org.example.Values /s1/value 21.5 2024-05-01T10:00:00Z
//
//	# Validate an object aggregate
//	devicelink validate org.example.Geolocation /gps '{"latitude":45.07,"longitude":7.68}'
//
//	# Interactive shell with event capture
//	devicelink -event-log session.dlog shell
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/devicelink/devicelink-go/cmd/devicelink/commands"
	"github.com/devicelink/devicelink-go/pkg/introspection"
	eventlog "github.com/devicelink/devicelink-go/pkg/log"
)

const usage = `devicelink - device interface toolkit

Usage:
  devicelink [flags] <command> [args]

` + commands.Usage + `  shell                                  Interactive shell

Flags:
`

var (
	configFile    string
	interfacesDir string
	deviceID      string
	eventLogPath  string
	logLevel      string
)

func init() {
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.StringVar(&interfacesDir, "interfaces", "", "Interface definitions directory (default \"interfaces\")")
	flag.StringVar(&deviceID, "device-id", "", "Device id stamped on captured events")
	flag.StringVar(&eventLogPath, "event-log", "", "Capture events to this CBOR file")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default \"info\")")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	if cmd == "help" || cmd == "-h" {
		flag.Usage()
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level, _ := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	events, closeEvents, err := setupEventLogger(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open event log: %v", err)
	}

	env := &commands.Env{
		Registry: introspection.New(introspection.Config{
			DeviceID:    cfg.DeviceID,
			Logger:      logger,
			EventLogger: events,
		}),
		Out:     os.Stdout,
		Backoff: cfg.Backoff,
	}

	if needsInterfaces(cmd) {
		if err := env.Registry.AddFromDir(cfg.InterfacesDir); err != nil {
			closeEvents()
			log.Fatalf("Failed to load interfaces: %v", err)
		}
	}

	if cmd == "shell" {
		err = runShell(cfg, env)
	} else {
		err = commands.Run(env, cmd, args)
	}
	closeEvents()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, commands.ErrUnknownCommand) {
			flag.Usage()
		}
		os.Exit(1)
	}
}

// loadConfig merges the config file, if any, with the flags that were set.
func loadConfig() (Config, error) {
	cfg := DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = LoadConfig(configFile); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interfaces":
			cfg.InterfacesDir = interfacesDir
		case "device-id":
			cfg.DeviceID = deviceID
		case "event-log":
			cfg.EventLog = eventLogPath
		case "log-level":
			cfg.LogLevel = logLevel
		}
	})

	return cfg, cfg.Validate()
}

// setupEventLogger mirrors events to slog and, when configured, to a
// capture file. The returned func closes the file.
func setupEventLogger(cfg Config, logger *slog.Logger) (eventlog.Logger, func(), error) {
	console := eventlog.NewSlogAdapter(logger)
	if cfg.EventLog == "" {
		return console, func() {}, nil
	}

	file, err := eventlog.NewFileLogger(cfg.EventLog)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := file.Close(); err != nil {
			logger.Warn("closing event log", slog.Any("error", err))
			return
		}
		written, dropped := file.Stats()
		logger.Debug("event log closed",
			slog.String("path", cfg.EventLog),
			slog.Int("written", written),
			slog.Int("dropped", dropped))
	}
	return eventlog.NewMultiLogger(console, file), closeFn, nil
}

func needsInterfaces(cmd string) bool {
	switch cmd {
	case "deviceid", "backoff", "events":
		return false
	default:
		return true
	}
}

func runShell(cfg Config, env *commands.Env) error {
	log.Println("devicelink shell")
	log.Println("================")
	log.Printf("Interfaces: %s (%d loaded)", cfg.InterfacesDir, env.Registry.Len())
	if cfg.DeviceID != "" {
		log.Printf("Device id: %s", cfg.DeviceID)
	}
	if cfg.EventLog != "" {
		log.Printf("Event log: %s", cfg.EventLog)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sh, err := NewShell(env, cfg.InterfacesDir)
	if err != nil {
		return err
	}
	// Log output goes through readline while the shell runs.
	log.SetOutput(sh.Stderr())
	sh.Run(ctx, cancel)
	return nil
}
