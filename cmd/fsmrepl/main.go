// fsmrepl loads a YAML machine definition and drives it interactively:
// pick a target state, watch the published outcome, repeat. Useful for
// exploring a transition table before wiring it into an application.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"facette.io/natsort"

	"github.com/amp-labs/amp-fsm/cli"
	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/machine"
	"github.com/amp-labs/amp-fsm/telemetry"
)

const quitChoice = "[quit]"

func main() {
	configPath := flag.String("config", "", "path to a YAML machine definition")
	jsonLogs := flag.Bool("json", false, "emit JSON logs")
	debug := flag.Bool("debug", false, "enable debug logging")
	otelEndpoint := flag.String("otel-endpoint", "", "OTLP trace endpoint (tracing disabled when empty)")
	flag.Parse()

	if *configPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}

	logger.ConfigureLoggingWithOptions(logger.Options{
		JSON:        *jsonLogs,
		MinLevel:    level,
		LegacyLevel: slog.LevelInfo,
		Output:      os.Stderr,
	})

	if err := run(context.Background(), *configPath, *otelEndpoint); err != nil {
		slog.Error("fsmrepl failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, otelEndpoint string) error {
	if otelEndpoint != "" {
		err := telemetry.Initialize(ctx, &telemetry.Config{
			ServiceName: "fsmrepl",
			Environment: "local",
			Endpoint:    otelEndpoint,
			Enabled:     true,
		})
		if err != nil {
			return err
		}

		defer func() { _ = telemetry.Shutdown(ctx) }()
	}

	cfg, err := machine.LoadConfig(configPath)
	if err != nil {
		return err
	}

	m := cfg.Build(machine.WithLogger[string](slog.Default()))

	m.OnSuccess().Subscribe(func(e machine.Success[string]) {
		fmt.Printf("ok: %s -> %s  context=%v\n", e.From, e.To, e.Context)
	})
	m.OnFailure().Subscribe(func(e machine.Failure[string]) {
		fmt.Printf("rejected (%s): %s -> %s\n", e.Kind, e.From, e.To)
	})

	choices := stateChoices(cfg)

	for {
		fmt.Printf("current state: %s\n", m.State())

		choice, err := cli.Select("Transition to", choices)
		if err != nil {
			return err
		}

		if choice == quitChoice {
			return nil
		}

		m.Attempt(ctx, choice, nil)
	}
}

// stateChoices collects every state mentioned by the config, naturally
// sorted, with a quit entry appended.
func stateChoices(cfg *machine.Config) []string {
	seen := map[string]bool{cfg.InitialState: true}
	states := []string{cfg.InitialState}

	add := func(name string) {
		if !seen[name] {
			seen[name] = true

			states = append(states, name)
		}
	}

	for _, rule := range cfg.Rules {
		for _, state := range rule.From {
			add(state)
		}

		for _, state := range rule.To {
			add(state)
		}
	}

	natsort.Sort(states)

	return append(states, quitChoice)
}
