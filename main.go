// legalaid - A terminal chat client for legal-aid questions answered by Gemini.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/legalaid-tui/internal/cli"
	"github.com/jeranaias/legalaid-tui/internal/config"
	"github.com/jeranaias/legalaid-tui/internal/gemini"
	"github.com/jeranaias/legalaid-tui/internal/model"
	"github.com/jeranaias/legalaid-tui/internal/orchestrator"
	"github.com/jeranaias/legalaid-tui/internal/ui/chat"
	"github.com/jeranaias/legalaid-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdConfig:
		err = config.LoadDotEnv()
		if err == nil {
			err = cli.HandleConfig(args, os.Stdout, os.Stderr)
		}
	default:
		err = runChat(cmd, args)
	}

	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// modelSetter is implemented by both Gemini transports.
type modelSetter interface {
	orchestrator.Generator
	SetModel(model string)
}

// runChat loads config, builds the client and runs either the TUI or the
// line-oriented chat until the user quits.
func runChat(cmd cli.Command, args cli.Args) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return err
	}
	if args.Model != "" {
		cfg.Gemini.Model = args.Model
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	// Fail before drawing anything if there is no key.
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	useTUI := cmd == cli.CmdTUI && !cfg.UI.Plain && cli.CanRunTUI()

	logger, closeLog, err := setupLogging(cfg.Logging.File, useTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, closeGen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeGen()

	logger.Printf("starting: model=%s transport=%s key=%s tui=%t",
		cfg.Gemini.Model, cfg.Gemini.Transport, gemini.KeyFingerprint(cfg.Gemini.APIKey), useTUI)

	orch := orchestrator.New(model.NewTranscript(), gen, orchestrator.WithLogger(logger))
	theme := styles.NewTheme(cfg.UI.Theme)

	if !useTUI {
		watchConfig(ctx, args, gen, logger, nil)
		style := ""
		if cli.IsStdoutTTY() {
			style = theme.GlamourStyle()
		}
		repl := cli.NewREPL(cli.REPLOptions{
			Orchestrator: orch,
			ModelName:    cfg.Gemini.Model,
			GlamourStyle: style,
			WordWrap:     cfg.UI.WordWrap,
		})
		return repl.Run(ctx)
	}

	m := chat.New(chat.Options{
		Orchestrator:   orch,
		Theme:          theme,
		ModelName:      cfg.Gemini.Model,
		WordWrap:       cfg.UI.WordWrap,
		ShowTimestamps: cfg.UI.ShowTimestamps,
		Context:        ctx,
	})
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	watchConfig(ctx, args, gen, logger, p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running legalaid: %w", err)
	}
	return nil
}

// newGenerator builds the Gemini client selected by [gemini] transport.
func newGenerator(ctx context.Context, cfg *config.Config, logger *log.Logger) (modelSetter, func(), error) {
	switch cfg.Gemini.Transport {
	case config.TransportSDK:
		c, err := gemini.NewSDKClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model,
			gemini.SDKOptions(cfg.Gemini.BaseURL)...)
		if err != nil {
			return nil, nil, err
		}
		c.WithLogger(logger).WithTimeout(cfg.Timeout())
		return c, func() { c.Close() }, nil

	default:
		c := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model).
			WithBaseURL(cfg.Gemini.BaseURL).
			WithTimeout(cfg.Timeout()).
			WithLogger(logger)
		return c, func() {}, nil
	}
}

// watchConfig follows the config file and applies model changes. A model
// given with --model pins the session and disables switching.
func watchConfig(ctx context.Context, args cli.Args, gen modelSetter, logger *log.Logger, p *tea.Program) {
	if args.Model != "" {
		return
	}
	path, err := config.ResolvePath(args.ConfigPath)
	if err != nil {
		logger.Printf("config watch disabled: %v", err)
		return
	}

	onChange := func(cfg *config.Config) {
		gen.SetModel(cfg.Gemini.Model)
		logger.Printf("config reloaded: model=%s", cfg.Gemini.Model)
		if p != nil {
			p.Send(chat.ModelChangedMsg{Name: cfg.Gemini.Model})
		}
	}
	onError := func(err error) {
		logger.Printf("config reload failed: %v", err)
	}

	if err := config.Watch(ctx, path, onChange, onError); err != nil {
		logger.Printf("config watch disabled: %v", err)
	}
}

// =============================================================================
// LOGGING
// =============================================================================

// setupLogging returns the diagnostic logger. Logs never share the
// terminal with the conversation: they go to file or nowhere.
func setupLogging(file string, tui bool) (*log.Logger, func(), error) {
	if file == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}

	if tui {
		f, err := tea.LogToFile(file, "legalaid")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return log.Default(), func() { f.Close() }, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("log directory does not exist: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log.New(f, "legalaid: ", log.LstdFlags), func() { f.Close() }, nil
}
