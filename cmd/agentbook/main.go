// Command agentbook runs an autonomous forum agent: an LLM-driven
// participant that browses, posts, replies, and votes on a bot-book
// instance, with durable memory and a slowly evolving personality.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/agentbook/agent"
	"github.com/tailored-agentic-units/agentbook/config"
	"github.com/tailored-agentic-units/agentbook/cycle"
	"github.com/tailored-agentic-units/agentbook/forum"
	"github.com/tailored-agentic-units/agentbook/kernel"
	"github.com/tailored-agentic-units/agentbook/memory"
	"github.com/tailored-agentic-units/agentbook/observability"
	"github.com/tailored-agentic-units/agentbook/personality"
	"github.com/tailored-agentic-units/agentbook/runtime"
	"github.com/tailored-agentic-units/agentbook/session"
	"github.com/tailored-agentic-units/agentbook/store"
	"github.com/tailored-agentic-units/agentbook/tools"
)

var (
	configPath string
	logFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "agentbook",
	Short:         "Autonomous bot-book forum agent",
	Long:          "An LLM-driven forum participant with durable memory, weighted cycle strategies, and a gated evolving personality.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Mirror structured logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd, chatCmd, memoryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs, built once per invocation.
type app struct {
	cfg      config.Config
	rt       *runtime.Runtime
	orch     *cycle.Orchestrator
	docs     store.Store
	mem      *memory.Store
	observer observability.Observer
	logClose func() error
}

// newApp loads configuration and wires the full runtime.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	observer, logClose, err := newObserver(&cfg)
	if err != nil {
		return nil, err
	}

	docs, err := store.New(&cfg.Store)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()

	mem := memory.NewStore()
	if err := mem.Load(ctx, docs); err != nil {
		return nil, err
	}

	persona, err := personality.NewManager(ctx, docs)
	if err != nil {
		return nil, err
	}

	llm, err := agent.New(&cfg.Agent)
	if err != nil {
		return nil, err
	}

	client := forum.NewClient(&cfg.Forum)
	registry := tools.NewRegistry()
	if err := forum.Register(registry, client, mem); err != nil {
		return nil, err
	}

	k := kernel.New(llm, registry,
		kernel.WithObserver(observer),
		kernel.WithMaxRounds(cfg.MaxRounds),
	)

	rt, err := runtime.New(runtime.Config{
		Agent:           llm,
		Kernel:          k,
		Memory:          mem,
		Persona:         persona,
		Session:         session.NewMemorySession(),
		Docs:            docs,
		ForumURL:        client.BaseURL(),
		Observer:        observer,
		HistoryLimit:    cfg.HistoryLimit,
		ContextMessages: cfg.ContextMessages,
		Model:           cfg.Agent.Model,
		Pricing:         cfg.Pricing,
	})
	if err != nil {
		return nil, err
	}
	if err := rt.RestoreHistory(ctx); err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		rt:       rt,
		orch:     newOrchestrator(rt, &cfg, observer),
		docs:     docs,
		mem:      mem,
		observer: observer,
		logClose: logClose,
	}, nil
}

func newOrchestrator(rt *runtime.Runtime, cfg *config.Config, observer observability.Observer) *cycle.Orchestrator {
	return cycle.New(rt,
		cycle.WithInterval(secondsDuration(cfg.AutoIntervalSeconds)),
		cycle.WithWarmup(secondsDuration(cfg.WarmupSeconds)),
		cycle.WithObserver(observer),
	)
}

// newObserver builds the structured-log observer: stderr always, fanned
// out to a log file when configured.
func newObserver(cfg *config.Config) (observability.Observer, func() error, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	closeFn := func() error { return nil }

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closeFn = f.Close
	}

	logger := slog.New(slogmulti.Fanout(handlers...))
	return observability.NewSlogObserver(logger), closeFn, nil
}

func (a *app) close() {
	if closer, ok := a.docs.(io.Closer); ok {
		_ = closer.Close()
	}
	_ = a.logClose()
}
