// Package cli wires configuration, storage and the session into the
// focusflow command tree. With no subcommand the terminal UI starts.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusflow/internal/app"
	"github.com/sandeepkv93/focusflow/internal/breakdown"
	"github.com/sandeepkv93/focusflow/internal/config"
	"github.com/sandeepkv93/focusflow/internal/storage"
	"github.com/sandeepkv93/focusflow/internal/tasks"
	"github.com/sandeepkv93/focusflow/internal/timer"
)

// Deps are the process edges a command tree talks to. A nil Generator means
// the Gemini client is built from the configured API key.
type Deps struct {
	Out       io.Writer
	Err       io.Writer
	Generator breakdown.Generator
}

type globalFlags struct {
	configPath string
	storePath  string
	backend    string
}

func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "focusflow",
		Short: "Pomodoro timer with a task list and AI task breakdown",
		Long: `focusflow keeps a task list next to a pomodoro timer.

Focus a task and it is completed when the next work session ends. Large tasks
can be broken down into subtasks by a Gemini model when an API key is set
(FOCUSFLOW_API_KEY, GEMINI_API_KEY or API_KEY).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(deps.Out)
	root.SetErr(deps.Err)

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&flags.storePath, "store", "", "task store path")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "task store backend: sqlite, file or memory")

	root.AddCommand(
		newAddCommand(flags, deps),
		newListCommand(flags, deps),
		newBreakdownCommand(flags, deps),
		newConfigCommand(flags),
	)
	return root
}

// Execute runs the command tree against the real process streams.
func Execute(version string) error {
	root := NewRootCommand(Deps{})
	root.Version = version
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig resolves file, environment and flags, in that order.
func loadConfig(flags *globalFlags) (config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	cfg = config.FromEnv(cfg)
	if flags.backend != "" {
		cfg.Storage.Backend = storage.Backend(strings.ToLower(flags.backend))
		if flags.storePath == "" && cfg.Storage.Backend != storage.BackendMemory {
			cfg.Storage.Path = config.DefaultStorePath(cfg.Storage.Backend)
		}
	}
	if flags.storePath != "" {
		cfg.Storage.Path = flags.storePath
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type runtime struct {
	cfg     config.Config
	kv      storage.KV
	session *app.Session
}

func openRuntime(ctx context.Context, cfg config.Config, deps Deps, opts ...app.Option) (*runtime, error) {
	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	machine, err := timer.New(cfg.Durations())
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("timer: %w", err)
	}
	store := tasks.New(ctx, storage.NewTaskPersistence(kv, cfg.Storage.Key))

	var client *breakdown.Client
	if deps.Generator != nil {
		client = breakdown.New(deps.Generator)
	} else {
		client = breakdown.NewFromAPIKey(ctx, cfg.Breakdown.APIKey, cfg.Breakdown.Model)
	}
	return &runtime{
		cfg:     cfg,
		kv:      kv,
		session: app.New(store, machine, client, opts...),
	}, nil
}

func (r *runtime) Close(ctx context.Context) error {
	flushErr := r.session.Close(ctx)
	if err := r.kv.Close(); err != nil && flushErr == nil {
		return fmt.Errorf("close task store: %w", err)
	}
	return flushErr
}

func withRuntime(ctx context.Context, flags *globalFlags, deps Deps, fn func(*runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	rt, err := openRuntime(ctx, cfg, deps)
	if err != nil {
		return err
	}
	runErr := fn(rt)
	if err := rt.Close(ctx); err != nil {
		log.Printf("focusflow: %v", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
