package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/internal/config"
	"github.com/matzehuels/mindcanvas/pkg/buildinfo"
	"github.com/matzehuels/mindcanvas/pkg/editor"
	"github.com/matzehuels/mindcanvas/pkg/notify"
	"github.com/matzehuels/mindcanvas/pkg/storage"
	"github.com/matzehuels/mindcanvas/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mindcanvas"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	store      string

	// notifier, when set, replaces the terminal event printer. Tests use
	// it to capture events.
	notifier notify.Notifier
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Mindcanvas edits mind maps from the terminal",
		Long: `Mindcanvas is a mind map editor. Mind maps are stored by name in a
local file store, SQLite, Redis or MongoDB, and can be edited node by node,
browsed in a terminal editor, exported as SVG, PNG, DOT, JSON or YAML, or
served over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&c.store, "store", "", "storage backend: memory, file, sqlite, redis, mongo")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.saveCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.edgeCommand())
	root.AddCommand(c.checklistCommand())
	root.AddCommand(c.timelineCommand())
	root.AddCommand(c.resourceCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Access
// =============================================================================

// loadConfig reads the config file and applies the --store override.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if c.store != "" {
		cfg.Storage.Backend = c.store
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	c.Logger.Debug("loaded config", "path", path, "backend", cfg.Storage.Backend)
	return cfg, nil
}

// openGateway opens the configured store. Callers close the gateway.
func (c *CLI) openGateway(ctx context.Context, cfg config.Config) (*storage.Gateway, error) {
	opts := cfg.StorageOptions()
	opts.Logger = c.Logger
	kv, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Backend, err)
	}

	gwOpts := []storage.Option{storage.WithLogger(c.Logger)}
	if cfg.Clipboard.System {
		gwOpts = append(gwOpts, storage.WithClipboardMirror(storage.SystemClipboard{}))
	}
	return storage.NewGateway(kv, gwOpts...), nil
}

// session is an open store plus a workspace on top of it.
type session struct {
	gw     *storage.Gateway
	ws     *workspace.Workspace
	logger *log.Logger
}

func (s *session) Close() {
	s.ws.Close()
	if err := s.gw.Close(); err != nil {
		s.logger.Debug("close store", "err", err)
	}
}

// openSession opens the store and a workspace whose events are printed to
// the terminal, except for the kinds listed in quiet.
func (c *CLI) openSession(ctx context.Context, prompt workspace.Prompter, quiet ...notify.Kind) (*session, error) {
	n := c.notifier
	if n == nil {
		n = newEventPrinter(quiet...)
	}
	return c.openSessionTo(ctx, prompt, n)
}

// openSessionTo is openSession with events delivered to n.
func (c *CLI) openSessionTo(ctx context.Context, prompt workspace.Prompter, n notify.Notifier) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	gw, err := c.openGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ws := workspace.New(gw,
		workspace.WithNotifier(n),
		workspace.WithLogger(c.Logger),
		workspace.WithPrompter(prompt),
	)
	return &session{gw: gw, ws: ws, logger: c.Logger}, nil
}

// edit loads the document name, runs fn against its editor and saves the
// result. Load and save events are not printed.
func (c *CLI) edit(ctx context.Context, name string, fn func(*editor.Editor) error) error {
	s, err := c.openSession(ctx, nil, notify.KindLoaded, notify.KindSaved)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.Load(ctx, name); err != nil {
		return err
	}
	if err := fn(s.ws.Editor()); err != nil {
		return err
	}
	return s.ws.SaveCurrent(ctx)
}
