package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/internal/server"
	"github.com/matzehuels/mindcanvas/pkg/notify"
)

// editCommand creates the "edit" command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <map>",
		Short: "Edit a mind map in the terminal",
		Long: `Open a stored mind map in an interactive editor. The selected row is
the selected node: ctrl+c copies it, ctrl+v pastes into it, ctrl+d
duplicates it and delete removes it. Unsaved changes are saved on exit.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			events := &notify.Recorder{}
			s, err := c.openSessionTo(ctx, terminalPrompter, events)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.ws.Load(ctx, args[0]); err != nil {
				return err
			}

			p := tea.NewProgram(NewEditorModel(ctx, s.ws, events), tea.WithContext(ctx), tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m := final.(EditorModel); m.Dirty {
				if err := s.ws.SaveCurrent(ctx); err != nil {
					return err
				}
				printSuccess("Saved %q", s.ws.Current().Name)
			}
			return nil
		},
	}
}

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mind map API over HTTP",
		Long: `Serve the JSON API under /api/v1/mindmaps using the configured store.
With --metrics, Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			gw, err := c.openGateway(ctx, cfg)
			if err != nil {
				return err
			}
			defer gw.Close()

			opts := server.Options{Logger: c.Logger, CORSOrigins: cfg.Server.CORSOrigins}
			if metrics {
				opts.Metrics = server.NewMetrics(appName)
				opts.Metrics.Register()
			}
			fmtAddr := addr
			if fmtAddr != "" && fmtAddr[0] == ':' {
				fmtAddr = "localhost" + fmtAddr
			}
			printInfo("Serving mind maps")
			printKeyValue("Store", cfg.Storage.Backend)
			printKeyValue("API", "http://"+fmtAddr+"/api/v1/mindmaps")
			if metrics {
				printKeyValue("Metrics", "http://"+fmtAddr+"/metrics")
			}
			return server.New(gw, opts).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "serve Prometheus metrics at /metrics")
	return cmd
}
