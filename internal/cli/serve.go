package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/labelsheet/pkg/config"
	"github.com/matzehuels/labelsheet/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, secret string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve label sheets over HTTP",
		Long: `Start an HTTP server that generates label sheets on request.

POST /v1/sheets allocates the next range and returns the document. All
requests share one counter and are served one run at a time. When a JWT
secret is configured, /v1 requires a bearer token signed with it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("jwt-secret") {
				cfg.Server.JWTSecret = secret
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			store, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			renderer, err := newRenderer(cfg)
			if err != nil {
				return err
			}
			srv := server.New(store, renderer, optionsFrom(cfg), server.Config{
				Addr:      cfg.Server.Addr,
				JWTSecret: cfg.Server.JWTSecret,
				Logger:    logger,
			})
			srv.SetBackend(cfg.Store.Backend)

			if cfg.Server.JWTSecret == "" {
				printWarning("no JWT secret configured, /v1 is open")
			}
			printInfo("Listening on %s", StyleValue.Render("http://"+cfg.Server.Addr))
			return srv.ListenAndServe(ctx)
		},
	}

	config.AddSheetFlags(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", config.DefaultServerAddr, "listen address")
	cmd.Flags().StringVar(&secret, "jwt-secret", "", "HMAC secret for bearer tokens (env "+config.EnvPrefix+"JWT_SECRET)")
	return cmd
}
