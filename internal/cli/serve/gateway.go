package serve

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplatform/gateway"
	"github.com/rustyeddy/tradeplatform/internal/cli/config"
	"github.com/rustyeddy/tradeplatform/transport"
)

// NewGateway returns the command that runs the REST gateway in front of a
// running engine.
func NewGateway(rc *config.RootConfig) *cobra.Command {
	var (
		addr     string
		upstream string
	)

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Run the HTTP order gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rc.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				c.Gateway.Addr = addr
			}
			if upstream != "" {
				c.Gateway.Upstream = upstream
			}
			log, err := config.Logger(c)
			if err != nil {
				return err
			}
			defer log.Sync()

			router := transport.NewRedialer(c.Gateway.Upstream)
			defer router.Close()

			var auth *gateway.Auth
			if c.Gateway.JWTSecret != "" {
				auth = gateway.NewAuth(c.Gateway.JWTSecret, c.Gateway.JWTIssuer)
			} else {
				log.Warnw("gateway running without authentication")
			}

			timeout, err := c.Service.ParseRequestTimeout()
			if err != nil {
				return err
			}
			h := gateway.NewRouter(gateway.Deps{
				Router:  router,
				Auth:    auth,
				Logger:  log,
				Timeout: timeout,
			})

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			log.Infow("gateway starting", "addr", c.Gateway.Addr, "upstream", c.Gateway.Upstream)
			return run(ctx, c.Gateway.Addr, h, log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides gateway.addr)")
	cmd.Flags().StringVar(&upstream, "upstream", "", "Engine websocket URL (overrides gateway.upstream)")
	return cmd
}
