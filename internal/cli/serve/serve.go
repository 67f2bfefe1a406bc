package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradeplatform/internal/cli/config"
	"github.com/rustyeddy/tradeplatform/transport"
)

// New returns the command that runs the order engine behind the websocket
// transport.
func New(rc *config.RootConfig) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the order processing engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rc.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				c.Transport.Addr = addr
			}
			log, err := config.Logger(c)
			if err != nil {
				return err
			}
			defer log.Sync()

			stack, err := config.BuildEngine(c, log)
			if err != nil {
				return err
			}
			defer stack.Close()

			srv := transport.NewServer(stack.Engine, log)
			mux := http.NewServeMux()
			mux.Handle(c.Transport.Path, srv)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			log.Infow("engine starting",
				"addr", c.Transport.Addr,
				"path", c.Transport.Path,
				"ledger", c.Ledger.Driver,
				"posting", c.Service.Posting,
				"quotes", c.Quote.Source,
			)
			return run(ctx, c.Transport.Addr, mux, log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides transport.addr)")
	return cmd
}

// run serves h on addr until ctx is done, then shuts down gracefully.
func run(ctx context.Context, addr string, h http.Handler, log *zap.SugaredLogger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return runListener(ctx, ln, h, log)
}

func runListener(ctx context.Context, ln net.Listener, h http.Handler, log *zap.SugaredLogger) error {
	httpServer := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
