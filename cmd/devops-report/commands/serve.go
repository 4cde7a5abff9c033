package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"devops-report/internal/server"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var openBrowser bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report page and answer generate-report requests over websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if openBrowser {
			url := localURL(cfg.Server.Addr)
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("Could not open browser")
			}
		}

		return server.New(orchestrator).ListenAndServe(ctx, cfg.Server.Addr)
	},
}

// localURL turns a listen address such as ":3600" into a browsable URL.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + strings.TrimPrefix(addr, ":")
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, port))
}

func init() {
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "open the report page in the default browser")
}
