package cmd

import (
	"fmt"
	"net"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/apoxy-dev/apoxy-static/build"
	"github.com/apoxy-dev/apoxy-static/config"
	"github.com/apoxy-dev/apoxy-static/pkg/fileserver"
	"github.com/apoxy-dev/apoxy-static/pkg/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve [DOC_ROOT]",
	Short: "Serve files from a document root",
	Long: `Serve files from a document root over HTTP/1.1.

Every connection gets exactly one response and is then closed. Only GET is
supported; "/" serves the index document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := serveConfig(cmd, args)
		if err != nil {
			return err
		}
		if err := initLogging(cfg); err != nil {
			return err
		}
		log.Debugf("Effective config: listen=%s root=%s index=%s max_connections=%d read_buffer_size=%d read_timeout=%s strict_reads=%t confine=%t",
			cfg.ListenAddr, cfg.DocRoot, cfg.Index, cfg.MaxConnections, cfg.ReadBufferSize,
			cfg.ReadTimeout, cfg.StrictReads, cfg.ConfineToRoot)
		if err := initSentry(cfg.SentryDSN); err != nil {
			return fmt.Errorf("failed to initialize Sentry: %w", err)
		}

		srv := fileserver.NewServer(cfg.ServerOptions())
		lis, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		url := displayURL(lis.Addr().String())
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\nPress Ctrl+C to stop the server\n",
			srv.Options().DocRoot, url)
		log.Infof("Serving %s on %s", srv.Options().DocRoot, url)

		if open, _ := cmd.Flags().GetBool("open"); open {
			browser.Stdout = log.NewDefaultLogWriter(log.DebugLevel)
			browser.Stderr = log.NewDefaultLogWriter(log.WarnLevel)
			if err := browser.OpenURL(url); err != nil {
				log.Warnf("failed to open browser: %v", err)
			}
		}

		if err := srv.Serve(cmd.Context(), lis); err != nil {
			log.Errorf("server stopped: %v", err)
			return err
		}
		return nil
	},
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("listen", "l", fileserver.DefaultListenAddr, "Address to listen on.")
	cmd.Flags().StringP("root", "r", ".", "Document root (overridden by the DOC_ROOT argument).")
	cmd.Flags().String("index", "index.html", "Document served for \"/\".")
	cmd.Flags().Int("max-connections", fileserver.DefaultMaxConnections, "Maximum number of connections served at once.")
	cmd.Flags().Int("read-buffer-size", fileserver.DefaultReadBufferSize, "Bytes read to receive a request; longer requests are truncated.")
	cmd.Flags().Duration("read-timeout", 0, "How long to wait for a request (0 waits forever).")
	cmd.Flags().Bool("strict-reads", false, "Serve 500 when a file read returns fewer bytes than expected.")
	cmd.Flags().Bool("confine", false, "Reject targets that resolve outside the document root.")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error).")
	cmd.Flags().Bool("json-logs", false, "Log in JSON.")
	cmd.Flags().String("sentry-dsn", "", "Sentry DSN for error reporting.")
	cmd.Flags().Bool("open", false, "Open the served URL in a browser.")
}

func init() {
	addServeFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
}

// serveConfig loads the config file and applies any flags that were set
// explicitly on top of it.
func serveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	strs := map[string]*string{
		"listen":     &cfg.ListenAddr,
		"root":       &cfg.DocRoot,
		"index":      &cfg.Index,
		"log-level":  &cfg.LogLevel,
		"sentry-dsn": &cfg.SentryDSN,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, fmt.Errorf("error getting %s: %w", name, err)
		}
	}
	ints := map[string]*int{
		"max-connections":  &cfg.MaxConnections,
		"read-buffer-size": &cfg.ReadBufferSize,
	}
	for name, dst := range ints {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, fmt.Errorf("error getting %s: %w", name, err)
		}
	}
	bools := map[string]*bool{
		"strict-reads": &cfg.StrictReads,
		"confine":      &cfg.ConfineToRoot,
		"json-logs":    &cfg.JSONLogs,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, fmt.Errorf("error getting %s: %w", name, err)
		}
	}
	if flags.Changed("read-timeout") {
		if cfg.ReadTimeout, err = flags.GetDuration("read-timeout"); err != nil {
			return nil, fmt.Errorf("error getting read-timeout: %w", err)
		}
	}
	if len(args) > 0 {
		cfg.DocRoot = args[0]
	}

	if cfg.ReadBufferSize < 0 {
		return nil, fmt.Errorf("read buffer size must not be negative: %d", cfg.ReadBufferSize)
	}
	if cfg.MaxConnections < 0 {
		return nil, fmt.Errorf("max connections must not be negative: %d", cfg.MaxConnections)
	}
	return cfg, nil
}

func initLogging(cfg *config.Config) error {
	var lOpts []log.Option
	if cfg.Verbose {
		lOpts = append(lOpts, log.WithDevMode())
	} else if cfg.LogLevel != "" {
		lOpts = append(lOpts, log.WithLevelString(cfg.LogLevel))
	}
	if cfg.JSONLogs {
		lOpts = append(lOpts, log.WithJSON())
	}
	if config.AlsoLogToStderr {
		lOpts = append(lOpts, log.WithAlsoLogToStderr())
	}
	return log.Init(lOpts...)
}

func initSentry(dsn string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: build.Release(),
	})
}

func displayURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
