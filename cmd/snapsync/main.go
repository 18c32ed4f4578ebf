package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/snapsync"
	"github.com/bft-labs/snapsync/internal/app"
	"github.com/bft-labs/snapsync/internal/cliconfig"
	logadapter "github.com/bft-labs/snapsync/pkg/log"
	"github.com/bft-labs/snapsync/plugins/configwatcher"
)

const helpDescription = `
Keep a single mutable database file durable across restarts on ephemeral disks.

snapsync restores the newest remote snapshot into the workspace before the
writer starts, then periodically checkpoints and copies the database file to
the remote store (local path, file://, gs:// or s3://). On shutdown it drains
the in-flight sync, performs one final sync, and exits with the writer's exit
code.
`

var exampleUsage = strings.TrimSpace(`
  snapsync --workspace /data --remote gs://my-bucket/app --exec "myapp serve"
  snapsync --workspace /data --remote s3://my-bucket/app?region=us-east-1 --interval 10s
  snapsync --config $HOME/.snapsync/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	// The writer's exit code becomes ours; recorded here so it survives the
	// return path out of RunE.
	exitCode := 0

	root := &cobra.Command{
		Use:     "snapsync",
		Short:   "Durability sidecar for a single mutable database file",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Determine config path (default $HOME/.snapsync/config.toml)
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			configInUse := ""
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				configInUse = cfgFile
			}

			// Apply environment variables (SNAPSYNC_*)
			// These override file config but are overridden by flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Info().Interface("config", cfg).Msg("configuration")

			libCfg := snapsync.Config{
				WorkspaceDir: cfg.WorkspaceDir,
				RemoteURL:    cfg.RemoteURL,
				DBName:       cfg.DBName,
				SyncInterval: cfg.SyncInterval,
				Checkpoint:   cfg.Checkpoint,
				ConfigPath:   configInUse,
			}

			adapter := logadapter.NewZerologAdapterWithLogger(log)

			opts := []snapsync.Option{
				snapsync.WithLogger(adapter),
			}
			if configInUse != "" {
				opts = append(opts, configwatcher.WithDefaultConfigWatcher())
			}

			s, err := snapsync.New(libCfg, opts...)
			if err != nil {
				return fmt.Errorf("create snapsync: %w", err)
			}

			if cfg.MetricsAddr != "" {
				go serveMetrics(cfg.MetricsAddr)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			// Start restores synchronously; the writer only launches against a
			// fully restored workspace.
			if err := s.Start(ctx); err != nil {
				return fmt.Errorf("start snapsync: %w", err)
			}

			if cfg.Exec != "" {
				writer, err := app.NewWriter(cfg.Exec, cfg.WorkspaceDir, adapter)
				if err != nil {
					_ = s.Stop()
					return err
				}
				if err := writer.Start(); err != nil {
					// No running writer means nothing to protect; bail out
					// after a clean stop.
					_ = s.Stop()
					return err
				}

				waitCh := make(chan int, 1)
				go func() { waitCh <- writer.Wait() }()

				select {
				case sig := <-sigCh:
					log.Info().Str("signal", sig.String()).Msg("received signal, forwarding to writer")
					writer.Signal(sig)
					exitCode = <-waitCh
				case exitCode = <-waitCh:
				}
			} else {
				// Sync-only mode: run until signaled.
				<-sigCh
				log.Info().Msg("received signal, stopping...")
			}

			// Final sync happens inside Stop; its outcome never changes the
			// exit code.
			if err := s.Stop(); err != nil {
				return fmt.Errorf("stop snapsync: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.snapsync/config.toml)")
	root.Flags().StringVar(&cfg.WorkspaceDir, "workspace", cfg.WorkspaceDir, "local directory holding the database file")
	root.Flags().StringVar(&cfg.RemoteURL, "remote", cfg.RemoteURL, "remote store URL (path, file://, gs:// or s3://)")
	root.Flags().StringVar(&cfg.DBName, "db-name", cfg.DBName, "database filename within the workspace")
	root.Flags().DurationVar(&cfg.SyncInterval, "interval", cfg.SyncInterval, "delay between sync ticks")
	root.Flags().StringVar(&cfg.Checkpoint, "checkpoint", cfg.Checkpoint, "checkpoint mode: sqlite or off")
	root.Flags().StringVar(&cfg.Exec, "exec", cfg.Exec, "foreground writer command; its exit code becomes ours")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address (optional)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("snapsync")
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// serveMetrics exposes the Prometheus registry over HTTP. Best effort; a
// listener failure never takes down the agent.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger := cliconfig.Logger()
		logger.Warn().Err(err).Msg("metrics listener failed")
	}
}
