package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/aretw0/sluice/internal/adapters/http"
	"github.com/aretw0/sluice/internal/cli"
	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/internal/metrics"
	"github.com/aretw0/sluice/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the engine in server mode: every request path is evaluated as a
pipeline, with a management API under /api and Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetString("port")
		debug, _ := cmd.Flags().GetBool("debug")
		watch, _ := cmd.Flags().GetBool("watch")

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		mtr := metrics.New()
		stack, err := cli.BuildStack(cfg, logger, debug, mtr.Hooks())
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}
		defer stack.Close()

		// The registry only reloads inside a Watch loop; /events subscribers
		// each arm their own, so a server-side one keeps definitions fresh
		// while nobody is subscribed.
		if watch {
			if stack.Watcher == nil {
				fmt.Println("Watch mode needs file-backed definitions (backends.registry.driver: file)")
				os.Exit(1)
			}
			watchCtx, cancelWatch := context.WithCancel(context.Background())
			defer cancelWatch()
			reloads, err := stack.Watcher.Watch(watchCtx)
			if err != nil {
				fmt.Printf("Error starting watcher: %v\n", err)
				os.Exit(1)
			}
			go func() {
				for range reloads {
					logger.Info("definitions reloaded")
				}
			}()
		}

		handler := httpAdapter.NewHandler(stack.Engine, serverOptions(stack, logger, mtr)...)

		addr := ":" + port
		if !cmd.Flags().Changed("port") && cfg.Listen != "" {
			addr = cfg.Listen
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Sluice Server on %s\n", srv.Addr)
			fmt.Printf("Definitions backend: %s\n", registryDriver(cfg))
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Sluice Server stopped gracefully")
		}
	},
}

// serverOptions mounts the management surfaces the configured backends can
// actually support: admin endpoints only where the registries are writable,
// the locker and watcher only where a backend provides them.
func serverOptions(stack *cli.Stack, logger *slog.Logger, mtr *metrics.Metrics) []httpAdapter.Option {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(logger),
		httpAdapter.WithContent(stack.Engine.Content()),
		httpAdapter.WithMetricsHandler(mtr.Handler()),
	}
	if admin, ok := stack.Units.(ports.UnitAdmin); ok {
		opts = append(opts, httpAdapter.WithUnits(admin))
	}
	if admin, ok := stack.Aliases.(ports.AliasAdmin); ok {
		opts = append(opts, httpAdapter.WithAliases(admin))
	}
	if admin, ok := stack.Variables.(ports.VariableAdmin); ok {
		opts = append(opts, httpAdapter.WithVariables(admin))
	}
	if stack.Locker != nil {
		opts = append(opts, httpAdapter.WithLocker(stack.Locker))
	}
	if stack.Watcher != nil {
		opts = append(opts, httpAdapter.WithWatcher(stack.Watcher))
	}
	return opts
}

func registryDriver(cfg cli.Config) string {
	if driver := cfg.Backends.Registry.Driver(); driver != "" {
		return driver
	}
	return "memory"
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides the config listen address)")
	serveCmd.Flags().BoolP("debug", "d", false, "Log every evaluation stage")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload file-backed definitions on change")
}
