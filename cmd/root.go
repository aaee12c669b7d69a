// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"brainsgraph/internal/config"
	"brainsgraph/internal/graph"
	"brainsgraph/internal/hub"
	"brainsgraph/internal/observability"
	"brainsgraph/internal/scanner"
	"brainsgraph/internal/server"
	"brainsgraph/internal/web"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd scans the given repository once, then serves two surfaces
// until shutdown: the viewer gateway (HTTP + WebSocket) and the MCP
// controller on stdio.
var rootCmd = &cobra.Command{
	Use:   "brainsgraph <repo-path>",
	Short: "Live architecture graph server driven by an MCP agent",
	Args:  cobra.ExactArgs(1),
	// Version is dynamically set at build time. See cmd/version.go.
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// This function runs before any command, setting up config and logging.
		if err := initializeConfig(); err != nil {
			return err
		}

		loaded, err := config.NewConfigFromViper(viper.GetViper())
		if err != nil {
			// Initialize a fallback logger so the failure is visible.
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "brainsgraph"})
			return fmt.Errorf("failed to process configuration: %w", err)
		}
		cfg = loaded

		observability.InitializeLogger(cfg.Logger)

		// Log the version at startup.
		observability.GetLogger().Info("Starting brainsgraph", zap.String("version", Version))
		return nil
	},
	RunE: runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Use the logger if available, otherwise fall back to stderr.
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.Flags().String("listen", "", "viewer gateway bind address (overrides server.listen_addr)")
	rootCmd.Flags().String("assets", "", "viewer assets directory (overrides server.assets_dir)")
	_ = viper.BindPFlag("server.listen_addr", rootCmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("server.assets_dir", rootCmd.Flags().Lookup("assets"))
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// initializeConfig reads in config file and ENV variables if set.
func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BRAINSGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars.
	}
	return nil
}

// runServe wires the pipeline: scan, seed the store, start the hub and
// the viewer gateway, then block on the MCP stdio loop. The process
// ends when the MCP client disconnects or on SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()
	repoRoot := args[0]

	nodes, edges := scanner.New(logger).Scan(cmd.Context(), repoRoot)

	store := graph.NewStore(logger)
	if err := store.Initialize(nodes, edges); err != nil {
		return fmt.Errorf("graph store initialization: %w", err)
	}

	h := hub.New(logger, store)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go h.Run(hubCtx)

	gateway := web.New(logger, h, cfg.Server)
	go func() {
		if err := gateway.Start(); err != nil {
			logger.Error("Viewer gateway stopped with error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := server.New(logger, store, h).Run(ctx)

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gateway.Shutdown(shutdownCtx); err != nil {
		logger.Error("Viewer gateway shutdown error", zap.Error(err))
	}
	stopHub()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
