package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"objscope/internal/config"
	"objscope/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	hostVer    string

	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "objscope",
	Short: "objscope - safe introspection of dynamic runtime values",
	Long: `objscope inspects values of the embedded host runtime without running
code they define. Attribute reads are classified first and refused when they
would trigger a property, a custom descriptor or a dynamic attribute hook.

Targets are written module:attr.path, for example
  builtins:str.replace
  strings:Builder.Grow
  net/url:URL`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws, err := config.FindWorkspaceRoot()
		if err != nil {
			return fmt.Errorf("failed to locate workspace: %w", err)
		}
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath(ws)
		}
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if hostVer != "" {
			cfg.Runtime.Version = hostVer
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", path, err)
		}
		if err := logging.Initialize(ws, cfg.Logging.Settings()); err != nil {
			logger.Warn("file logging disabled", zap.Error(err))
		}
		logger.Debug("config loaded", zap.String("path", path), zap.String("host_version", cfg.Runtime.Version))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .objscope/config.yaml in the workspace)")
	rootCmd.PersistentFlags().StringVar(&hostVer, "host-version", "", "Host runtime version to emulate (major.minor)")

	inspectCmd.Flags().BoolVar(&showAttrs, "attrs", false, "List attributes with their read verdicts")
	inspectCmd.Flags().BoolVar(&showDoc, "doc", false, "Print documentation")

	rootCmd.AddCommand(inspectCmd, factsCmd, modulesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
