package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/invisiboga/internal/config"
	"github.com/Iron-Ham/invisiboga/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "invisiboga",
	Short: "AR board game application shell",
	Long: `Invisiboga drives an AR board game engine through its staged
bring-up: engine initialization, session creation, tracker data loading
and camera start. The engine shipped with this build is a scripted
simulator, so every stage and failure mode can be exercised from a
terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a non-zero process exit status out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/invisiboga/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	bindGlobalFlags()
}

// bindGlobalFlags ties the persistent flags to their viper keys.
func bindGlobalFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("metrics.addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("INVISIBOGA")
	// Replace dots with underscores for nested keys in env vars
	// e.g., INVISIBOGA_RENDER_FPS for render.fps
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// watchConfig hot-reloads the log level when the config file changes.
// Other settings only apply to the next run.
func watchConfig(logger *logging.Logger) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		level := strings.ToLower(viper.GetString("logging.level"))
		if !slices.Contains(config.ValidLogLevels(), level) {
			logger.Warn("config reload ignored invalid log level", "file", e.Name, "level", level)
			return
		}
		if logging.ParseLevel(level) == logger.Level() {
			return
		}
		logger.SetLevel(level)
		logger.Info("log level changed", "file", e.Name, "op", e.Op.String(), "level", level)
	})
	viper.WatchConfig()
}
