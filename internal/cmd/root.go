// Package cmd implements the pagemeta CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	appconfig "github.com/pagemeta/pagemeta/internal/config"
	"github.com/pagemeta/pagemeta/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// Version info set by main package.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to set build metadata.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "pagemeta",
	Short: "Generate SEO metadata for web pages",
	Long: `pagemeta analyzes page markup and generates SEO metadata: titles,
descriptions, keywords, Open Graph tags, and schema.org JSON-LD.

Use the subcommands to perform specific operations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	defer observability.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pagemeta.yaml, then $HOME/.pagemeta.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	observability.InitCLILogger(verbose)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName("pagemeta")
		viper.SetConfigType("yaml")
	}

	appconfig.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			observability.CLILogger.Debug("using config file",
				zap.String("path", viper.ConfigFileUsed()))
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if verbose {
				observability.CLILogger.Debug("no config file found, using defaults and environment variables")
			}
		} else if verbose {
			observability.CLILogger.Warn("error reading config file", zap.Error(err))
		}
	}

	appconfig.SetDefaults(viper.GetViper())
}

// loadConfig decodes the layered configuration for commands that need
// the full struct.
func loadConfig() (*appconfig.Config, error) {
	return appconfig.Load(viper.GetViper())
}
