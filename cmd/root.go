package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/internal/config"
	"github.com/omnipathdb/metabopkn/internal/observability"
)

// configHolder hands the loaded configuration from the root command's
// PersistentPreRunE to the subcommands.
type configHolder struct {
	cfg *config.Config
}

// NewRootCommand builds a fresh root command. Each invocation gets its own
// flag and config state, so repeated executions in tests do not leak into
// each other.
func NewRootCommand() *cobra.Command {
	var cfgFile string
	holder := &configHolder{}

	root := &cobra.Command{
		Use:     "metabopkn",
		Short:   "Build the COSMOS metabolite-protein prior-knowledge network.",
		Version: Version,
		// Errors are reported once, by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				// Fall back so the error itself gets logged somewhere sensible.
				observability.InitializeLogger(config.LoggerConfig{
					Level: "info", Format: "console", ServiceName: "metabopkn",
				})
				return err
			}
			holder.cfg = cfg

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Info("Starting metabopkn", zap.String("version", Version))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./metabopkn.yaml)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newBuildCmd(holder))
	root.AddCommand(newCompareIDsCmd(holder))
	return root
}

// Execute runs the CLI with a signal-aware context.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		return err
	}
	return nil
}

// loadConfig reads the config file and environment into a validated Config.
func loadConfig(cfgFile string) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("metabopkn")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("METABOPKN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	return config.NewConfigFromViper(v)
}
