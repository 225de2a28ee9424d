package console

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lqhuy/chatdesk/internal/api"
	"github.com/lqhuy/chatdesk/internal/config"
	"github.com/lqhuy/chatdesk/internal/logging"
)

// loadConfig loads configuration honoring the persistent flags and
// initializes logging from the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	loader := config.NewLoader()
	if configFile != "" {
		loader.SetConfigFile(configFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		File:         cfg.Logging.File,
		EnableCaller: cfg.Logging.EnableCaller,
	})

	if used := loader.ConfigFileUsed(); used != "" {
		logger := logging.Component("console")
		logger.Debug().Str("config_file", used).Msg("loaded config file")
	}

	return cfg, nil
}

// buildClient constructs the REST client from config.
func buildClient(cfg *config.Config) (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL:   cfg.Backend.BaseURL,
		AuthToken: cfg.Backend.AuthToken,
		Timeout:   cfg.Backend.Timeout,
	})
}
