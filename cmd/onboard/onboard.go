package onboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/config"

	"github.com/spf13/cobra"
)

var OnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize zaikit configuration.",
	Long:  "Initialize zaikit configuration. Writes ~/.zaikit/config.yaml with the defaults and your api key.",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runOnboard()
		if err != nil {
			return fmt.Errorf("failed to run onboard: %w", err)
		}

		return nil
	},
}

func confirm(prompt string) (bool, error) {
	answer, err := app.ReadLine(prompt + " (y/n): ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func bootstrapConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		ok, err := confirm(fmt.Sprintf("Config file already exists at %s, do you want to overwrite it?", configPath))
		if err != nil || !ok {
			return err
		}
	}

	// the env key may already be loaded, offer it as the default
	cfg := config.BootstrapConfig()
	key, err := app.ReadSecret("Z.AI api key (enter to keep " + config.EnvAPIKey + "): ")
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read api key: %w", err)
	}
	cfg.API.ApiKey = key
	if cfg.API.ApiKey == "" {
		cfg.API.ApiKey = app.Config().API.ApiKey
	}

	if err := config.Save(cfg, configPath); err != nil {
		return err
	}

	app.Printer().Textf("Configuration written to %s", configPath)
	if cfg.API.ApiKey == "" {
		app.Printer().Warn("No api key saved. Export " + config.EnvAPIKey + " or edit the file.")
	}
	return nil
}

func runOnboard() error {
	configPath, err := config.GetWorkspaceConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	workspaceDir := filepath.Dir(configPath)
	if err := os.MkdirAll(workspaceDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory at %s: %w", workspaceDir, err)
	}

	if err := bootstrapConfig(configPath); err != nil {
		return fmt.Errorf("failed to bootstrap config: %w", err)
	}

	return nil
}
