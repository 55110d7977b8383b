package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/cli/prompt"
	"github.com/marmos91/opencode-sdk/pkg/config"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Write a configuration file with default values.

By default, the file is created at $XDG_CONFIG_HOME/ocsdk/config.yaml.
Use --config to specify a custom path and --interactive to answer a few
questions instead of taking every default.

Examples:
  # Initialize with default location
  ocsdk config init

  # Ask for the server settings
  ocsdk config init -i

  # Force overwrite existing config
  ocsdk config init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings")
	cmdutil.SkipConfig(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if initInteractive {
		return runInitInteractive(cmd)
	}

	configFile, _ := cmd.Flags().GetString("config")

	var path string
	var err error
	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		path = configFile
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	printNextSteps(cmd, path)
	return nil
}

func runInitInteractive(cmd *cobra.Command) error {
	path := configPath(cmd)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("configuration file already exists: %s\n\nUse --force to overwrite it", path)
	}

	cfg := config.GetDefaultConfig()
	if err := askSettings(cfg); err != nil {
		return cmdutil.HandleAbort(err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	printNextSteps(cmd, path)
	return nil
}

func printNextSteps(cmd *cobra.Command, path string) {
	out := cmd.OutOrStdout()
	cmdutil.Printer(out).Success("Configuration file created at: " + path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the configuration file to customize your setup")
	_, _ = fmt.Fprintln(out, "  2. Check it with: ocsdk config validate")
	_, _ = fmt.Fprintln(out, "  3. Talk to the server: ocsdk chat \"hello\"")
}

func askSettings(cfg *config.Config) error {
	mode, err := prompt.Select("Server", []prompt.SelectOption{
		{Label: "Local (start on demand)", Value: "local", Description: "Reuse or start opencode serve on this machine"},
		{Label: "Remote URL", Value: "remote", Description: "Connect to a server managed elsewhere"},
	})
	if err != nil {
		return err
	}

	if mode == "remote" {
		serverURL, err := prompt.InputURL("Server URL", false)
		if err != nil {
			return err
		}
		cfg.Server.URL = serverURL
	} else {
		port, err := prompt.InputPort("Port", cfg.Server.Port)
		if err != nil {
			return err
		}
		cfg.Server.Port = port

		autoInstall, err := prompt.Confirm("Install opencode automatically when missing", false)
		if err != nil {
			return err
		}
		cfg.Lifecycle.AutoInstall = autoInstall
	}

	password, err := prompt.Password("Server password (empty for none)")
	if err != nil {
		return err
	}
	cfg.Server.Password = password

	agent, err := prompt.Input("Default agent (empty for server default)", cfg.Client.Agent)
	if err != nil {
		return err
	}
	cfg.Client.Agent = agent
	return nil
}
