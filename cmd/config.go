package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/plateful/plateful/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage plateful configuration",
	Long: `Manage the config.json file in the current directory.

Resolution order (highest priority first):
  1. CLI flags (--token, --base-url, ...)
  2. Environment variables (PLATEFUL_TOKEN, PLATEFUL_BASE_URL, ...)
  3. config.json in the current working directory`,
}

// ─── config init ──────────────────────────────────────────────────────────────

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "  Edit it to add your backend token, or run:")
		fmt.Fprintln(cmd.OutOrStdout(), "  plateful config set token YOUR_TOKEN")
		return nil
	},
}

// ─── config show ──────────────────────────────────────────────────────────────

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(globalFlags.Token)
		if err != nil {
			return err
		}

		source := cfg.ConfigPath
		if source == "" {
			source = "(no config.json found)"
		}
		token := "(not set)"
		if cfg.Token != "" {
			token = cfg.RedactedToken()
		}

		printKVTable(cmd.OutOrStdout(), [][]string{
			{"config file", source},
			{"base_url", cfg.BaseURL},
			{"token", token},
			{"email", cfg.Email},
			{"uid", cfg.UID},
			{"timeout", cfg.Timeout.String()},
			{"rate", fmt.Sprintf("%.1f req/s", cfg.Rate)},
			{"db_path", cfg.DBPath},
			{"water_target", strconv.Itoa(cfg.WaterTarget)},
		})
		return nil
	},
}

// ─── config set ───────────────────────────────────────────────────────────────

var configSetCmd = &cobra.Command{
	Use:   "set <KEY> <VALUE>",
	Short: "Set a value in config.json",
	Long: `Set a value in config.json (created if missing). Keys:

  base_url, token, email, uid, timeout, rate, db_path, water_target`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		f := config.File{}
		if data, err := os.ReadFile(config.DefaultConfigFile); err == nil {
			if err := json.Unmarshal(data, &f); err != nil {
				return fmt.Errorf("parsing %s: %w", config.DefaultConfigFile, err)
			}
		}

		switch key {
		case "base_url":
			f.BaseURL = value
		case "token":
			f.Token = value
		case "email":
			f.Email = value
		case "uid":
			f.UID = value
		case "timeout":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid duration %q", value)
			}
			f.Timeout = value
		case "rate":
			r, err := strconv.ParseFloat(value, 64)
			if err != nil || r <= 0 {
				return fmt.Errorf("invalid rate %q", value)
			}
			f.Rate = r
		case "db_path":
			f.DBPath = value
		case "water_target":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid water target %q", value)
			}
			f.WaterTarget = n
		default:
			return fmt.Errorf("unknown key %q", key)
		}

		if err := config.WriteFile(config.DefaultConfigFile, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.json")
}
