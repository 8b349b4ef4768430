package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/config"
	"github.com/derickschaefer/pitwall/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pitwall configuration",
	Long: `Read and write pitwall configuration stored in config.json.

Every key can also be set from the environment with the PITWALL_ prefix,
e.g. PITWALL_BASE_URL or PITWALL_CACHE_BACKEND.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "  Edit base_url to point at your storefront API.")
		return nil
	},
}

var configGetShowSecrets bool

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		redisPassword := cfg.RedactedRedisPassword()
		if configGetShowSecrets {
			redisPassword = cfg.RedisPassword
		}
		if redisPassword == "" {
			redisPassword = "(not set)"
		}
		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}

		rows := [][2]string{
			{"base_url", cfg.BaseURL},
			{"default_format", cfg.Format},
			{"timeout", cfg.Timeout.String()},
			{"rate", fmt.Sprintf("%.1f req/s", cfg.Rate)},
			{"page_size", strconv.Itoa(cfg.PageSize)},
			{"db_path", cfg.DBPath},
			{"cache_backend", cfg.CacheBackend},
			{"redis_addr", cfg.RedisAddr},
			{"redis_password", redisPassword},
			{"redis_db", strconv.Itoa(cfg.RedisDB)},
			{"listen_addr", cfg.ListenAddr},
			{"email", cfg.Email},
			{"config_file", src},
		}

		if resolveFormat(cfg.Format) == render.FormatJSON {
			out := make(map[string]string, len(rows))
			for _, r := range rows {
				out[r[0]] = r[1]
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		printKVTable(cmd.OutOrStdout(), rows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Example: `  pitwall config set base_url https://setups.example.com/api/
  pitwall config set cache_backend redis`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		path := config.DefaultConfigFile

		// Load existing file or start from template
		f, err := config.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			f = config.Template()
		} else if err != nil {
			return err
		}

		if err := f.Set(key, args[1]); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configGetCmd.Flags().BoolVar(&configGetShowSecrets, "show-secrets", false, "show the redis password in plain text")
}

// printKVTable renders a two-column key/value table using aligned columns.
func printKVTable(w io.Writer, rows [][2]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}
