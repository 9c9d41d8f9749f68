package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rogersnm/linkbook/internal/config"
	"github.com/rogersnm/linkbook/internal/logger"
	"github.com/rogersnm/linkbook/internal/markdown"
	"github.com/rogersnm/linkbook/internal/workspace"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change storage settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := cfg.Storage
		level := orDefault(cfg.LogLevel, logger.DefaultLevel)
		fields := []string{
			markdown.RenderField("Data dir", dataDir),
			markdown.RenderField("Backend", s.BackendName()),
			markdown.RenderField("Log level", level),
		}
		switch s.BackendName() {
		case config.BackendSQLite:
			fields = append(fields, markdown.RenderField("SQLite path", orDefault(s.SQLitePath, "linkbook.db")))
		case config.BackendPostgres:
			fields = append(fields, markdown.RenderField("Postgres DSN", redact(s.PostgresDSN)))
		case config.BackendRedis:
			fields = append(fields,
				markdown.RenderField("Redis addr", s.RedisAddr),
				markdown.RenderField("Redis namespace", orDefault(s.RedisNamespace, "none")),
			)
		}
		fmt.Fprint(cmd.OutOrStdout(), markdown.RenderEntityHeader("linkbook config", fields))
		return nil
	},
}

var configSetBackendCmd = &cobra.Command{
	Use:   "set-backend <file|sqlite|postgres|redis|memory>",
	Short: "Choose where the collection is stored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])
		if err := config.ValidateBackend(name); err != nil {
			return err
		}

		// Reload so environment overrides are not written to disk.
		onDisk, err := config.Load(dataDir)
		if err != nil {
			return err
		}
		onDisk.Storage.Backend = name
		if v, _ := cmd.Flags().GetString("sqlite-path"); v != "" {
			onDisk.Storage.SQLitePath = v
		}
		if v, _ := cmd.Flags().GetString("postgres-dsn"); v != "" {
			onDisk.Storage.PostgresDSN = v
		}
		if v, _ := cmd.Flags().GetString("redis-addr"); v != "" {
			onDisk.Storage.RedisAddr = v
		}
		if v, _ := cmd.Flags().GetString("redis-namespace"); v != "" {
			onDisk.Storage.RedisNamespace = v
		}
		if err := config.Save(dataDir, onDisk); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Storage backend set to %s\n", name)
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .linkbook directory here for a separate collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		path, err := workspace.Init(dir)
		if err != nil {
			return fmt.Errorf("creating workspace: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", path)
		return nil
	},
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// redact hides the password in a postgres URL.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return dsn[:scheme+3] + creds[:colon] + ":***" + dsn[at:]
	}
	return dsn
}

func init() {
	configSetBackendCmd.Flags().String("sqlite-path", "", "sqlite database file (relative to the data dir)")
	configSetBackendCmd.Flags().String("postgres-dsn", "", "postgres connection string")
	configSetBackendCmd.Flags().String("redis-addr", "", "redis host:port")
	configSetBackendCmd.Flags().String("redis-namespace", "", "prefix for the redis key")

	initCmd.Flags().String("dir", ".", "directory to create .linkbook in")

	configCmd.AddCommand(configShowCmd, configSetBackendCmd)
	rootCmd.AddCommand(configCmd, initCmd)
}
