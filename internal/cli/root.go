// Package cli 是 itemsim 的命令行入口（cobra）。
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rushteam/itemsim/config"
	"github.com/rushteam/itemsim/pkg/logging"
)

var (
	// Version 在构建时注入
	Version = "0.1.0"

	// 全局参数
	configFile string
	logLevel   string
	logFile    string

	cfg        config.Run
	logger     *slog.Logger
	logCleanup func() error
)

var rootCmd = &cobra.Command{
	Use:   "itemsim",
	Short: "Item-to-item cosine similarity over user ratings",
	Long: `itemsim computes item-to-item cosine similarity from (user, item, rating)
records, then answers "items most similar to X" queries.

The batch job can write its index to CSV, Redis and Kafka; the query
command reads a previously written Redis index.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadRun(configFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Log.File = logFile
		}
		logger, logCleanup = logging.Setup(cfg.Log.File, logging.ParseLevel(cfg.Log.Level))
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCleanup != nil {
			return logCleanup()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "run config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")

	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(queryCmd)
}

// Execute 执行根命令。
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext 使用 ctx 执行根命令，Ctrl-C 会取消正在运行的批处理。
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
