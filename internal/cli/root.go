// Package cli 实现 ideactl 命令行工具
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"idea-forge-api/pkg/logger"
)

// NewRootCommand 创建 ideactl 根命令
func NewRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "ideactl",
		Short: "Build idea generation requests and export generated ideas",
		Long: `ideactl works with the idea generation API from the terminal.

It can fill in the request form interactively, export a saved idea as
readable text, canonical JSON or HTML, and ask a running server for a new
batch of three ideas.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitWithWriter(cmd.ErrOrStderr(), logLevel, "text")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newFormCommand(),
		newExportCommand(),
		newGenerateCommand(),
	)
	return root
}

// ExecuteContext 执行根命令
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// isInteractive 标准输入是否为终端
func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
