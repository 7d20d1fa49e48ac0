package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dszqbsm/pocextractor/cmd/extract"
	"github.com/dszqbsm/pocextractor/version"
	"github.com/spf13/cobra"
)

// cmd.go借助cobra库定义了命令行界面，提供两个子命令，extract用于从公司主页提取POC联系人，version用于打印版本信息
// 执行./pocx extract --file page.html时，会读取离线快照并提取；--url则会启动Chrome打开页面
// 执行./pocx -h能看到Cobra自动生成的帮助文档

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{ // 仅用于组织和挂载子命令
		Use:           "pocx",
		Short:         "extract POC contacts from Traxcn and Apollo company profiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(extract.ExtractCmd, versionCmd)
	return rootCmd
}

// 返回进程退出码
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, extract.ErrReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
