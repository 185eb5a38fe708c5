package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gitae-Kwon/mmreport/internal/config"
	"github.com/Gitae-Kwon/mmreport/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "mmreport",
		Short: "M/M 시트 → 회사 양식 변환기",
		Long: `mmreport converts a spreadsheet tab (uploaded .xlsx or Google Sheets)
into the "플랫폼 기술본부 M/M 산정표" report: a grouped summary with share
percentages, an HTML preview and a formatted .xlsx workbook.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config.toml 경로 (기본: 실행 파일과 같은 폴더)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "로그 레벨 (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newTabsCmd(opts),
		newConvertCmd(opts),
	)
	return root
}

// loadConfig 加载配置并初始化日志
func (o *rootOptions) loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	return cfg, nil
}
