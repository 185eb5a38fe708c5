package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Gitae-Kwon/mmreport/internal/config"
	"github.com/Gitae-Kwon/mmreport/internal/server"
	"github.com/Gitae-Kwon/mmreport/internal/util"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port      int
		devMode   bool
		dataDir   string
		noBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "웹 변환기 실행",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			// 命令行参数覆盖配置
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}
			if dataDir != "" {
				cfg.Data.DataDir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd, cfg, !noBrowser && !cfg.Server.DevMode)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "서비스 포트")
	cmd.Flags().BoolVar(&devMode, "dev", false, "개발 모드 (브라우저 자동 열기 안 함, CORS 허용)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "데이터 폴더 (설정 파일보다 우선)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "브라우저를 열지 않음")
	return cmd
}

func runServer(cmd *cobra.Command, cfg *config.AppConfig, openBrowser bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "==========================================")
	fmt.Fprintln(out, "  mmreport - 시트 → 양식 자동 변환기")
	fmt.Fprintln(out, "==========================================")

	logger := slog.Default()
	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	fmt.Fprintf(out, "데이터 폴더: %s\n", config.DataDir(cfg))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, addr)
	}()
	logger.Info("server started", slog.String("addr", addr), slog.Bool("dev", cfg.Server.DevMode))

	if openBrowser {
		fmt.Fprintf(out, "브라우저를 여는 중: %s\n", url)
		if err := util.OpenBrowser(url); err != nil {
			fmt.Fprintf(out, "브라우저를 열 수 없습니다. 직접 접속해 주세요: %s\n", url)
		}
	} else {
		fmt.Fprintf(out, "접속 주소: %s\n", url)
	}
	fmt.Fprintln(out, "\nCtrl+C 로 종료합니다...")

	err = <-errCh
	if err == nil && ctx.Err() != nil {
		fmt.Fprintln(out, "\n서비스를 종료합니다...")
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return err
}
