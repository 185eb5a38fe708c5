package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Gitae-Kwon/mmreport/internal/converter"
	"github.com/Gitae-Kwon/mmreport/internal/service/excel"
)

func newConvertCmd(root *rootOptions) *cobra.Command {
	var (
		src        sourceFlags
		tab        string
		monthLabel string
		output     string
		htmlPath   string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "convert [file.xlsx]",
		Short: "탭 하나를 회사 양식 xlsx 로 변환",
		Example: `  mmreport convert mm.xlsx --tab 9월
  mmreport convert mm.xlsx --tab 9월 --month "2025년 9월" -o report.xlsx --html preview.html
  mmreport convert --gsheet <url|id> --credentials sa.json --tab 9월`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			s, err := src.open(ctx, cfg, args)
			if err != nil {
				return err
			}
			defer s.Close()

			table, err := s.ReadTable(ctx, tab)
			if err != nil {
				return err
			}

			conv := converter.New(converter.Config{
				Layout: excel.Layout{
					TitlePrefix: cfg.Report.TitlePrefix,
					ColumnWidth: cfg.Report.ColumnWidth,
				},
				DefaultMonthLabel: cfg.Report.DefaultMonthLabel,
			}, converter.WithLogger(slog.Default()))

			opts := converter.Options{
				MonthLabel: monthLabel,
				Source:     s.Kind(),
				SourceName: s.Name(),
				Tab:        tab,
			}
			if verbose {
				errOut := cmd.ErrOrStderr()
				opts.Progress = func(e converter.ProgressEvent) {
					fmt.Fprintf(errOut, "[%3d%%] %s %s\n", e.Percent, e.Type, e.Message)
				}
			}

			res, err := conv.Convert(ctx, table, opts)
			if err != nil {
				return err
			}

			if output == "" {
				output = res.Filename
			}
			if err := writeFile(output, res.Workbook); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d행 → %s\n", res.MonthLabel, res.Summary.NumRows(), output)

			if htmlPath != "" {
				if err := writeFile(htmlPath, []byte(res.HTML)); err != nil {
					return err
				}
				fmt.Fprintf(out, "미리보기 → %s\n", htmlPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&src.spreadsheet, "gsheet", "", "Google 스프레드시트 URL 또는 ID")
	cmd.Flags().StringVar(&src.credentials, "credentials", "", "서비스 계정 JSON 경로")
	cmd.Flags().StringVar(&tab, "tab", "", "변환할 탭 이름")
	cmd.Flags().StringVar(&monthLabel, "month", "", "월 표기 (기본: 탭 이름)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "출력 xlsx 경로 (기본: MM_변환_<월>.xlsx)")
	cmd.Flags().StringVar(&htmlPath, "html", "", "HTML 미리보기 저장 경로")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "진행 상황 출력")
	_ = cmd.MarkFlagRequired("tab")
	return cmd
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
