package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTabsCmd(root *rootOptions) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "tabs [file.xlsx]",
		Short: "월별 탭 목록 출력",
		Example: `  mmreport tabs mm.xlsx
  mmreport tabs --gsheet https://docs.google.com/spreadsheets/d/<id>/edit --credentials sa.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			s, err := src.open(cmd.Context(), cfg, args)
			if err != nil {
				return err
			}
			defer s.Close()

			tabs, err := s.ListTabs(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAB\tROWS")
			for _, t := range tabs {
				fmt.Fprintf(w, "%s\t%d\n", t.Name, t.RowCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&src.spreadsheet, "gsheet", "", "Google 스프레드시트 URL 또는 ID")
	cmd.Flags().StringVar(&src.credentials, "credentials", "", "서비스 계정 JSON 경로")
	return cmd
}
