package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Gitae-Kwon/mmreport/internal/config"
	"github.com/Gitae-Kwon/mmreport/internal/model"
	"github.com/Gitae-Kwon/mmreport/internal/service/excel"
	"github.com/Gitae-Kwon/mmreport/internal/service/gsheet"
)

// sheetSource 命令行可读取的数据源
type sheetSource interface {
	Name() string
	Kind() string
	ListTabs(ctx context.Context) ([]model.TabInfo, error)
	ReadTable(ctx context.Context, tab string) (*model.Table, error)
	Close() error
}

type sourceFlags struct {
	spreadsheet string
	credentials string
}

// open 根据参数打开 xlsx 文件或 Google 表格
func (f sourceFlags) open(ctx context.Context, cfg *config.AppConfig, args []string) (sheetSource, error) {
	if f.spreadsheet != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--gsheet 와 파일 인자는 함께 쓸 수 없습니다")
		}
		return f.openSheet(ctx, cfg)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("xlsx 파일 경로 또는 --gsheet 가 필요합니다")
	}
	return openFile(args[0])
}

func (f sourceFlags) openSheet(ctx context.Context, cfg *config.AppConfig) (sheetSource, error) {
	id, err := gsheet.ParseSpreadsheetID(f.spreadsheet)
	if err != nil {
		return nil, err
	}

	var creds []byte
	if f.credentials != "" {
		creds, err = os.ReadFile(f.credentials)
	} else {
		creds, err = config.ReadCredentials(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("서비스 계정 JSON 이 필요합니다 (--credentials 또는 google.credentials_path)")
	}

	client, err := gsheet.NewClient(ctx, creds)
	if err != nil {
		return nil, err
	}
	return &gsheetSource{client: client, id: id}, nil
}

func openFile(path string) (sheetSource, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	wb, err := excel.OpenWorkbook(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &fileSource{wb: wb, name: filepath.Base(path)}, nil
}

type fileSource struct {
	wb   *excel.Workbook
	name string
}

func (s *fileSource) Name() string { return s.name }
func (s *fileSource) Kind() string { return model.SourceXLSX }
func (s *fileSource) Close() error { return s.wb.Close() }

func (s *fileSource) ListTabs(context.Context) ([]model.TabInfo, error) {
	return s.wb.ListTabs()
}

func (s *fileSource) ReadTable(_ context.Context, tab string) (*model.Table, error) {
	return s.wb.ReadTable(tab)
}

type gsheetSource struct {
	client *gsheet.Client
	id     string
}

func (s *gsheetSource) Name() string { return s.id }
func (s *gsheetSource) Kind() string { return model.SourceGSheet }
func (s *gsheetSource) Close() error { return nil }

func (s *gsheetSource) ListTabs(ctx context.Context) ([]model.TabInfo, error) {
	return s.client.ListTabs(ctx, s.id)
}

func (s *gsheetSource) ReadTable(ctx context.Context, tab string) (*model.Table, error) {
	return s.client.ReadTable(ctx, s.id, tab)
}
