package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gitae-Kwon/mmreport/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", DefaultFilename))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConversions_RecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 9, 30, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		c := model.Conversion{
			ID:          fmt.Sprintf("c-%d", i),
			Source:      model.SourceXLSX,
			SourceName:  "mm.xlsx",
			Tab:         "9월",
			MonthLabel:  "9월",
			InputRows:   10 + i,
			SummaryRows: 2,
			Bytes:       4096,
			Status:      model.ConversionOK,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.RecordConversion(ctx, c); err != nil {
			t.Fatalf("RecordConversion failed: %v", err)
		}
	}
	if err := s.RecordConversion(ctx, model.Conversion{
		ID:        "c-failed",
		Source:    model.SourceGSheet,
		Status:    model.ConversionFailed,
		Error:     "tab is empty",
		CreatedAt: base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("RecordConversion failed: %v", err)
	}

	list, err := s.ListConversions(ctx, 2)
	if err != nil {
		t.Fatalf("ListConversions failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len=%d, want 2", len(list))
	}
	if list[0].ID != "c-failed" || list[1].ID != "c-2" {
		t.Fatalf("order=%s,%s", list[0].ID, list[1].ID)
	}
	if list[0].Error != "tab is empty" {
		t.Fatalf("error=%q", list[0].Error)
	}
	if list[1].InputRows != 12 || list[1].Tab != "9월" || !list[1].CreatedAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("record=%+v", list[1])
	}

	counts, err := s.CountConversions(ctx)
	if err != nil {
		t.Fatalf("CountConversions failed: %v", err)
	}
	if counts[model.ConversionOK] != 3 || counts[model.ConversionFailed] != 1 {
		t.Fatalf("counts=%v", counts)
	}
}

func TestConversions_DuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := model.Conversion{ID: "dup", Status: model.ConversionOK}
	if err := s.RecordConversion(ctx, c); err != nil {
		t.Fatalf("RecordConversion failed: %v", err)
	}
	if err := s.RecordConversion(ctx, c); err == nil {
		t.Fatalf("expected primary key violation")
	}
}

func TestConfig(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetConfig(ctx, KeyLastMonthLabel); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err=%v, want ErrConfigNotFound", err)
	}
	if got := s.GetConfigDefault(ctx, KeyLastMonthLabel, "선택월"); got != "선택월" {
		t.Fatalf("default=%q", got)
	}

	if err := s.SetConfig(ctx, KeyLastMonthLabel, "9월"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if err := s.SetConfig(ctx, KeyLastMonthLabel, "10월"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if err := s.SetConfig(ctx, KeyLastSpreadsheet, "1AbC"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}

	if got, _ := s.GetConfig(ctx, KeyLastMonthLabel); got != "10월" {
		t.Fatalf("value=%q", got)
	}
	all, err := s.GetAllConfig(ctx)
	if err != nil {
		t.Fatalf("GetAllConfig failed: %v", err)
	}
	if len(all) != 2 || all[KeyLastSpreadsheet] != "1AbC" {
		t.Fatalf("all=%v", all)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.SetConfig(ctx, KeyLastMonthLabel, "9월"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	_ = s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if got, _ := s.GetConfig(ctx, KeyLastMonthLabel); got != "9월" {
		t.Fatalf("value=%q", got)
	}
}
