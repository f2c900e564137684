package google

import (
	"context"
	"reflect"
	"testing"

	"taxiledger/internal/core"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"월별요약", 2026, "2026 월별요약"},
		{"  Summary ", 2025, "2025 Summary"},
		{"2024 Summary", 2026, "2024 Summary"},
		{"", 2026, ""},
		{"12345", 2026, "2026 12345"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}

func TestSheetFor(t *testing.T) {
	c := &Client{summaryBase: "월별요약"}
	got, err := c.sheetFor("2026-10")
	if err != nil || got != "2026 월별요약" {
		t.Fatalf("sheetFor = %q, %v", got, err)
	}
	if _, err := c.sheetFor("2026/10"); err == nil {
		t.Fatal("expected an error for a malformed month")
	}
}

func TestCellValues(t *testing.T) {
	got := cellValues([][]any{
		{"월", "2026-10"},
		{},
		{"운행 거리(km)", 182.4, "근무일", 12},
		{"총 수입", int64(51800), core.Fuel},
	})
	want := [][]any{
		{"월", "2026-10"},
		{""},
		{"운행 거리(km)", "182.4", "근무일", int64(12)},
		{"총 수입", int64(51800), "fuel"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cellValues = %#v\nwant %#v", got, want)
	}
}

func TestWriteWithoutService(t *testing.T) {
	c := &Client{summaryBase: "Summary"}
	if err := c.WriteMonthSummary(context.Background(), core.MonthlySummary{Month: "2026-10"}); err == nil {
		t.Fatal("expected an error without an initialised service")
	}
}

func TestNewClientRequiresSpreadsheet(t *testing.T) {
	if _, err := NewClient(context.Background(), "  ", "Summary"); err == nil {
		t.Fatal("expected missing spreadsheet id error")
	}
}
