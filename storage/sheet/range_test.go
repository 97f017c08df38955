package sheet

import (
	"context"
	"testing"
)

func TestColumnLetter(t *testing.T) {
	cases := []struct {
		idx  int
		want string
	}{
		{0, "A"},
		{5, "F"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tc := range cases {
		if got := ColumnLetter(tc.idx); got != tc.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", tc.idx, got, tc.want)
		}
	}
}

func TestRangeHelpers(t *testing.T) {
	if got := RowRange("Sheet1", 4); got != "Sheet1!5:5" {
		t.Fatalf("RowRange = %q", got)
	}
	if got := CellRange("Sheet1", 4, 5, 6); got != "Sheet1!F5:G5" {
		t.Fatalf("CellRange = %q", got)
	}
	if got := CellRange("Attendance", 0, 0, 0); got != "Attendance!A1:A1" {
		t.Fatalf("single cell CellRange = %q", got)
	}
}

func TestMockRowReadAndUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMock([][]string{
		{"h1", "h2", "h3"},
		{"a", "b", "c"},
	})

	rows, err := m.Get(ctx, RowRange("Sheet1", 1))
	if err != nil {
		t.Fatalf("Get row failed: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "a" {
		t.Fatalf("unexpected row read: %v", rows)
	}

	if err := m.Update(ctx, CellRange("Sheet1", 1, 1, 2), [][]string{{"B", "C"}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := m.Rows()[1]
	if got[0] != "a" || got[1] != "B" || got[2] != "C" {
		t.Fatalf("update wrote wrong cells: %v", got)
	}
}

func TestMockUpdateExtendsShortRow(t *testing.T) {
	ctx := context.Background()
	m := NewMock([][]string{
		{"h"},
		{"a"},
	})

	// 稀疏短行：往第 6 列写值要自动补空格
	if err := m.Update(ctx, CellRange("Sheet1", 1, 5, 5), [][]string{{"x"}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := m.Rows()[1]
	if len(got) != 6 || got[5] != "x" {
		t.Fatalf("short row not extended: %v", got)
	}
	for i := 1; i < 5; i++ {
		if got[i] != "" {
			t.Fatalf("padding cells must be empty: %v", got)
		}
	}
}

func TestMockRowsReturnsCopy(t *testing.T) {
	m := NewMock([][]string{{"a"}})

	rows := m.Rows()
	rows[0][0] = "mutated"

	if m.Rows()[0][0] != "a" {
		t.Fatalf("Rows must return a defensive copy")
	}
}
