package sheet

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Mock 是 Values 的内存实现，供单测和本地开发使用。
// 范围解析只覆盖本服务实际用到的三种写法：
// 整表 "Tab"、整行 "Tab!5:5"、单行单元格区间 "Tab!F5:G5"。
type Mock struct {
	mu   sync.Mutex
	rows [][]string

	// 故障注入：非 nil 时对应操作直接返回该错误
	GetErr    error
	AppendErr error
	UpdateErr error

	GetCalls    int
	AppendCalls int
	UpdateCalls int
}

func NewMock(rows [][]string) *Mock {
	m := &Mock{}
	for _, row := range rows {
		m.rows = append(m.rows, append([]string(nil), row...))
	}
	return m
}

var (
	rowRangeRe  = regexp.MustCompile(`^(\d+):(\d+)$`)
	cellRangeRe = regexp.MustCompile(`^([A-Z]+)(\d+):([A-Z]+)(\d+)$`)
)

func (m *Mock) Get(ctx context.Context, rng string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	_, ref := splitTab(rng)
	if ref == "" {
		return copyRows(m.rows), nil
	}

	if match := rowRangeRe.FindStringSubmatch(ref); match != nil {
		from, _ := strconv.Atoi(match[1])
		to, _ := strconv.Atoi(match[2])
		if from < 1 || from > len(m.rows) {
			return nil, nil
		}
		if to > len(m.rows) {
			to = len(m.rows)
		}
		return copyRows(m.rows[from-1 : to]), nil
	}

	return nil, fmt.Errorf("mock: unsupported get range %q", rng)
}

func (m *Mock) Append(ctx context.Context, rng string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls++
	if m.AppendErr != nil {
		return m.AppendErr
	}

	for _, row := range rows {
		m.rows = append(m.rows, append([]string(nil), row...))
	}
	return nil
}

func (m *Mock) Update(ctx context.Context, rng string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	_, ref := splitTab(rng)
	match := cellRangeRe.FindStringSubmatch(ref)
	if match == nil || len(rows) != 1 {
		return fmt.Errorf("mock: unsupported update range %q", rng)
	}

	rowNum, _ := strconv.Atoi(match[2])
	colFrom := letterToIndex(match[1])
	if rowNum < 1 || rowNum > len(m.rows) {
		return fmt.Errorf("mock: update row %d out of range", rowNum)
	}

	row := m.rows[rowNum-1]
	for i, cell := range rows[0] {
		col := colFrom + i
		for len(row) <= col {
			row = append(row, "")
		}
		row[col] = cell
	}
	m.rows[rowNum-1] = row
	return nil
}

// Rows 返回底层表的拷贝，断言行数和内容用。
func (m *Mock) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRows(m.rows)
}

func splitTab(rng string) (tab, ref string) {
	if i := strings.IndexByte(rng, '!'); i >= 0 {
		return rng[:i], rng[i+1:]
	}
	return rng, ""
}

func letterToIndex(letters string) int {
	idx := 0
	for _, r := range letters {
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, append([]string(nil), row...))
	}
	return out
}
