package ledger

import (
	"context"

	"PunchPass/internal/model"
	"PunchPass/pkg/errors"
	"PunchPass/pkg/metrics"
)

// columns 表头解析结果。可选列缺失时是 -1，cell 取值时当空串处理。
type columns struct {
	fullName     int
	mobile       int
	employeeID   int
	department   int
	date         int
	checkInTime  int
	checkInLoc   int
	checkOutTime int
	checkOutLoc  int
}

// snapshot 一次全表读取加上按身份键建好的索引。
// 线性扫描换成索引是刻意的：匹配语义不变（精确字符串相等），只省掉重复遍历。
type snapshot struct {
	rows           [][]string
	cols           columns
	byEmployee     map[string]int // employeeID -> 首次出现的行号
	byMobile       map[string]int // mobile -> 首次出现的行号
	byEmployeeDate map[string]int // employeeID+date -> 行号
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{
		fullName:     indexOf(header, model.ColFullName),
		mobile:       indexOf(header, model.ColMobile),
		employeeID:   indexOf(header, model.ColEmployeeID),
		department:   indexOf(header, model.ColDepartment),
		date:         indexOf(header, model.ColDate),
		checkInTime:  indexOf(header, model.ColCheckInTime),
		checkInLoc:   indexOf(header, model.ColCheckInLocation),
		checkOutTime: indexOf(header, model.ColCheckOutTime),
		checkOutLoc:  indexOf(header, model.ColCheckOutLocation),
	}

	if cols.employeeID == -1 || cols.date == -1 || cols.checkInTime == -1 || cols.checkOutTime == -1 {
		return cols, errors.SheetSchemaInvalid
	}

	return cols, nil
}

// cell 行内取值，短行和 -1 列都按空串处理，和表格后端的稀疏行为对齐
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func dateKey(employeeID, date string) string {
	return employeeID + "\x00" + date
}

// loadSnapshot 共享前导：全表读、空表建头、解析表头、建索引。
func (s *Service) loadSnapshot(ctx context.Context) (*snapshot, error) {
	rows, err := s.values.Get(ctx, s.tab)
	if err != nil {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordSheetError(ctx, "get")
		}
		return nil, errors.SheetIOFailed
	}

	if len(rows) == 0 {
		if err := s.values.Append(ctx, s.tab, [][]string{model.HeaderRow}); err != nil {
			if m := metrics.GetMetrics(); m != nil {
				m.RecordSheetError(ctx, "append")
			}
			return nil, errors.SheetIOFailed.WithMessage("Failed to initialize attendance sheet")
		}

		rows, err = s.values.Get(ctx, s.tab)
		if err != nil {
			if m := metrics.GetMetrics(); m != nil {
				m.RecordSheetError(ctx, "get")
			}
			return nil, errors.SheetIOFailed.WithMessage("Failed to initialize attendance sheet")
		}
	}

	cols, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	snap := &snapshot{
		rows:           rows,
		cols:           cols,
		byEmployee:     make(map[string]int),
		byMobile:       make(map[string]int),
		byEmployeeDate: make(map[string]int),
	}

	for i := 1; i < len(rows); i++ {
		id := cell(rows[i], cols.employeeID)
		if id != "" {
			if _, seen := snap.byEmployee[id]; !seen {
				snap.byEmployee[id] = i
			}
			key := dateKey(id, cell(rows[i], cols.date))
			if _, seen := snap.byEmployeeDate[key]; !seen {
				snap.byEmployeeDate[key] = i
			}
		}

		mobile := cell(rows[i], cols.mobile)
		if mobile != "" {
			if _, seen := snap.byMobile[mobile]; !seen {
				snap.byMobile[mobile] = i
			}
		}
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordFetch(ctx, int64(len(rows)))
	}

	return snap, nil
}

// userDataAt 从某一行抽出注册身份字段。
func (snap *snapshot) userDataAt(rowIdx int) *model.UserData {
	row := snap.rows[rowIdx]
	return &model.UserData{
		FullName:   cell(row, snap.cols.fullName),
		Mobile:     cell(row, snap.cols.mobile),
		EmployeeID: cell(row, snap.cols.employeeID),
		Department: cell(row, snap.cols.department),
	}
}

// employeeRow 返回该员工任意日期下首次出现的行号，-1 表示从未注册。
func (snap *snapshot) employeeRow(employeeID string) int {
	if i, ok := snap.byEmployee[employeeID]; ok {
		return i
	}
	return -1
}

// todayRow 返回该员工今天的行号，-1 表示今天还没有记录。
func (snap *snapshot) todayRow(employeeID, today string) int {
	if i, ok := snap.byEmployeeDate[dateKey(employeeID, today)]; ok {
		return i
	}
	return -1
}
