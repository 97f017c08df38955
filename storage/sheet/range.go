package sheet

import "fmt"

// ColumnLetter 把 0 基列号转成 A1 列名（0→A，25→Z，26→AA）。
func ColumnLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}

// RowRange 引用某一整行，rowIdx 是 0 基的表内行号。
func RowRange(tab string, rowIdx int) string {
	return fmt.Sprintf("%s!%d:%d", tab, rowIdx+1, rowIdx+1)
}

// CellRange 引用一行里 [colFrom, colTo] 的连续单元格。
func CellRange(tab string, rowIdx, colFrom, colTo int) string {
	return fmt.Sprintf("%s!%s%d:%s%d", tab, ColumnLetter(colFrom), rowIdx+1, ColumnLetter(colTo), rowIdx+1)
}
