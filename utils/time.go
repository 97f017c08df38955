package utils

import (
	"time"
)

// FormatDate 台账 Date 列的写法（YYYY-MM-DD），分界线由考勤时区决定
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// FormatClock 打卡时间列的写法（HH:MM:SS，24 小时制）
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04:05")
}
