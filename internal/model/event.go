package model

import "time"

// AttendanceEvent 审计流水，成功的写动作各记一条。
// 只追加，不回写台账，台账本身仍是唯一事实。
type AttendanceEvent struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	EmployeeID string    `gorm:"type:varchar(16);not null;index:idx_attendance_events_employee_date" json:"employee_id"`
	Action     string    `gorm:"type:varchar(16);not null" json:"action"`
	Date       string    `gorm:"type:varchar(10);not null;index:idx_attendance_events_employee_date" json:"date"`
	Time       string    `gorm:"type:varchar(8)" json:"time"`
	Location   string    `gorm:"type:varchar(64)" json:"location,omitempty"`
	CreatedAt  time.Time `gorm:"type:timestamptz" json:"created_at"`
}

// TableName 指定表名
func (AttendanceEvent) TableName() string {
	return "attendance_events"
}
