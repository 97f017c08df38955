package model

// 台账固定的九列表头。物理列序无所谓，定位永远按名字来。
const (
	ColFullName         = "Full Name"
	ColMobile           = "Mobile"
	ColEmployeeID       = "Employee ID"
	ColDepartment       = "Department"
	ColDate             = "Date"
	ColCheckInTime      = "Check-in Time"
	ColCheckInLocation  = "Check-in Location"
	ColCheckOutTime     = "Check-out Time"
	ColCheckOutLocation = "Check-out Location"
)

// HeaderRow 空表初始化时写入的表头行。
var HeaderRow = []string{
	ColFullName, ColMobile, ColEmployeeID, ColDepartment, ColDate,
	ColCheckInTime, ColCheckInLocation, ColCheckOutTime, ColCheckOutLocation,
}

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// UserData 注册身份字段，注册、exists 响应和本地缓存共用。
type UserData struct {
	FullName   string `json:"fullName"`
	Mobile     string `json:"mobile"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
}

// AttendanceStatus status 动作的四种结果。
type AttendanceStatus string

const (
	StatusNotRegistered AttendanceStatus = "not_registered"
	StatusNotCheckedIn  AttendanceStatus = "not_checked_in"
	StatusCheckedIn     AttendanceStatus = "checked_in"
	StatusCompleted     AttendanceStatus = "completed"
)
