package dto

import (
	"strconv"

	"PunchPass/internal/model"
)

// ========== Attendance 相关 DTO ==========

// Location 客户端上报的定位
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Cell 台账单元格里的 "lat,lon" 写法，定位缺失时是空串
func (l *Location) Cell() string {
	if l == nil {
		return ""
	}
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// AttendanceRequest 单一入口的请求体，按 action 取用字段
type AttendanceRequest struct {
	Action     string    `json:"action"`
	FullName   string    `json:"fullName"`
	Mobile     string    `json:"mobile"`
	EmployeeID string    `json:"employeeId"`
	Department string    `json:"department"`
	Location   *Location `json:"location,omitempty"`
	QRCode     string    `json:"qrCode"`
}

// RegisterResponse register 的 success / exists 两种出口
type RegisterResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	UserData *model.UserData `json:"userData,omitempty"`
}

// ClockResponse check-in / check-out 成功响应
type ClockResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// StatusResponse status 动作响应
type StatusResponse struct {
	Status       model.AttendanceStatus `json:"status"`
	CheckInTime  string                 `json:"check_in_time,omitempty"`
	CheckOutTime string                 `json:"check_out_time,omitempty"`
}

// QRValidationResponse validate-qr 响应，valid / invalid 都是 200
type QRValidationResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
