package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"PunchPass/config"
	"PunchPass/internal/ledger"
	"PunchPass/internal/model/dto"
	"PunchPass/pkg/errors"
	"PunchPass/pkg/logger"
	"PunchPass/pkg/metrics"
	"PunchPass/pkg/response"
)

// LogAttendance 唯一入口，按 action 分发
// POST /api/log-attendance
func LogAttendance(ctx context.Context, c *app.RequestContext) {
	start := time.Now()

	var req dto.AttendanceRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if req.Action == "" {
		response.Error(ctx, c, errors.InvalidRequest.WithMessage("Missing action parameter"))
		return
	}

	// 凭证和表 ID 在请求期检查，启动时没配也能把错误按约定形状吐回去
	if config.Cfg.SheetID == "" || config.Cfg.GoogleServiceAccount == "" {
		response.Error(ctx, c, errors.ConfigMissing)
		return
	}

	switch req.Action {
	case "check-in", "check-out", "status":
		if req.EmployeeID == "" {
			response.Error(ctx, c, errors.InvalidRequest.WithMessage("Missing employeeId parameter"))
			return
		}
	}

	svc := ledger.Ledger()

	var (
		result interface{}
		err    error
	)

	switch req.Action {
	case "register":
		result, err = svc.Register(ctx, &req)
	case "check-in":
		result, err = svc.CheckIn(ctx, req.EmployeeID, req.Location)
	case "check-out":
		result, err = svc.CheckOut(ctx, req.EmployeeID, req.Location)
	case "status":
		result, err = svc.Status(ctx, req.EmployeeID)
	case "validate-qr":
		if req.QRCode == "" {
			err = errors.InvalidRequest.WithMessage("Missing QR code for validation")
		} else {
			result = svc.ValidateQR(req.QRCode)
		}
	default:
		err = errors.UnknownAction
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if m := metrics.GetMetrics(); m != nil {
		m.RecordAction(ctx, req.Action, outcome, time.Since(start).Seconds())
	}

	if err != nil {
		logger.Logger.Warn("Attendance action failed",
			zap.String("action", req.Action),
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
