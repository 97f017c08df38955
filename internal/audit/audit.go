package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"PunchPass/internal/model"
	"PunchPass/pkg/logger"
	"PunchPass/pkg/snowflake"
	"PunchPass/storage/database"
	"PunchPass/storage/mq"
)

// Record 落一条审计流水并向事件交换机广播。全程 best effort：
// 审计挂了打 warn，绝不把已经写进台账的动作报成失败。
func Record(ctx context.Context, employeeID, action, date, clock, location string) {
	event := model.AttendanceEvent{
		EmployeeID: employeeID,
		Action:     action,
		Date:       date,
		Time:       clock,
		Location:   location,
		CreatedAt:  time.Now(),
	}

	if id, err := snowflake.NextID(); err == nil {
		event.ID = id
	} else {
		event.ID = time.Now().UnixNano()
	}

	if database.Ready() {
		if err := database.DB().WithContext(ctx).Create(&event).Error; err != nil {
			logger.Logger.Warn("Failed to record attendance event",
				zap.String("employee_id", employeeID),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}

	if mq.Ready() {
		if err := mq.PublishMessage(mq.EventsExchange, action, event); err != nil {
			logger.Logger.Warn("Failed to publish attendance event",
				zap.String("employee_id", employeeID),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}
}
