package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"PunchPass/config"
	"PunchPass/internal/handler"
	"PunchPass/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	if config.Cfg.TracingEnabled {
		h.Use(middleware.OpenTelemetryMiddleware())
	}

	// 考勤路由。所有动作走一个端点，由 handler 按 action 分发
	api := h.Group("/api")
	{
		if config.Cfg.RateLimitEnabled {
			api.POST("/log-attendance", middleware.RateLimitMiddleware(middleware.AttendanceRateLimitConfig()), handler.LogAttendance)
		} else {
			api.POST("/log-attendance", handler.LogAttendance)
		}
	}
}
