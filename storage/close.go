package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"PunchPass/pkg/logger"
	"PunchPass/storage/database"
	"PunchPass/storage/mq"
	"PunchPass/storage/redis"
	"PunchPass/storage/sheet"
)

// Close 优雅关闭所有存储连接
// 关闭顺序：MQ -> Redis -> Database -> Sheet
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	if err := mq.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close message queue", zap.Error(err))
	}

	if err := redis.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
	}

	if err := database.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	if err := sheet.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close sheet client", zap.Error(err))
	}

	logger.Logger.Info("All storage connections closed")
}
