package storage

import (
	"go.uber.org/zap"

	"PunchPass/config"
	"PunchPass/pkg/logger"
	"PunchPass/storage/database"
	"PunchPass/storage/mq"
	"PunchPass/storage/redis"
	"PunchPass/storage/sheet"
)

// 统一 init storage 层。台账是硬依赖，其余按配置开关，起不来只降级不拦路。

func Init() error {
	if err := sheet.Init(); err != nil {
		return err
	}

	if config.Cfg.RedisEnabled {
		if err := redis.Init(); err != nil {
			logger.Logger.Warn("Failed to initialize Redis, lock and rate limit disabled", zap.Error(err))
		}
	}

	if config.Cfg.AuditEnabled {
		if err := database.Init(); err != nil {
			logger.Logger.Warn("Failed to initialize audit database, audit trail disabled", zap.Error(err))
		}
	}

	if config.Cfg.QueueEnabled {
		if err := mq.Init(); err != nil {
			logger.Logger.Warn("Failed to initialize message queue, event publishing disabled", zap.Error(err))
		}
	}

	return nil
}
