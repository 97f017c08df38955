package sheet

import (
	"context"
	"sync"

	"PunchPass/config"
)

// Values 是台账后端的最小契约：整表/区间读取、末尾追加、区间覆写。
// 行是字符串的二维数组，第 0 行永远是表头。
type Values interface {
	Get(ctx context.Context, rng string) ([][]string, error)
	Append(ctx context.Context, rng string, rows [][]string) error
	Update(ctx context.Context, rng string, rows [][]string) error
}

var (
	client  Values
	onceErr error
	once    sync.Once
)

// Init 建立 Google Sheets 客户端，凭证来自配置。
func Init() error {
	once.Do(func() {
		client, onceErr = newGoogleValues(context.Background(), config.Cfg.SheetID, config.Cfg.GoogleServiceAccount)
	})

	return onceErr
}

// Client 返回全局台账客户端。
func Client() Values {
	if client == nil {
		panic("sheet client not init")
	}
	return client
}

// SetClient 替换全局客户端，单测注入 Mock 用。
func SetClient(v Values) {
	client = v
}

func Close(ctx context.Context) error {
	// HTTP 客户端没有需要释放的连接状态
	return nil
}
