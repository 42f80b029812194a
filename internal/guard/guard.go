// Package guard 防止短时间内重复提交同一个写操作（双击、网络重试）。
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

const DefaultLockDuration = 2 * time.Second

// Guard 是以 key 为单位的短期互斥。
// Acquire 成功后调用方必须在操作结束（无论成败）时用返回的 token 调用 Release。
// 锁过期后被别的请求重新获取时，旧 token 的 Release 不会删除新的锁。
type Guard interface {
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

func PreferenceKey(employeeID int64, date domain.Date) string {
	return fmt.Sprintf("preference:%d:%s", employeeID, date)
}

// ShiftKey 比 PreferenceKey 更细：同一天不同时间段的拆分班次互不阻塞
func ShiftKey(employeeID int64, date domain.Date, startTime, endTime string) string {
	return fmt.Sprintf("shift:%d:%s:%s:%s", employeeID, date, startTime, endTime)
}
