package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type heldKey struct {
	key   string
	token string
}

// acquireGuard 依次获取所有 key，任意一个失败时释放已获取的部分并返回 ok=false。
// 成功时调用方必须 defer release()，保证写入失败也不会让 key 一直被占用。
func (h *Handler) acquireGuard(w http.ResponseWriter, r *http.Request, keys ...string) (release func(), ok bool) {
	held := make([]heldKey, 0, len(keys))

	release = func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
		defer cancel()

		for _, k := range held {
			if err := h.guard.Release(ctx, k.key, k.token); err != nil {
				slog.Error("释放重复提交锁失败", "key", k.key, "error", err)
			}
		}
	}

	for _, key := range keys {
		token, got, err := h.guard.Acquire(r.Context(), key)
		if err != nil {
			release()
			h.internalServerError(w, r, err)
			return nil, false
		}
		if !got {
			release()
			h.tooManyRequests(w, r)
			return nil, false
		}
		held = append(held, heldKey{key: key, token: token})
	}

	return release, true
}
