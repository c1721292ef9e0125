package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitRecorder はレート制限の発動を記録するインターフェース。
// metrics.Collectorの部分集合として定義する。nilの場合は記録しない。
type RateLimitRecorder interface {
	RecordRateLimited(userID string)
}

// userLimiter はユーザーごとのリミッターとアクセス時刻を保持する。
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// CooldownLimiter はユーザーごとに連続操作の最小間隔を強制する。
//
// 各ユーザーに1トークン/クールダウンのrate.Limiter（バースト1）を割り当てる。
// 許可された操作はトークンを消費し、クールダウン経過まで次の操作をブロックする。
// ブロックされた呼び出しは予約をキャンセルするため、クールダウンを延長しない。
// 状態はプロセスローカルで、再起動で失われる（クールダウンが早く開くだけで害はない）。
type CooldownLimiter struct {
	cooldown        time.Duration
	cleanupInterval time.Duration
	recorder        RateLimitRecorder

	mu       sync.RWMutex
	limiters map[string]*userLimiter

	stopCh chan struct{}
}

// NewCooldownLimiter は新しいCooldownLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
// recorderはnil可。
func NewCooldownLimiter(cooldown time.Duration, recorder RateLimitRecorder) *CooldownLimiter {
	rl := &CooldownLimiter{
		cooldown:        cooldown,
		cleanupInterval: 5 * time.Minute,
		recorder:        recorder,
		limiters:        make(map[string]*userLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *CooldownLimiter) Stop() {
	close(rl.stopCh)
}

// Admit はユーザーの操作を許可するかを判定する。
// 許可した場合はnowを最終許可時刻として記録する。
// ブロックした場合は残り秒数（切り上げ）を返し、状態は変更しない。
func (rl *CooldownLimiter) Admit(userID string, now time.Time) (allowed bool, retryAfter int) {
	limiter := rl.getOrCreateLimiter(userID, now)

	res := limiter.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	if delay > 0 {
		// トークンを消費させない: ブロックはクールダウンを延長しない
		res.CancelAt(now)
		retryAfter = int(math.Ceil(delay.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return false, retryAfter
	}
	return true, 0
}

// Middleware はクールダウン制限ミドルウェアを返す。
// リクエストコンテキストにユーザーIDが含まれている必要がある
// （認証ミドルウェアの後に配置すること）。
func (rl *CooldownLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.  Please login.")
				return
			}

			allowed, retryAfter := rl.Admit(userID, time.Now())
			if !allowed {
				writeRateLimitResponse(w, retryAfter)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.Int("retry_after", retryAfter),
				)
				if rl.recorder != nil {
					rl.recorder.RecordRateLimited(userID)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// EntryCount は現在管理されているリミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *CooldownLimiter) EntryCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// getOrCreateLimiter はユーザーのリミッターを取得または作成する。
func (rl *CooldownLimiter) getOrCreateLimiter(userID string, now time.Time) *rate.Limiter {
	rl.mu.RLock()
	ul, exists := rl.limiters[userID]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		ul.lastAccess = now
		rl.mu.Unlock()
		return ul.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// ダブルチェック
	if ul, exists := rl.limiters[userID]; exists {
		ul.lastAccess = now
		return ul.limiter
	}

	limiter := rate.NewLimiter(rate.Every(rl.cooldown), 1)
	rl.limiters[userID] = &userLimiter{
		limiter:    limiter,
		lastAccess: now,
	}

	return limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
// クリーンアップは最適化であって正しさの要件ではない: 削除済みエントリと
// クールダウンを過ぎたエントリは外から区別できない。
func (rl *CooldownLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセスからcleanupIntervalの2倍を超えたエントリを削除する。
func (rl *CooldownLimiter) cleanup() {
	ttl := rl.cleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	for userID, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.limiters, userID)
		}
	}
	rl.mu.Unlock()
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーとボディの両方で残り秒数を伝える。
func writeRateLimitResponse(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:      fmt.Sprintf("Too many requests.  Retry after %d seconds.", retryAfter),
		RetryAfter: retryAfter,
	})
}
