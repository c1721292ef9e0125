package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mikan/doghouse/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	CooldownLimiter   *middleware.CooldownLimiter
	CORSAllowedOrigin string
	HTTPMetrics       middleware.HTTPMetricsRecorder // nil可

	// ハンドラー依存
	UserService UserServiceInterface
	UserConfig  UserHandlerConfig
	DogService  DogServiceInterface

	// 運用エンドポイント
	HealthChecker  HealthChecker // nil可
	MetricsHandler http.Handler  // nil可
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → CORS → (認証ルートのみ) Auth → Cooldown
//
// /user配下とヘルスチェック・メトリクスは認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	userHandler := NewUserHandler(deps.UserService, deps.UserConfig)
	dogHandler := NewDogHandler(deps.DogService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → Cooldown
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.CooldownLimiter.Middleware())

		r.Route("/dogs", func(r chi.Router) {
			r.Post("/registerDog", dogHandler.RegisterDog)
			r.Post("/adoptDog/{id}", dogHandler.AdoptDog)
			r.Delete("/removeDog/{id}", dogHandler.RemoveDog)
			r.Get("/registeredDogs", dogHandler.ListRegisteredDogs)
			r.Get("/adoptedDogs", dogHandler.ListAdoptedDogs)
		})
	})

	return r
}

// newHealthHandler はヘルスチェックハンドラーを返す。
// checkerが指定されている場合はデータベース接続も確認する。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed",
					slog.String("error", err.Error()),
				)
				middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
