package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/robosite/internal/middleware"
	"github.com/hitoshi/robosite/internal/model"
)

// Pinger はヘルスチェックが必要とするストレージ疎通確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	IdentityResolver  middleware.IdentityResolver
	AccessGate        middleware.AccessChecker
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	HTTPMetrics       middleware.HTTPMetrics

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// チーム・ユーザー管理
	TeamService TeamServiceInterface
	UserService UserServiceInterface

	// コンテンツ管理
	UnitService      UnitServiceInterface
	LessonService    LessonServiceInterface
	ComponentService ComponentServiceInterface

	// 運用系
	DB             Pinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging
//	（APIルートはさらに） Session → Identity → RateLimit(General) → CSRF
//
// 権限判定はルートグループごとのRequireLevelで行う。
// 閲覧系（GET）はメンバー以上、変更系とユーザー管理はキャプテン・教員のみ。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	teamHandler := NewTeamHandler(deps.TeamService)
	userHandler := NewUserHandler(deps.UserService)
	unitHandler := NewUnitHandler(deps.UnitService)
	lessonHandler := NewLessonHandler(deps.LessonService)
	componentHandler := NewComponentHandler(deps.ComponentService)

	sessionMw := middleware.NewSessionMiddleware(deps.SessionFinder)
	identityMw := middleware.NewIdentityMiddleware(deps.IdentityResolver)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)

		// /auth/me は解決済みユーザーを返すため、セッション読込と識別解決を通す
		r.With(sessionMw, identityMw).Get("/me", authHandler.Me)
	})

	// --- APIルート ---
	// ミドルウェアスタック: Session → Identity → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(sessionMw)
		r.Use(identityMw)
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// 閲覧系: メンバー以上
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLevel(deps.AccessGate, model.AccessMember))

			r.Get("/api/teams", teamHandler.List)
			r.Get("/api/teams/{id}", teamHandler.Get)

			r.Get("/api/units", unitHandler.List)
			r.Get("/api/units/{id}/lessons", lessonHandler.List)
			r.Get("/api/lessons/{id}", lessonHandler.Get)
			r.Get("/api/lessons/{id}/components", componentHandler.List)
			r.Get("/api/components/{id}", componentHandler.Get)
		})

		// 管理系: キャプテン・教員のみ
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLevel(deps.AccessGate, model.AccessAdmin))

			// チーム管理
			r.Post("/api/teams", teamHandler.Create)
			r.Patch("/api/teams/{id}", teamHandler.Rename)
			r.Delete("/api/teams/{id}", teamHandler.Delete)

			// ユーザー管理
			r.Get("/api/users", userHandler.List)
			r.Post("/api/users", userHandler.Register)
			r.Get("/api/users/{email}", userHandler.Get)
			r.Patch("/api/users/{email}", userHandler.Update)
			r.Delete("/api/users/{email}", userHandler.Delete)

			// コンテンツ管理
			r.Post("/api/units", unitHandler.Create)
			r.Patch("/api/units/{id}", unitHandler.Rename)
			r.Delete("/api/units/{id}", unitHandler.Delete)

			r.Post("/api/units/{id}/lessons", lessonHandler.Create)
			r.Patch("/api/lessons/{id}", lessonHandler.Update)
			r.Delete("/api/lessons/{id}", lessonHandler.Delete)

			r.Post("/api/lessons/{id}/components", componentHandler.Create)
			r.Patch("/api/components/{id}", componentHandler.Update)
			r.Delete("/api/components/{id}", componentHandler.Delete)
		})
	})

	return r
}

// newHealthHandler はストレージ疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
