// Package middleware はHTTPミドルウェア群を提供する。
//
// リクエスト処理の流れ:
//
//	SessionMiddleware  … Cookieからセッションを読み、識別キーをコンテキストへ載せる
//	IdentityMiddleware … 識別キーをユーザーレコードへ解決する（リクエストごとに一度）
//	RequireLevel       … 解決済みユーザーのアクセスレベルを検査する
//
// SessionMiddlewareとIdentityMiddlewareはリクエストを拒否しない。
// 拒否の判断はすべてRequireLevelが行う。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/robosite/internal/model"
)

type contextKey string

const (
	sessionContextKey contextKey = "session_context"
	currentUserKey    contextKey = "current_user"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
const SessionCookieName = "session_id"

// SessionFinder はセッションストアの読み取りインターフェース。
type SessionFinder interface {
	// FindByID は有効なセッションを返す。存在しない・期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware はCookieからセッションを読み取り、
// セッションに記録された識別キー（email, subject）をコンテキストへ載せるミドルウェアを返す。
//
// Cookieがない、セッションが見つからない、ストアの読み取りに失敗した、
// いずれの場合も識別情報なしのまま後続へ進む。拒否はしない。
func NewSessionMiddleware(sessions SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := &model.SessionContext{}

			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				session, err := sessions.FindByID(r.Context(), cookie.Value)
				if err != nil {
					slog.Error("failed to load session",
						slog.String("error", err.Error()),
						slog.String("path", r.URL.Path),
					)
				} else if session != nil {
					sc.SessionID = session.ID
					sc.Email = session.Email
					sc.Subject = session.Subject
				}
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionContextFromContext はコンテキストからセッションコンテキストを取り出す。
// ミドルウェアを通過していない場合は空のセッションコンテキストを返す。
func SessionContextFromContext(ctx context.Context) *model.SessionContext {
	if sc, ok := ctx.Value(sessionContextKey).(*model.SessionContext); ok {
		return sc
	}
	return &model.SessionContext{}
}
