package middleware

import (
	"context"
	"net/http"

	"github.com/hitoshi/robosite/internal/model"
)

// IdentityResolver はセッションの識別キーをユーザーレコードへ解決する。
type IdentityResolver interface {
	// Resolve は現在のユーザーを返す。解決できない場合はゲストユーザーを返す。
	Resolve(ctx context.Context, sc *model.SessionContext) *model.User
}

// NewIdentityMiddleware はセッションコンテキストの識別キーをユーザーへ解決し、
// コンテキストへ載せるミドルウェアを返す。
//
// 解決はリクエストごとに一度だけ行い、同一リクエスト内の権限判定はすべて
// この解決結果を参照する。解決に失敗してもゲストとして後続へ進む。拒否はしない。
func NewIdentityMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := SessionContextFromContext(r.Context())
			user := resolver.Resolve(r.Context(), sc)

			ctx := context.WithValue(r.Context(), currentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext はコンテキストから解決済みユーザーを取り出す。
// ミドルウェアを通過していない場合はゲストユーザーを返す。
func UserFromContext(ctx context.Context) *model.User {
	if user, ok := ctx.Value(currentUserKey).(*model.User); ok && user != nil {
		return user
	}
	return model.GuestUser()
}
