package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/robosite/internal/model"
)

// AccessChecker は解決済みユーザーと要求レベルから可否を判定する。
type AccessChecker interface {
	// Check は許可の場合nil、拒否の場合は理由を示すAPIErrorを返す。
	Check(user *model.User, required model.AccessLevel) *model.APIError
}

// RequireLevel は指定アクセスレベル以上のユーザーのみ通過させるミドルウェアを返す。
//
// 未認証（匿名）は401、認証済みだが権限不足は403を返す。
// この二つは常に区別され、レスポンスのredirectフィールドも異なる。
// IdentityMiddlewareの後に配置すること。
func RequireLevel(gate AccessChecker, required model.AccessLevel) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())

			if apiErr := gate.Check(user, required); apiErr != nil {
				slog.Warn("access denied",
					slog.String("code", apiErr.Code),
					slog.String("email", user.Email),
					slog.Int("access", int(user.Access)),
					slog.Int("required", int(required)),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, apiErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
