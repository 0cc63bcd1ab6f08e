// Package access はリクエストごとのアイデンティティ解決と権限判定を提供する。
//
// セッションに保持されたユーザー情報はあくまでキャッシュであり、
// 権限判定の前に必ず永続化層から最新のレコードを取り直す。
// 管理者によるアクセスレベルやチームの変更が、古いセッションを通じて
// 無効化されることを防ぐためである。
package access

import (
	"context"
	"log/slog"

	"github.com/hitoshi/robosite/internal/model"
	"github.com/hitoshi/robosite/internal/repository"
)

// UserFinder はアイデンティティ解決に必要なユーザー検索インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindBySubject(ctx context.Context, subject string) (*model.User, error)
}

// Resolver はセッション状態から現在のユーザーの正本を解決する。
type Resolver struct {
	users UserFinder
}

// NewResolver はResolverを生成する。
func NewResolver(users UserFinder) *Resolver {
	return &Resolver{users: users}
}

// Resolve はセッション状態から1リクエスト分の正式なユーザーレコードを返す。
//
// 解決手順:
//  1. セッションにemailがあればemailで正本を取り直す。
//     見つかればセッションキャッシュを上書きして返す。
//     見つからなければ（ユーザー削除済み）キャッシュを破棄してゲストに落とす。
//  2. emailがなくsubjectのみの場合はsubjectで同様に取り直す。
//  3. 利用可能なセッション情報がなければ匿名ゲストを返す。
//
// 永続化層の失敗は昇格方向に倒さない: 解決できない場合は常にゲスト扱いとし、
// エラーでリクエストを止めない。
func (r *Resolver) Resolve(ctx context.Context, sc *model.SessionContext) *model.User {
	if !sc.HasIdentity() {
		return model.GuestUser()
	}

	if sc.Email != "" {
		user, err := r.users.FindByEmail(ctx, sc.Email)
		if err != nil {
			slog.Error("failed to refresh identity by email",
				slog.String("error", err.Error()),
			)
			return model.GuestUser()
		}
		if user != nil {
			sc.CacheUser(user)
			return user
		}
		// emailが指すユーザーは既に存在しない。セッションなしと同じ扱い。
		sc.Evict()
		return model.GuestUser()
	}

	user, err := r.users.FindBySubject(ctx, sc.Subject)
	if err != nil {
		slog.Error("failed to refresh identity by subject",
			slog.String("error", err.Error()),
		)
		return model.GuestUser()
	}
	if user != nil {
		sc.CacheUser(user)
		return user
	}

	sc.Evict()
	return model.GuestUser()
}

// compile-time interface check
var _ UserFinder = (repository.UserRepository)(nil)
