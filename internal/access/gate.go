package access

import (
	"github.com/hitoshi/robosite/internal/model"
)

// Gate は解決済みアイデンティティの権限レベルと操作の要求レベルを比較し、
// 許可・拒否を判定する。ストレージにもアイデンティティにも一切副作用を持たない。
type Gate struct{}

// NewGate はGateを生成する。
func NewGate() *Gate {
	return &Gate{}
}

// Check はuserの権限レベルがrequiredを満たすかを判定する。
// 許可の場合はnil、拒否の場合は拒否理由を表すAPIErrorを返す。
//
// 拒否理由は2種類を厳密に区別する:
//   - 未認証（匿名ゲスト）→ LOGIN_REQUIRED、ログインページへ誘導
//   - 認証済みだが権限不足 → FORBIDDEN、トップページへ誘導
//
// アイデンティティが解決できなかった場合は呼び出し側でゲストが渡されるため、
// 常に「未認証」側に倒れる。昇格方向へのフェイルオープンは起こらない。
func (g *Gate) Check(user *model.User, required model.AccessLevel) *model.APIError {
	if required <= model.AccessGuest {
		return nil
	}
	if user.Anonymous() {
		return model.NewLoginRequiredError()
	}
	if user.Access >= required {
		return nil
	}
	return model.NewForbiddenError(required)
}
