package access

import (
	"github.com/hitoshi/robosite/internal/model"
)

// DenialRecorder はアクセス拒否の記録インターフェース。
type DenialRecorder interface {
	RecordAccessDenied(reason string)
}

// ObservedGate はGateの判定結果のうち拒否をメトリクスとして記録するデコレータ。
// 判定ロジック自体には一切手を加えない。
type ObservedGate struct {
	gate    *Gate
	metrics DenialRecorder
}

// NewObservedGate はObservedGateを生成する。
func NewObservedGate(gate *Gate, metrics DenialRecorder) *ObservedGate {
	return &ObservedGate{
		gate:    gate,
		metrics: metrics,
	}
}

// Check はGateの判定を委譲し、拒否の場合は理由別に記録する。
func (g *ObservedGate) Check(user *model.User, required model.AccessLevel) *model.APIError {
	apiErr := g.gate.Check(user, required)
	if apiErr == nil {
		return nil
	}

	if g.metrics != nil {
		reason := "forbidden"
		if apiErr.Code == model.ErrCodeLoginRequired {
			reason = "login_required"
		}
		g.metrics.RecordAccessDenied(reason)
	}

	return apiErr
}
