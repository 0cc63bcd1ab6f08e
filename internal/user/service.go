// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/robosite/internal/model"
	"github.com/hitoshi/robosite/internal/repository"
)

// Service はユーザー管理のサービス層。
// 明示的な登録、権限・チームの再割り当て、削除を提供する。
// これらはすべて管理者権限のゲートを通過した後に呼ばれる。
type Service struct {
	users    repository.UserRepository
	teams    repository.TeamRepository
	sessions repository.SessionRepository
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	teams repository.TeamRepository,
	sessions repository.SessionRepository,
) *Service {
	return &Service{
		users:    users,
		teams:    teams,
		sessions: sessions,
	}
}

// RegisterParams は明示的なユーザー登録の入力。
type RegisterParams struct {
	Email  string
	Name   string
	Access model.AccessLevel // 0の場合はメンバー（2）として扱う
	TeamID *int64
}

// UpdateParams はユーザー更新の入力。nilのフィールドは変更しない。
type UpdateParams struct {
	Name       *string
	Access     *model.AccessLevel
	TeamID     *int64
	RemoveTeam bool // trueの場合はチームを無所属に戻す
}

// Register は明示的なユーザー登録を行う。
// 書き込みの前にすべての検証を済ませ、検証に失敗した場合は一切書き込まない。
func (s *Service) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	if params.Email == "" {
		return nil, model.NewValidationError("メールアドレスは必須です")
	}

	access := params.Access
	if access == 0 {
		access = model.AccessMember
	}
	if !access.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("アクセスレベルは1〜3で指定してください: %d", access))
	}
	if access == model.AccessGuest && params.TeamID != nil {
		return nil, model.NewValidationError("ゲストはチームに所属できません")
	}

	if params.TeamID != nil {
		if err := s.ensureTeamExists(ctx, *params.TeamID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     params.Email,
		Name:      params.Name,
		Access:    access,
		TeamID:    params.TeamID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("ユーザー", params.Email)
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user registered",
		slog.String("email", user.Email),
		slog.Int("access", int(user.Access)),
	)
	return user, nil
}

// Update はユーザーの権限・チーム・表示名を再割り当てする。
func (s *Service) Update(ctx context.Context, email string, params UpdateParams) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(email)
	}

	if params.Access != nil {
		if !params.Access.Valid() {
			return nil, model.NewValidationError(fmt.Sprintf("アクセスレベルは1〜3で指定してください: %d", *params.Access))
		}
		user.Access = *params.Access
	}

	if params.RemoveTeam {
		user.TeamID = nil
	} else if params.TeamID != nil {
		if err := s.ensureTeamExists(ctx, *params.TeamID); err != nil {
			return nil, err
		}
		user.TeamID = params.TeamID
	}

	if params.Name != nil {
		user.Name = *params.Name
	}

	// ゲストはチームに所属できない。降格時は所属も解消する。
	if user.Access == model.AccessGuest {
		user.TeamID = nil
	}

	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	slog.Info("user updated",
		slog.String("email", user.Email),
		slog.Int("access", int(user.Access)),
	)
	return user, nil
}

// Delete はユーザーと、そのユーザーの全セッションを削除する。
func (s *Service) Delete(ctx context.Context, email string) error {
	deleted, err := s.users.DeleteByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewUserNotFoundError(email)
	}

	// 削除済みユーザーのセッションを残さない。
	// 残っていてもリゾルバがゲストに落とすが、行自体を掃除しておく。
	if err := s.sessions.DeleteByEmail(ctx, email); err != nil {
		slog.Error("failed to delete sessions of removed user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("user deleted", slog.String("email", email))
	return nil
}

// Get は指定メールアドレスのユーザーを取得する。
func (s *Service) Get(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(email)
	}
	return user, nil
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// ensureTeamExists は指定IDのチームが存在することを確認する。
func (s *Service) ensureTeamExists(ctx context.Context, teamID int64) error {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("チームの取得に失敗しました: %w", err)
	}
	if team == nil {
		return model.NewTeamNotFoundError(teamID)
	}
	return nil
}
