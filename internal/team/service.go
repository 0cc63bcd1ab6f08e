// Package team はチーム管理のドメインロジックを提供する。
package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/robosite/internal/model"
	"github.com/hitoshi/robosite/internal/repository"
)

// Service はチーム管理のサービス層。
type Service struct {
	teams repository.TeamRepository
}

// NewService はServiceを生成する。
func NewService(teams repository.TeamRepository) *Service {
	return &Service{teams: teams}
}

// Create は新しいチームを作成する。
// 名前はシステム全体で一意であり、重複はAlreadyExistsとして報告する。
func (s *Service) Create(ctx context.Context, name string) (*model.Team, error) {
	if name == "" {
		return nil, model.NewValidationError("チーム名は必須です")
	}

	team := &model.Team{
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.teams.Create(ctx, team); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("チーム", name)
		}
		return nil, fmt.Errorf("チームの作成に失敗しました: %w", err)
	}

	slog.Info("team created",
		slog.Int64("team_id", team.ID),
		slog.String("name", team.Name),
	)
	return team, nil
}

// Rename はチーム名を変更する。
func (s *Service) Rename(ctx context.Context, id int64, name string) (*model.Team, error) {
	if name == "" {
		return nil, model.NewValidationError("チーム名は必須です")
	}

	renamed, err := s.teams.Rename(ctx, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("チーム", name)
		}
		return nil, fmt.Errorf("チーム名の変更に失敗しました: %w", err)
	}
	if !renamed {
		return nil, model.NewTeamNotFoundError(id)
	}

	return s.teams.FindByID(ctx, id)
}

// Delete はチームを削除する。
// 所属ユーザーは無所属（team_id NULL）へ戻り、宙吊りの参照は残らない。
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.teams.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("チームの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewTeamNotFoundError(id)
	}

	slog.Info("team deleted", slog.Int64("team_id", id))
	return nil
}

// Get は指定IDのチームを取得する。
func (s *Service) Get(ctx context.Context, id int64) (*model.Team, error) {
	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("チームの取得に失敗しました: %w", err)
	}
	if team == nil {
		return nil, model.NewTeamNotFoundError(id)
	}
	return team, nil
}

// List は全チームを返す。
func (s *Service) List(ctx context.Context) ([]*model.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("チーム一覧の取得に失敗しました: %w", err)
	}
	return teams, nil
}
