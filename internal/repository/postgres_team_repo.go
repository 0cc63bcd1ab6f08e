package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/robosite/internal/model"
)

// PostgresTeamRepo はPostgreSQLを使用したチームリポジトリ。
type PostgresTeamRepo struct {
	db *sql.DB
}

// NewPostgresTeamRepo はPostgresTeamRepoを生成する。
func NewPostgresTeamRepo(db *sql.DB) *PostgresTeamRepo {
	return &PostgresTeamRepo{db: db}
}

// FindByID は指定IDのチームを取得する。見つからない場合はnilを返す。
func (r *PostgresTeamRepo) FindByID(ctx context.Context, id int64) (*model.Team, error) {
	team := &model.Team{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM teams WHERE id = $1`,
		id,
	).Scan(&team.ID, &team.Name, &team.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find team by ID: %w", err)
	}

	return team, nil
}

// FindByName はチーム名でチームを検索する。見つからない場合はnilを返す。
func (r *PostgresTeamRepo) FindByName(ctx context.Context, name string) (*model.Team, error) {
	team := &model.Team{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM teams WHERE name = $1`,
		name,
	).Scan(&team.ID, &team.Name, &team.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find team by name: %w", err)
	}

	return team, nil
}

// Create はチームを作成しIDを採番する。名前の重複はErrDuplicateを返す。
func (r *PostgresTeamRepo) Create(ctx context.Context, team *model.Team) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO teams (name, created_at) VALUES ($1, $2) RETURNING id`,
		team.Name, team.CreatedAt,
	).Scan(&team.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("team %s: %w", team.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// Rename はチーム名を変更する。対象が存在しない場合はfalseを返す。
func (r *PostgresTeamRepo) Rename(ctx context.Context, id int64, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teams SET name = $1 WHERE id = $2`,
		name, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("team %s: %w", name, ErrDuplicate)
		}
		return false, fmt.Errorf("failed to rename team: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete はチームを削除する。
// 所属ユーザーのteam_idはスキーマのON DELETE SET NULLによりNULLへ戻り、
// 参照の宙吊りは発生しない。
func (r *PostgresTeamRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM teams WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete team: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// List は全チームをID順で返す。
func (r *PostgresTeamRepo) List(ctx context.Context) ([]*model.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM teams ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*model.Team
	for rows.Next() {
		team := &model.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}

	return teams, nil
}

// compile-time interface check
var _ TeamRepository = (*PostgresTeamRepo)(nil)
