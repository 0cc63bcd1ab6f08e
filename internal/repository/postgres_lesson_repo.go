package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/robosite/internal/model"
)

// PostgresLessonRepo はPostgreSQLを使用したレッスンリポジトリ。
type PostgresLessonRepo struct {
	db *sql.DB
}

// NewPostgresLessonRepo はPostgresLessonRepoを生成する。
func NewPostgresLessonRepo(db *sql.DB) *PostgresLessonRepo {
	return &PostgresLessonRepo{db: db}
}

// FindByID は指定IDのレッスンを取得する。見つからない場合はnilを返す。
func (r *PostgresLessonRepo) FindByID(ctx context.Context, id int64) (*model.Lesson, error) {
	lesson := &model.Lesson{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, image, unit_id, created_at FROM lessons WHERE id = $1`,
		id,
	).Scan(&lesson.ID, &lesson.Name, &lesson.Kind, &lesson.Image, &lesson.UnitID, &lesson.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lesson by ID: %w", err)
	}

	return lesson, nil
}

// FindByUnitAndName は単元内のレッスンを名前で検索する。見つからない場合はnilを返す。
func (r *PostgresLessonRepo) FindByUnitAndName(ctx context.Context, unitID int64, name string) (*model.Lesson, error) {
	lesson := &model.Lesson{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, image, unit_id, created_at
		 FROM lessons WHERE unit_id = $1 AND name = $2`,
		unitID, name,
	).Scan(&lesson.ID, &lesson.Name, &lesson.Kind, &lesson.Image, &lesson.UnitID, &lesson.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lesson by name: %w", err)
	}

	return lesson, nil
}

// Create はレッスンを作成しIDを採番する。単元内の名前重複はErrDuplicateを返す。
func (r *PostgresLessonRepo) Create(ctx context.Context, lesson *model.Lesson) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO lessons (name, kind, image, unit_id, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		lesson.Name, lesson.Kind, lesson.Image, lesson.UnitID, lesson.CreatedAt,
	).Scan(&lesson.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lesson %s: %w", lesson.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert lesson: %w", err)
	}
	return nil
}

// Update はレッスンの属性を上書きする。対象が存在しない場合はfalseを返す。
func (r *PostgresLessonRepo) Update(ctx context.Context, lesson *model.Lesson) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE lessons SET name = $1, kind = $2, image = $3 WHERE id = $4`,
		lesson.Name, lesson.Kind, lesson.Image, lesson.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("lesson %s: %w", lesson.Name, ErrDuplicate)
		}
		return false, fmt.Errorf("failed to update lesson: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete はレッスンを削除する。配下の教材要素はCASCADE削除される。
func (r *PostgresLessonRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM lessons WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete lesson: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListByUnit は単元配下のレッスン一覧をID順で返す。
func (r *PostgresLessonRepo) ListByUnit(ctx context.Context, unitID int64) ([]*model.Lesson, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, kind, image, unit_id, created_at
		 FROM lessons WHERE unit_id = $1 ORDER BY id`,
		unitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson := &model.Lesson{}
		if err := rows.Scan(&lesson.ID, &lesson.Name, &lesson.Kind, &lesson.Image, &lesson.UnitID, &lesson.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}

	return lessons, nil
}

// compile-time interface check
var _ LessonRepository = (*PostgresLessonRepo)(nil)
