package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/robosite/internal/model"
)

// PostgresUnitRepo はPostgreSQLを使用した単元リポジトリ。
type PostgresUnitRepo struct {
	db *sql.DB
}

// NewPostgresUnitRepo はPostgresUnitRepoを生成する。
func NewPostgresUnitRepo(db *sql.DB) *PostgresUnitRepo {
	return &PostgresUnitRepo{db: db}
}

// FindByID は指定IDの単元を取得する。見つからない場合はnilを返す。
func (r *PostgresUnitRepo) FindByID(ctx context.Context, id int64) (*model.Unit, error) {
	unit := &model.Unit{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM units WHERE id = $1`,
		id,
	).Scan(&unit.ID, &unit.Name, &unit.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find unit by ID: %w", err)
	}

	return unit, nil
}

// FindByName は単元名で単元を検索する。見つからない場合はnilを返す。
func (r *PostgresUnitRepo) FindByName(ctx context.Context, name string) (*model.Unit, error) {
	unit := &model.Unit{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM units WHERE name = $1`,
		name,
	).Scan(&unit.ID, &unit.Name, &unit.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find unit by name: %w", err)
	}

	return unit, nil
}

// Create は単元を作成しIDを採番する。名前の重複はErrDuplicateを返す。
func (r *PostgresUnitRepo) Create(ctx context.Context, unit *model.Unit) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO units (name, created_at) VALUES ($1, $2) RETURNING id`,
		unit.Name, unit.CreatedAt,
	).Scan(&unit.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("unit %s: %w", unit.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert unit: %w", err)
	}
	return nil
}

// Update は単元名を上書きする。対象が存在しない場合はfalseを返す。
func (r *PostgresUnitRepo) Update(ctx context.Context, unit *model.Unit) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE units SET name = $1 WHERE id = $2`,
		unit.Name, unit.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("unit %s: %w", unit.Name, ErrDuplicate)
		}
		return false, fmt.Errorf("failed to update unit: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete は単元を削除する。配下のレッスンはCASCADE削除される。
func (r *PostgresUnitRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM units WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete unit: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// List は全単元をID順で返す。
func (r *PostgresUnitRepo) List(ctx context.Context) ([]*model.Unit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM units ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []*model.Unit
	for rows.Next() {
		unit := &model.Unit{}
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate units: %w", err)
	}

	return units, nil
}

// compile-time interface check
var _ UnitRepository = (*PostgresUnitRepo)(nil)
