package repository

import (
	"database/sql"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

const shiftPreferenceColumns = `
	id,
	employee_id,
	to_char(date, 'YYYY-MM-DD'),
	to_char(start_time, 'HH24:MI'),
	to_char(end_time, 'HH24:MI'),
	is_off,
	status,
	notes,
	created_at,
	updated_at,
	version
`

type ShiftPreferenceFilter struct {
	EmployeeID *int64
	StartDate  domain.Date
	EndDate    domain.Date
}

func scanShiftPreference(row scanner) (*domain.ShiftPreference, error) {
	p := &domain.ShiftPreference{}
	var startTime, endTime sql.NullString

	dst := []any{&p.ID, &p.EmployeeID, &p.Date, &startTime, &endTime, &p.IsOff, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt, &p.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if startTime.Valid {
		p.StartTime = &startTime.String
	}
	if endTime.Valid {
		p.EndTime = &endTime.String
	}

	return p, nil
}

// UpsertShiftPreference 按 (employee_id, date) 插入或覆盖登记，返回值表示是否为新插入
func (r *Repository) UpsertShiftPreference(p *domain.ShiftPreference) (bool, error) {
	query := `
		INSERT INTO shift_preferences (employee_id, date, start_time, end_time, is_off, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			is_off = EXCLUDED.is_off,
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			updated_at = NOW(),
			version = shift_preferences.version + 1
		RETURNING id, created_at, updated_at, version, (xmax = 0)
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var inserted bool
	args := []any{p.EmployeeID, p.Date, nullString(p.StartTime), nullString(p.EndTime), p.IsOff, p.Status, p.Notes}
	dst := []any{&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Version, &inserted}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return false, err
	}

	return inserted, nil
}

func (r *Repository) GetShiftPreferenceByID(id int64) (*domain.ShiftPreference, error) {
	query := `SELECT ` + shiftPreferenceColumns + ` FROM shift_preferences WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	return scanShiftPreference(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetShiftPreferences(filter ShiftPreferenceFilter) ([]*domain.ShiftPreference, error) {
	query := `
		SELECT ` + shiftPreferenceColumns + `
		FROM shift_preferences
		WHERE date BETWEEN $1 AND $2
			AND ($3::BIGINT IS NULL OR employee_id = $3)
		ORDER BY date, employee_id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, filter.StartDate, filter.EndDate, nullInt64(filter.EmployeeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	preferences := make([]*domain.ShiftPreference, 0)
	for rows.Next() {
		p, err := scanShiftPreference(rows)
		if err != nil {
			return nil, err
		}
		preferences = append(preferences, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return preferences, nil
}

// UpdateShiftPreference 带版本号检查，版本不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateShiftPreference(p *domain.ShiftPreference) error {
	query := `
		UPDATE shift_preferences
		SET
			date = $1,
			start_time = $2,
			end_time = $3,
			is_off = $4,
			status = $5,
			notes = $6,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING updated_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{p.Date, nullString(p.StartTime), nullString(p.EndTime), p.IsOff, p.Status, p.Notes, p.ID, p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.UpdatedAt, &p.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShiftPreference(id int64) error {
	query := `DELETE FROM shift_preferences WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result)
}
