package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/pkg/metrics"
)

// PGRoster reads the roster from the employees table. Nested sections of
// the record live in the profile JSONB column.
type PGRoster struct {
	DB *sql.DB
}

type employeeProfile struct {
	Workload     model.Workload     `json:"workload"`
	Productivity model.Productivity `json:"productivity"`
	Skills       []model.Skill      `json:"skills"`
	Performance  model.Performance  `json:"performance"`
	Behavior     model.Behavior     `json:"behavior"`
}

const employeeColumns = `id, name, email, role, department, manager, join_date, experience_level, current_status, profile`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRoster) List(ctx context.Context) ([]model.Employee, error) {
	defer observeQuery(time.Now())
	const query = `
SELECT ` + employeeColumns + `
FROM employees
ORDER BY position, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return out, nil
}

func (r *PGRoster) Get(ctx context.Context, id string) (model.Employee, error) {
	defer observeQuery(time.Now())
	const query = `
SELECT ` + employeeColumns + `
FROM employees
WHERE id = $1
LIMIT 1`
	e, err := scanEmployee(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Employee{}, model.WrapKind("repository.pg_roster.get", model.ErrEmployeeNotFound, fmt.Errorf("id %q", id))
		}
		return model.Employee{}, err
	}
	return e, nil
}

func (r *PGRoster) Count(ctx context.Context) (int, error) {
	defer observeQuery(time.Now())
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	metrics.UpdateRosterSize(n)
	return n, nil
}

// Upsert writes one employee at the given roster position.
func (r *PGRoster) Upsert(ctx context.Context, position int, e model.Employee) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(msSince(start)) }()

	if err := e.Validate(); err != nil {
		return err
	}
	profile, err := json.Marshal(employeeProfile{
		Workload:     e.Workload,
		Productivity: e.Productivity,
		Skills:       e.Skills,
		Performance:  e.Performance,
		Behavior:     e.Behavior,
	})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	const query = `
INSERT INTO employees (id, position, name, email, role, department, manager, join_date, experience_level, current_status, profile, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
ON CONFLICT (id) DO UPDATE SET
  position = EXCLUDED.position,
  name = EXCLUDED.name,
  email = EXCLUDED.email,
  role = EXCLUDED.role,
  department = EXCLUDED.department,
  manager = EXCLUDED.manager,
  join_date = EXCLUDED.join_date,
  experience_level = EXCLUDED.experience_level,
  current_status = EXCLUDED.current_status,
  profile = EXCLUDED.profile,
  updated_at = now()`
	_, err = r.DB.ExecContext(ctx, query,
		e.ID,
		position,
		e.Name,
		nullableString(e.Email),
		e.Role,
		e.Department,
		e.Manager,
		e.JoinDate,
		string(e.ExperienceLevel),
		string(e.CurrentStatus),
		profile,
	)
	if err != nil {
		return fmt.Errorf("upsert employee %s: %w", e.ID, err)
	}
	return nil
}

// SeedRoster upserts employees in order, keeping their roster positions.
func (r *PGRoster) SeedRoster(ctx context.Context, employees []model.Employee) error {
	for i, e := range employees {
		if err := r.Upsert(ctx, i, e); err != nil {
			return err
		}
	}
	return nil
}

func scanEmployee(row rowScanner) (model.Employee, error) {
	var (
		e       model.Employee
		email   sql.NullString
		level   string
		status  string
		profile []byte
	)
	err := row.Scan(
		&e.ID,
		&e.Name,
		&email,
		&e.Role,
		&e.Department,
		&e.Manager,
		&e.JoinDate,
		&level,
		&status,
		&profile,
	)
	if err != nil {
		return model.Employee{}, err
	}
	if email.Valid {
		e.Email = email.String
	}
	e.ExperienceLevel = model.ExperienceLevel(level)
	e.CurrentStatus = model.Status(status)

	var p employeeProfile
	if err := json.Unmarshal(profile, &p); err != nil {
		return model.Employee{}, fmt.Errorf("%w: profile of %s: %w", ErrInvalidRoster, e.ID, err)
	}
	e.Workload = p.Workload
	e.Productivity = p.Productivity
	e.Skills = p.Skills
	e.Performance = p.Performance
	e.Behavior = p.Behavior

	if err := e.Validate(); err != nil {
		return model.Employee{}, fmt.Errorf("%w: %w", ErrInvalidRoster, err)
	}
	return e, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(msSince(start))
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
