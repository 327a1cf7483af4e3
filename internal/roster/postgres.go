package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const DefaultTable = "employees"

// PostgresSource reads the roster from a table with the columns
// id, name, skills (text[]), experience_years, projects (text[]),
// availability, email, department and location.
type PostgresSource struct {
	DatabaseURL string
	Table       string
	Logger      *zap.Logger
}

func (p *PostgresSource) Load(ctx context.Context) ([]EmployeeRecord, error) {
	if strings.TrimSpace(p.DatabaseURL) == "" {
		return nil, fmt.Errorf("roster database url is not configured")
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, p.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to roster database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pinging roster database: %w", err)
	}

	rows, err := pool.Query(ctx, selectQuery(p.Table))
	if err != nil {
		return nil, fmt.Errorf("querying roster: %w", err)
	}

	scanned, err := pgx.CollectRows(rows, scanEmployee)
	if err != nil {
		return nil, fmt.Errorf("reading roster rows: %w", err)
	}

	return admitRows(scanned, logger), nil
}

// admitRows applies the same validation and duplicate-id rules as file rosters.
func admitRows(rows []EmployeeRecord, logger *zap.Logger) []EmployeeRecord {
	c := newCollector(len(rows), logger)
	for i, record := range rows {
		c.add(record, zap.Int("row", i))
	}
	return c.records
}

func selectQuery(table string) string {
	table = strings.TrimSpace(table)
	if table == "" {
		table = DefaultTable
	}
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()

	return `SELECT id, name, coalesce(skills, '{}'), experience_years, coalesce(projects, '{}'),
		availability, email, department, location
		FROM ` + ident + ` ORDER BY id`
}

func scanEmployee(row pgx.CollectableRow) (EmployeeRecord, error) {
	var (
		record                      EmployeeRecord
		email, department, location *string
	)

	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Skills,
		&record.ExperienceYears,
		&record.Projects,
		&record.Availability,
		&email,
		&department,
		&location,
	)
	if err != nil {
		return EmployeeRecord{}, err
	}

	record.Email = deref(email)
	record.Department = deref(department)
	record.Location = deref(location)

	return record, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
