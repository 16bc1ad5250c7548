package intake

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{DB: db}
}

func (s *PgStore) UpsertEmployee(ctx context.Context, tenantID string, row EmployeeRow) (string, bool, error) {
	var id string
	var created bool
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, source_id, employee_number, first_name, last_name, email, phone, address,
      date_of_birth, gender, national_id_enc, department, position, employment_type, status, join_date,
      profile_picture, bank_details_enc, attributes, migrated_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
    ON CONFLICT (tenant_id, source_id) DO UPDATE
    SET employee_number = EXCLUDED.employee_number,
        first_name = EXCLUDED.first_name,
        last_name = EXCLUDED.last_name,
        email = EXCLUDED.email,
        phone = EXCLUDED.phone,
        address = EXCLUDED.address,
        date_of_birth = EXCLUDED.date_of_birth,
        gender = EXCLUDED.gender,
        national_id_enc = EXCLUDED.national_id_enc,
        department = EXCLUDED.department,
        position = EXCLUDED.position,
        employment_type = EXCLUDED.employment_type,
        status = EXCLUDED.status,
        join_date = EXCLUDED.join_date,
        profile_picture = EXCLUDED.profile_picture,
        bank_details_enc = EXCLUDED.bank_details_enc,
        attributes = EXCLUDED.attributes,
        migrated_by = EXCLUDED.migrated_by,
        updated_at = now()
    RETURNING id, (xmax = 0)
  `,
		tenantID, row.SourceID, nullIfEmpty(row.EmployeeNumber), row.FirstName, row.LastName, row.Email,
		nullIfEmpty(row.Phone), nullIfEmpty(row.Address), row.DateOfBirth, nullIfEmpty(row.Gender), row.NationalIDEnc,
		nullIfEmpty(row.Department), nullIfEmpty(row.Position), nullIfEmpty(row.EmploymentType), row.Status, row.JoinDate,
		nullIfEmptyBytes(row.ProfilePicture), row.BankDetailsEnc, row.Attributes, nullIfEmpty(row.MigratedBy),
	).Scan(&id, &created)
	return id, created, err
}

func (s *PgStore) EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE tenant_id = $1 AND id::text = $2
  `, tenantID, employeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *PgStore) UpsertEntry(ctx context.Context, tenantID, employeeID, collection, sourceID string, payload []byte) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employee_entries (tenant_id, employee_id, collection, source_id, payload)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (employee_id, collection, source_id) DO UPDATE
    SET payload = EXCLUDED.payload, updated_at = now()
  `, tenantID, employeeID, collection, sourceID, payload)
	return err
}

func (s *PgStore) ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]EmployeeSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.source_id, e.first_name, e.last_name, e.email,
           COALESCE(e.department, ''), COALESCE(e.position, ''), e.status,
           (SELECT COUNT(1) FROM employee_entries x WHERE x.employee_id = e.id),
           e.updated_at
    FROM employees e
    WHERE e.tenant_id = $1
    ORDER BY e.last_name, e.first_name
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []EmployeeSummary{}
	for rows.Next() {
		var emp EmployeeSummary
		if err := rows.Scan(&emp.ID, &emp.SourceID, &emp.FirstName, &emp.LastName, &emp.Email,
			&emp.Department, &emp.Position, &emp.Status, &emp.Entries, &emp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *PgStore) CountEmployees(ctx context.Context, tenantID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1", tenantID).Scan(&total)
	return total, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfEmptyBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return value
}
