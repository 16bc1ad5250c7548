// Package intake receives employees migrated from client-side storage and
// stores them keyed by their local ids, so repeated submissions update
// instead of duplicating.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"hrmsync/internal/domain/records"
	cryptoutil "hrmsync/internal/platform/crypto"
)

type Store interface {
	UpsertEmployee(ctx context.Context, tenantID string, row EmployeeRow) (id string, created bool, err error)
	EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error)
	UpsertEntry(ctx context.Context, tenantID, employeeID, collection, sourceID string, payload []byte) error
	ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]EmployeeSummary, error)
	CountEmployees(ctx context.Context, tenantID string) (int, error)
}

type Service struct {
	store  Store
	crypto *cryptoutil.Service
}

func NewService(store Store, crypto *cryptoutil.Service) *Service {
	return &Service{store: store, crypto: crypto}
}

// MigrateEmployee validates emp and upserts it by its local id. Collections
// that are migrated separately are ignored here; bank details are sealed,
// and salary history, assets and unknown fields are kept as attributes.
func (s *Service) MigrateEmployee(ctx context.Context, tenantID, actorID string, emp records.Employee) (MigrateResult, error) {
	row, err := s.buildRow(emp)
	if err != nil {
		return MigrateResult{}, err
	}
	row.MigratedBy = actorID

	id, created, err := s.store.UpsertEmployee(ctx, tenantID, row)
	if err != nil {
		return MigrateResult{}, fmt.Errorf("store employee %s: %w", row.SourceID, err)
	}
	return MigrateResult{ID: id, SourceID: row.SourceID, Created: created}, nil
}

func (s *Service) buildRow(emp records.Employee) (EmployeeRow, error) {
	var issues []FieldIssue
	add := func(field, reason string) { issues = append(issues, FieldIssue{Field: field, Reason: reason}) }

	sourceID := strings.TrimSpace(emp.ID.String())
	if sourceID == "" {
		add("id", "is required")
	}
	if strings.TrimSpace(emp.FirstName) == "" {
		add("firstName", "is required")
	}
	if strings.TrimSpace(emp.LastName) == "" {
		add("lastName", "is required")
	}
	email := strings.TrimSpace(emp.Email)
	if email == "" {
		add("email", "is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		add("email", "must be a valid email address")
	}
	dob, ok := parseDate(emp.DateOfBirth)
	if !ok {
		add("dateOfBirth", "must be a valid date in YYYY-MM-DD format")
	}
	joined, ok := parseDate(emp.JoinDate)
	if !ok {
		add("joinDate", "must be a valid date in YYYY-MM-DD format")
	}
	if len(issues) > 0 {
		return EmployeeRow{}, &ValidationError{Issues: issues}
	}

	row := EmployeeRow{
		SourceID:       sourceID,
		EmployeeNumber: emp.EmployeeNumber,
		FirstName:      strings.TrimSpace(emp.FirstName),
		LastName:       strings.TrimSpace(emp.LastName),
		Email:          strings.ToLower(email),
		Phone:          emp.Phone,
		Address:        emp.Address,
		DateOfBirth:    dob,
		Gender:         emp.Gender,
		Department:     emp.Department,
		Position:       emp.Position,
		EmploymentType: emp.EmploymentType,
		Status:         emp.Status,
		JoinDate:       joined,
	}
	if row.Status == "" {
		row.Status = "active"
	}

	var err error
	if row.NationalIDEnc, err = s.crypto.EncryptString(emp.NationalID); err != nil {
		return EmployeeRow{}, fmt.Errorf("seal national id: %w", err)
	}
	if row.BankDetailsEnc, err = s.crypto.EncryptJSON(emp.BankDetails); err != nil {
		return EmployeeRow{}, fmt.Errorf("seal bank details: %w", err)
	}
	if !emp.ProfilePicture.IsEmpty() {
		if row.ProfilePicture, err = json.Marshal(emp.ProfilePicture); err != nil {
			return EmployeeRow{}, err
		}
	}
	attrs := map[string]any{}
	for key, raw := range emp.Extra {
		attrs[key] = raw
	}
	if len(emp.SalaryHistory) > 0 {
		attrs[records.CollectionSalaryHistory] = emp.SalaryHistory
	}
	if len(emp.Assets) > 0 {
		attrs[records.CollectionAssets] = emp.Assets
	}
	if row.Attributes, err = json.Marshal(attrs); err != nil {
		return EmployeeRow{}, err
	}
	return row, nil
}

// BulkMigrate upserts entries of one collection for an already migrated
// employee. Entries without an id are rejected individually; the rest of
// the batch still goes through.
func (s *Service) BulkMigrate(ctx context.Context, tenantID, employeeID, collection string, entries []json.RawMessage) (BulkResult, error) {
	if !slices.Contains(records.MigratedCollections, collection) {
		return BulkResult{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	exists, err := s.store.EmployeeExists(ctx, tenantID, employeeID)
	if err != nil {
		return BulkResult{}, err
	}
	if !exists {
		return BulkResult{}, ErrEmployeeNotFound
	}

	var out BulkResult
	reject := func(i int, reason string) {
		out.Rejected++
		out.Errors = append(out.Errors, EntryReject{Index: i, Reason: reason})
	}
	for i, raw := range entries {
		var head struct {
			ID records.LocalID `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			reject(i, "entry must be an object")
			continue
		}
		if strings.TrimSpace(head.ID.String()) == "" {
			reject(i, "id is required")
			continue
		}
		if err := s.store.UpsertEntry(ctx, tenantID, employeeID, collection, head.ID.String(), raw); err != nil {
			reject(i, "could not be stored")
			continue
		}
		out.Accepted++
	}
	return out, nil
}

func (s *Service) ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]EmployeeSummary, int, error) {
	total, err := s.store.CountEmployees(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.store.ListEmployees(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// parseDate accepts "", YYYY-MM-DD or RFC3339.
func parseDate(value string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return &parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed, true
	}
	return nil, false
}
