package localstore

import (
	"context"
	"fmt"
	"time"

	"hrmsync/internal/domain/attachments"
	"hrmsync/internal/domain/records"
)

// Get returns the employee with the given local id.
func (s *Store) Get(ctx context.Context, id records.LocalID) (records.Employee, error) {
	for _, emp := range s.GetAll(ctx) {
		if emp.ID == id {
			return emp, nil
		}
	}
	return records.Employee{}, ErrRecordNotFound
}

// Save inserts emp or replaces the stored employee with the same id. A new
// id is assigned when emp has none. The saved record is returned along with
// the SetAll compression flag.
func (s *Store) Save(ctx context.Context, emp records.Employee) (records.Employee, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now().UTC().Format(time.RFC3339)
	if emp.ID == "" {
		emp.ID = records.NewLocalID()
	}
	if emp.CreatedAt == "" {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now

	employees, err := s.snapshot(ctx)
	if err != nil {
		return records.Employee{}, false, err
	}
	replaced := false
	for i := range employees {
		if employees[i].ID == emp.ID {
			employees[i] = emp
			replaced = true
			break
		}
	}
	if !replaced {
		employees = append(employees, emp)
	}
	compressed, err := s.SetAll(ctx, employees)
	return emp, compressed, err
}

// Delete removes the employee with the given id.
func (s *Store) Delete(ctx context.Context, id records.LocalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	employees, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	kept := employees[:0]
	for _, emp := range employees {
		if emp.ID != id {
			kept = append(kept, emp)
		}
	}
	if len(kept) == len(employees) {
		return ErrRecordNotFound
	}
	_, err = s.SetAll(ctx, kept)
	return err
}

// DeleteEntry removes one entry from a nested collection of an employee.
func (s *Store) DeleteEntry(ctx context.Context, employeeID records.LocalID, collection string, entryID records.LocalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	employees, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(employees, employeeID)
	if idx < 0 {
		return ErrRecordNotFound
	}
	switch n := employees[idx].CollectionLen(collection); {
	case n < 0:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	case n == 0:
		return ErrNoEntries
	}
	if !employees[idx].RemoveEntry(collection, entryID) {
		return fmt.Errorf("%s entry %s: %w", collection, entryID, ErrRecordNotFound)
	}
	_, err = s.SetAll(ctx, employees)
	return err
}

// AttachFile runs file through the payload sizing policy and stores the
// result in the attachment field at slotPath, as named by
// Employee.FileSlots. A nil file clears the field.
func (s *Store) AttachFile(ctx context.Context, employeeID records.LocalID, slotPath string, file *attachments.File) (records.FileField, error) {
	field, err := attachments.ProcessFileForStorage(ctx, file, s.opts.Attachments)
	if err != nil {
		return records.FileField{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	employees, err := s.snapshot(ctx)
	if err != nil {
		return records.FileField{}, err
	}
	idx := indexOf(employees, employeeID)
	if idx < 0 {
		return records.FileField{}, ErrRecordNotFound
	}
	found := false
	for _, slot := range employees[idx].FileSlots() {
		if slot.Path == slotPath {
			*slot.Field = field
			found = true
			break
		}
	}
	if !found {
		return records.FileField{}, fmt.Errorf("%w: %s", ErrUnknownFileSlot, slotPath)
	}
	employees[idx].UpdatedAt = s.opts.Now().UTC().Format(time.RFC3339)
	if _, err := s.SetAll(ctx, employees); err != nil {
		return records.FileField{}, err
	}
	return field, nil
}

func indexOf(employees []records.Employee, id records.LocalID) int {
	for i := range employees {
		if employees[i].ID == id {
			return i
		}
	}
	return -1
}
