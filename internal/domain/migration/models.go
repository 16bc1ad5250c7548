package migration

import (
	"context"
	"time"

	"hrmsync/internal/domain/records"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Remote is the server side of a migration.
type Remote interface {
	// CreateEmployee submits the employee root and returns the server id.
	CreateEmployee(ctx context.Context, emp records.Employee) (string, error)
	// BulkMigrate submits every entry of one nested collection for the
	// employee with the given server id.
	BulkMigrate(ctx context.Context, collection, employeeID string, entries any) (BulkResult, error)
}

// Store is the local data set being migrated.
type Store interface {
	GetAll(ctx context.Context) []records.Employee
	ClearExceptPreserved(ctx context.Context) error
}

type BulkResult struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

type CollectionResult struct {
	Name      string `json:"name"`
	Submitted int    `json:"submitted"`
	Accepted  int    `json:"accepted"`
	Rejected  int    `json:"rejected"`
	Error     string `json:"error,omitempty"`
}

func (c CollectionResult) Failed() bool {
	return c.Error != "" || c.Rejected > 0
}

// Result is the outcome for one local employee. NewID is set whenever the
// root record was created, even if a collection failed afterwards.
type Result struct {
	EmployeeID  records.LocalID    `json:"employeeId"`
	Name        string             `json:"name,omitempty"`
	NewID       string             `json:"newId,omitempty"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
	Collections []CollectionResult `json:"collections,omitempty"`
}

type Summary struct {
	BatchID       string    `json:"batchId,omitempty"`
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	MigratedCount int       `json:"migratedCount"`
	FailedCount   int       `json:"failedCount"`
	Details       []Result  `json:"details"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}
