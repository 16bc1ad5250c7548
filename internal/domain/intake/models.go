package intake

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

type FieldIssue struct {
	Field  string
	Reason string
}

// ValidationError lists every problem found in a submitted employee.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) EachIssue(fn func(field, reason string)) {
	for _, issue := range e.Issues {
		fn(issue.Field, issue.Reason)
	}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return "invalid employee: " + strings.Join(parts, "; ")
}

// EmployeeRow is what the store persists for an employee root. Sensitive
// columns arrive already sealed.
type EmployeeRow struct {
	SourceID       string
	EmployeeNumber string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	DateOfBirth    *time.Time
	Gender         string
	NationalIDEnc  []byte
	Department     string
	Position       string
	EmploymentType string
	Status         string
	JoinDate       *time.Time
	ProfilePicture []byte
	BankDetailsEnc []byte
	Attributes     []byte
	MigratedBy     string
}

type EmployeeSummary struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"sourceId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	Status     string    `json:"status"`
	Entries    int       `json:"entries"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type MigrateResult struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	Created  bool   `json:"created"`
}

type BulkResult struct {
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Errors   []EntryReject `json:"errors,omitempty"`
}

type EntryReject struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}
