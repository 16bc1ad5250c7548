package shared

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"hrmsync/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// IssueSource is implemented by domain validation errors, such as
// intake.ValidationError, that report problems per field.
type IssueSource interface {
	EachIssue(fn func(field, reason string))
}

// FieldIssues is an IssueSource for checks made in the handler itself.
type FieldIssues []ValidationIssue

func (f *FieldIssues) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		*f = append(*f, ValidationIssue{Field: field, Reason: "is required"})
	}
}

func (f FieldIssues) EachIssue(fn func(field, reason string)) {
	for _, issue := range f {
		fn(issue.Field, issue.Reason)
	}
}

func (f FieldIssues) Error() string {
	parts := make([]string, 0, len(f))
	for _, issue := range f {
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Issues collects the issues of src sorted by field, then reason. Issues
// without a reason are dropped.
func Issues(src IssueSource) []ValidationIssue {
	var out []ValidationIssue
	src.EachIssue(func(field, reason string) {
		if reason == "" {
			return
		}
		out = append(out, ValidationIssue{Field: field, Reason: reason})
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Reject answers 400 with the field issues carried by err and reports
// whether it did. Errors without issues are left to the caller.
func Reject(w http.ResponseWriter, requestID string, err error) bool {
	var src IssueSource
	if !errors.As(err, &src) {
		return false
	}
	issues := Issues(src)
	if len(issues) == 0 {
		return false
	}
	FailValidation(w, requestID, issues)
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}
