package migration

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"hrmsync/internal/domain/localstore"
	"hrmsync/internal/domain/records"
	"hrmsync/internal/platform/kv"
	"hrmsync/internal/requestctx"
)

type createCall struct {
	emp     records.Employee
	batchID string
}

type bulkCall struct {
	collection string
	employeeID string
	batchID    string
}

type fakeRemote struct {
	mu         sync.Mutex
	failCreate map[records.LocalID]error
	failBulk   map[string]error
	rejectBulk map[string]int
	onCreate   func(records.Employee)
	creates    []createCall
	bulks      []bulkCall
	serverIDs  map[records.LocalID]string
	nextID     int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{serverIDs: map[records.LocalID]string{}}
}

func (f *fakeRemote) CreateEmployee(ctx context.Context, emp records.Employee) (string, error) {
	if f.onCreate != nil {
		f.onCreate(emp)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{emp: emp, batchID: requestctx.BatchID(ctx)})
	if err := f.failCreate[emp.ID]; err != nil {
		return "", err
	}
	// upsert by source id
	if id, ok := f.serverIDs[emp.ID]; ok {
		return id, nil
	}
	f.nextID++
	id := "srv-" + strconv.Itoa(f.nextID)
	f.serverIDs[emp.ID] = id
	return id, nil
}

func (f *fakeRemote) BulkMigrate(ctx context.Context, collection, employeeID string, entries any) (BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulks = append(f.bulks, bulkCall{collection: collection, employeeID: employeeID, batchID: requestctx.BatchID(ctx)})
	if err := f.failBulk[collection]; err != nil {
		return BulkResult{}, err
	}
	n := lenOf(entries)
	rejected := f.rejectBulk[collection]
	return BulkResult{Accepted: n - rejected, Rejected: rejected}, nil
}

func lenOf(entries any) int {
	switch v := entries.(type) {
	case []records.Qualification:
		return len(v)
	case []records.Dependent:
		return len(v)
	case []records.Training:
		return len(v)
	case []records.MedicalRecord:
		return len(v)
	}
	return 0
}

func seededStore(t *testing.T, employees []records.Employee) (*localstore.Store, kv.Storage) {
	t.Helper()
	storage := kv.NewMemoryStorage(0)
	if err := storage.Set(context.Background(), "token", "jwt"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	store := localstore.New(storage, localstore.Options{})
	if len(employees) > 0 {
		if _, err := store.SetAll(context.Background(), employees); err != nil {
			t.Fatalf("seed employees: %v", err)
		}
	}
	return store, storage
}

func threeEmployees() []records.Employee {
	return []records.Employee{
		{
			ID: "1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			Qualifications: []records.Qualification{{ID: "11", Degree: "BSc", Institution: "London"}},
			Trainings:      []records.Training{{ID: "12", Title: "Safety"}},
			SalaryHistory:  []records.SalaryEntry{{ID: "13", BasicSalary: "1000"}},
		},
		{ID: "2", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		{
			ID: "3", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com",
			Dependents: []records.Dependent{{ID: "31", Name: "Kit", Relationship: "child"}},
		},
	}
}

func TestMigrateEmptyStore(t *testing.T) {
	store, _ := seededStore(t, nil)
	remote := newFakeRemote()

	summary := NewOrchestrator(store, remote, Options{}).Migrate(context.Background())
	if summary.Success || summary.MigratedCount != 0 || summary.Message != MessageNoData {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(remote.creates) != 0 {
		t.Fatal("expected no remote calls")
	}
}

func TestMigrateAllSucceedClearsStore(t *testing.T) {
	ctx := context.Background()
	store, storage := seededStore(t, threeEmployees())
	remote := newFakeRemote()
	o := NewOrchestrator(store, remote, Options{})

	summary := o.Migrate(ctx)
	if !summary.Success || summary.MigratedCount != 3 || summary.FailedCount != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.BatchID == "" {
		t.Fatal("expected batch id")
	}
	if len(store.GetAll(ctx)) != 0 {
		t.Fatal("expected local data cleared")
	}
	if token, ok, _ := storage.Get(ctx, "token"); !ok || token != "jwt" {
		t.Fatal("expected session token preserved")
	}

	// root payload carries salary history but not the bulk-migrated collections
	root := remote.creates[0].emp
	if len(root.Qualifications) != 0 || len(root.Trainings) != 0 || len(root.SalaryHistory) != 1 {
		t.Fatalf("unexpected root payload %+v", root)
	}
	if len(remote.bulks) != 3 {
		t.Fatalf("expected 3 bulk calls, got %+v", remote.bulks)
	}
	for _, b := range remote.bulks {
		if b.employeeID == "" {
			t.Fatalf("bulk call without employee id: %+v", b)
		}
		if b.batchID != summary.BatchID {
			t.Fatalf("bulk call outside the batch: %+v", b)
		}
	}
	if remote.creates[0].batchID != summary.BatchID {
		t.Fatalf("create call carries batch %q, want %q", remote.creates[0].batchID, summary.BatchID)
	}

	again := o.Migrate(ctx)
	if again.Success || again.MigratedCount != 0 || again.Message != MessageNoData {
		t.Fatalf("expected second run to see empty store, got %+v", again)
	}
}

func TestMigratePartialFailureKeepsStore(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t, threeEmployees())
	remote := newFakeRemote()
	remote.failCreate = map[records.LocalID]error{"2": errors.New("status 500")}

	summary := NewOrchestrator(store, remote, Options{}).Migrate(ctx)
	if summary.Success || summary.MigratedCount != 2 || summary.FailedCount != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.Details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(summary.Details))
	}
	failed := summary.Details[1]
	if failed.EmployeeID != "2" || failed.Status != StatusFailed || failed.Error != "status 500" || failed.NewID != "" {
		t.Fatalf("unexpected failed detail %+v", failed)
	}
	if summary.Details[2].Status != StatusSuccess {
		t.Fatal("expected record after failure to be attempted")
	}
	if got := store.GetAll(ctx); len(got) != 3 {
		t.Fatalf("expected store untouched, got %d employees", len(got))
	}
}

func TestMigrateCollectionFailureMarksRecordFailed(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t, threeEmployees())
	remote := newFakeRemote()
	remote.failBulk = map[string]error{records.CollectionTrainings: errors.New("bad request")}
	remote.rejectBulk = map[string]int{records.CollectionDependents: 1}
	o := NewOrchestrator(store, remote, Options{})

	summary := o.Migrate(ctx)
	if summary.Success || summary.MigratedCount != 1 || summary.FailedCount != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	first := summary.Details[0]
	if first.NewID == "" {
		t.Fatal("expected server id kept after collection failure")
	}
	if len(first.Collections) != 2 {
		t.Fatalf("expected 2 collection results, got %+v", first.Collections)
	}
	if c := first.Collections[1]; c.Name != records.CollectionTrainings || c.Error != "bad request" {
		t.Fatalf("unexpected trainings result %+v", c)
	}
	if c := summary.Details[2].Collections[0]; c.Rejected != 1 || !c.Failed() {
		t.Fatalf("expected rejected dependents, got %+v", c)
	}

	// retry after the server recovers reuses the same server ids
	ids := map[records.LocalID]string{}
	for _, d := range summary.Details {
		ids[d.EmployeeID] = d.NewID
	}
	remote.failBulk = nil
	remote.rejectBulk = nil
	retry := o.Migrate(ctx)
	if !retry.Success {
		t.Fatalf("expected retry to succeed, got %+v", retry)
	}
	for _, d := range retry.Details {
		if ids[d.EmployeeID] != d.NewID {
			t.Fatalf("expected stable server id for %s", d.EmployeeID)
		}
	}
}

func TestMigrateMissingServerID(t *testing.T) {
	store, _ := seededStore(t, threeEmployees()[1:2])
	summary := NewOrchestrator(store, emptyIDRemote{}, Options{}).Migrate(context.Background())
	if summary.Success || summary.FailedCount != 1 || summary.Details[0].Error != ErrMissingID.Error() {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

type emptyIDRemote struct{}

func (emptyIDRemote) CreateEmployee(context.Context, records.Employee) (string, error) {
	return "", nil
}

func (emptyIDRemote) BulkMigrate(context.Context, string, string, any) (BulkResult, error) {
	return BulkResult{}, nil
}

func TestMigrateCanceledBetweenRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, _ := seededStore(t, threeEmployees())
	remote := newFakeRemote()
	remote.onCreate = func(records.Employee) { cancel() }

	summary := NewOrchestrator(store, remote, Options{Workers: 1}).Migrate(ctx)
	if summary.Success || summary.Message != MessageCanceled {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.Details) != 1 || summary.Details[0].Status != StatusSuccess {
		t.Fatalf("expected the in-flight record to finish, got %+v", summary.Details)
	}
	if len(remote.bulks) != 2 {
		t.Fatalf("expected collections of the in-flight record submitted, got %d", len(remote.bulks))
	}
	if got := store.GetAll(context.Background()); len(got) != 3 {
		t.Fatalf("expected store untouched, got %d", len(got))
	}
}

// cancelAwareStorage fails once its context is canceled, like a remote
// backend would.
type cancelAwareStorage struct {
	*kv.MemoryStorage
}

func (c cancelAwareStorage) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.MemoryStorage.Remove(ctx, key)
}

func (c cancelAwareStorage) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.MemoryStorage.Keys(ctx)
}

func TestMigrateCanceledDuringLastRecordStillClears(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	storage := cancelAwareStorage{MemoryStorage: kv.NewMemoryStorage(0)}
	_ = storage.Set(context.Background(), "token", "jwt")
	store := localstore.New(storage, localstore.Options{})
	if _, err := store.SetAll(context.Background(), threeEmployees()); err != nil {
		t.Fatalf("seed employees: %v", err)
	}
	remote := newFakeRemote()
	remote.onCreate = func(emp records.Employee) {
		if emp.ID == "3" {
			cancel()
		}
	}

	summary := NewOrchestrator(store, remote, Options{Workers: 1}).Migrate(ctx)
	if !summary.Success || summary.MigratedCount != 3 {
		t.Fatalf("expected success after late cancel, got %+v", summary)
	}
	if got := store.GetAll(context.Background()); len(got) != 0 {
		t.Fatalf("expected local data cleared, got %d employees", len(got))
	}
	if token, ok, _ := storage.Get(context.Background(), "token"); !ok || token != "jwt" {
		t.Fatal("expected session token preserved")
	}
}

func TestMigrateWorkerPoolKeepsSourceOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t, threeEmployees())
	remote := newFakeRemote()

	summary := NewOrchestrator(store, remote, Options{Workers: 3, RateLimit: 1000}).Migrate(ctx)
	if !summary.Success {
		t.Fatalf("unexpected summary %+v", summary)
	}
	for i, want := range []records.LocalID{"1", "2", "3"} {
		if summary.Details[i].EmployeeID != want {
			t.Fatalf("detail %d: expected %s, got %s", i, want, summary.Details[i].EmployeeID)
		}
	}
}

func TestWriteReportPDF(t *testing.T) {
	summary := Summary{
		BatchID:       "b-1",
		Message:       "migrated 1 of 2 employees, 1 failed; local data kept for retry",
		MigratedCount: 1,
		FailedCount:   1,
		Details: []Result{
			{EmployeeID: "1", Name: "Ada Lovelace", NewID: "srv-1", Status: StatusSuccess},
			{EmployeeID: "2", Name: "Grace Hopper", Status: StatusFailed, Error: "status 500: internal server error while saving"},
		},
	}
	var buf bytes.Buffer
	if err := WriteReportPDF(&buf, summary); err != nil {
		t.Fatalf("write report: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("expected PDF output")
	}
}

func TestShorten(t *testing.T) {
	if got := shorten("abcdef", 4); got != "abc~" {
		t.Fatalf("unexpected %q", got)
	}
	if got := shorten("abc", 4); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
}
