package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu        sync.Mutex
	created   map[string]string
	bulkPaths []string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/api/v1/auth/login" {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "Admin123!" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"success":false,"error":{"code":"invalid_credentials","message":"invalid credentials"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"token":"tok-1","user":{"id":"u1","tenantId":"t1","role":"HR"}}}`)
		return
	}
	if r.Header.Get("Authorization") != "Bearer tok-1" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"error":{"code":"unauthorized","message":"authentication required"}}`)
		return
	}

	switch {
	case r.URL.Path == "/api/v1/employees/migrate":
		var emp map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&emp)
		source := strings.Trim(string(emp["id"]), `"`)
		id, ok := f.created[source]
		if !ok {
			id = "srv-" + source
			f.created[source] = id
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":"`+id+`","sourceId":"`+source+`","created":true}}`)
	case strings.HasSuffix(r.URL.Path, "/bulk-migrate"):
		f.bulkPaths = append(f.bulkPaths, r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"data":{"accepted":1,"rejected":0}}`)
	case r.URL.Path == "/api/v1/employees":
		_, _ = io.WriteString(w, `{"success":true,"data":{"items":[{"id":"srv-1","sourceId":"1","firstName":"Ada","lastName":"Lovelace"}],"total":1}}`)
	default:
		http.NotFound(w, r)
	}
}

type harness struct {
	t      *testing.T
	dir    string
	server *httptest.Server
	fake   *fakeServer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{"HRMSYNC_STORE", "HRMSYNC_STORE_PATH", "HRMSYNC_TOKEN", "HRMSYNC_SERVER_URL", "HRMSYNC_WORKERS"} {
		t.Setenv(key, "")
	}
	fake := &fakeServer{created: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return &harness{t: t, dir: t.TempDir(), server: srv, fake: fake}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp("test", strings.NewReader(stdin), &out, &errOut)
	base := []string{"hrmsync", "--store", "sqlite", "--path", filepath.Join(h.dir, "local.db"), "--server", h.server.URL}
	err := app.Run(append(base, args...))
	return out.String(), errOut.String(), err
}

func (h *harness) writeFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const employeeJSON = `{"id":1,"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com",
"qualifications":[{"id":"q1","degree":"BSc","institution":"UCL","documentUrl":null}],
"dependents":[{"id":"d1","name":"Byron","relationship":"child","documentUrl":null}]}`

func TestLocalEditing(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "save", h.writeFile("ada.json", employeeJSON))
	require.NoError(t, err)
	assert.Contains(t, out, "saved employee 1")

	out, _, err = h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")

	out, _, err = h.run("", "attach", "--employee", "1", "--slot", "qualifications[q1].documentUrl", h.writeFile("degree.txt", "certified"))
	require.NoError(t, err)
	assert.Contains(t, out, "stored a reference to degree.txt")

	_, _, err = h.run("", "attach", "--employee", "1", "--slot", "nope", h.writeFile("x.txt", "x"))
	assert.Error(t, err)

	out, _, err = h.run("", "delete-entry", "--employee", "1", "--collection", "dependents", "--entry", "d1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted dependents entry d1")

	out, _, err = h.run("", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"fileReference"`)
	assert.NotContains(t, out, "Byron")

	out, _, err = h.run("", "usage")
	require.NoError(t, err)
	assert.Contains(t, out, "MB")
	assert.Contains(t, out, "last updated")

	_, _, err = h.run("", "delete", "1")
	require.NoError(t, err)
	out, _, err = h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no local employees")
}

func TestImportBrowserExport(t *testing.T) {
	h := newHarness(t)
	export := `{"employees":"[{\"id\":5,\"firstName\":\"Grace\",\"lastName\":\"Hopper\",\"email\":\"grace@example.com\"}]","theme":"dark"}`

	out, _, err := h.run(export, "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 keys, 1 employees available")

	out, _, err = h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Grace Hopper")
}

func TestLoginAndMigrate(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "save", h.writeFile("ada.json", employeeJSON))
	require.NoError(t, err)

	_, _, err = h.run("", "migrate")
	require.ErrorIs(t, err, errNotLoggedIn)

	_, _, err = h.run("wrong\n", "login", "--email", "hr@example.com", "--password-stdin")
	require.Error(t, err)

	out, _, err := h.run("Admin123!\n", "login", "--email", "hr@example.com", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as hr@example.com (HR)")

	report := filepath.Join(h.dir, "report.pdf")
	out, _, err = h.run("", "migrate", "--report", report)
	require.NoError(t, err, out)
	assert.Contains(t, out, "migrated 1 employees")
	assert.Contains(t, out, "srv-1")
	assert.ElementsMatch(t, []string{"/api/v1/qualifications/bulk-migrate", "/api/v1/dependents/bulk-migrate"}, h.fake.bulkPaths)

	pdf, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	out, _, err = h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no local employees")

	out, _, err = h.run("", "migrate", "--json")
	require.NoError(t, err, "the saved token survives the clear")
	assert.Contains(t, out, `"message": "no local data"`)

	out, _, err = h.run("", "remote-list")
	require.NoError(t, err)
	assert.Contains(t, out, "srv-1")
	assert.Contains(t, out, "1 of 1")
}

func TestPromptPasswordFromReader(t *testing.T) {
	got, err := promptPassword(strings.NewReader("secret\r\n"), io.Discard, true)
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	_, err = promptPassword(strings.NewReader(""), io.Discard, true)
	assert.ErrorIs(t, err, errEmptyPassword)
}

func TestPromptPasswordFromTerminal(t *testing.T) {
	origRead, origTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTerm })
	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("typed"), nil }

	var prompt bytes.Buffer
	got, err := promptPassword(strings.NewReader("ignored\n"), &prompt, false)
	require.NoError(t, err)
	assert.Equal(t, "typed", got)
	assert.Contains(t, prompt.String(), "Password:")
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, "application/pdf", detectType("cv.PDF", nil))
	assert.Equal(t, "image/png", detectType("blob", []byte("\x89PNG\r\n\x1a\n0000")))
}
