package web

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordbook/internal/config"
	"recordbook/internal/core"
	"recordbook/internal/export"
	"recordbook/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: config.DatabaseConfig{
			Driver:          config.DriverSQLite,
			Path:            "unused",
			ConnectAttempts: 1,
			ConnectDelay:    time.Second,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
		Pages:   config.PagesConfig{Welcome: "welcome.html", Main: "main.html"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, files *export.FileWriter) *Server {
	t.Helper()

	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Init(context.Background()))

	srv, err := NewServer(core.NewService(st), files, cfg)
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func createRecord(t *testing.T, srv *Server, eid, name string) core.Record {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/records", core.CreateInput{
		EID:    eid,
		Name:   name,
		Rights: "read",
		Status: "active",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created core.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
}

func TestCreateRecord(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	created := createRecord(t, srv, "E100", "Alice")
	assert.Positive(t, created.ID)
	assert.Equal(t, "E100", created.EID)
	assert.False(t, created.UpdatedAt.IsZero())
}

func TestCreateRecordValidation(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/records", core.CreateInput{
		Name:   "No EID",
		Rights: "read",
		Status: "active",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "eid")
}

func TestCreateRecordMalformedBody(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRecordDuplicateEID(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	createRecord(t, srv, "E100", "Alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/records", core.CreateInput{
		EID:    "E100",
		Name:   "Impostor",
		Rights: "read",
		Status: "active",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "DB001", resp.Code)
	assert.NotEmpty(t, resp.Action)
}

func TestListRecords(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	createRecord(t, srv, "E1", "Alice")
	createRecord(t, srv, "E2", "Bob")

	rec := doJSON(t, srv, http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []core.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, "E2", records[0].EID)
	assert.Equal(t, "E1", records[1].EID)
}

func TestListRecordsSearchAndPagination(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	createRecord(t, srv, "E1", "Alice")
	createRecord(t, srv, "E2", "Bob")
	createRecord(t, srv, "E3", "alina")

	rec := doJSON(t, srv, http.MethodGet, "/api/records?search=ali", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []core.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "E3", records[0].EID)
	assert.Equal(t, "E1", records[1].EID)

	rec = doJSON(t, srv, http.MethodGet, "/api/records?skip=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "E2", records[0].EID)
}

func TestUpdateRecord(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	created := createRecord(t, srv, "E1", "Alice")

	name := "Alice Cooper"
	rec := doJSON(t, srv, http.MethodPut, "/api/records/"+itoa(created.ID), core.UpdateInput{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated core.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, "E1", updated.EID)
}

func TestUpdateRecordNotFound(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	name := "Ghost"
	rec := doJSON(t, srv, http.MethodPut, "/api/records/999", core.UpdateInput{Name: &name})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRecordEmptyPatch(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	created := createRecord(t, srv, "E1", "Alice")

	rec := doJSON(t, srv, http.MethodPut, "/api/records/"+itoa(created.ID), core.UpdateInput{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRecord(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	created := createRecord(t, srv, "E1", "Alice")

	rec := doJSON(t, srv, http.MethodDelete, "/api/records/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doJSON(t, srv, http.MethodDelete, "/api/records/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	createRecord(t, srv, "E1", "Alice")
	createRecord(t, srv, "E2", "Bob")

	rec := doJSON(t, srv, http.MethodPost, "/api/search", map[string]string{"query": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)

	var records []core.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "E2", records[0].EID)

	// Blank query returns everything.
	rec = doJSON(t, srv, http.MethodPost, "/api/search", map[string]string{"query": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestExportEndpoints(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	createRecord(t, srv, "E1", "Alice")

	rec := doJSON(t, srv, http.MethodGet, "/api/export/csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "E1")

	rec = doJSON(t, srv, http.MethodGet, "/api/export/json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json")

	var records []core.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestAutoExportOnListing(t *testing.T) {
	cfg := testConfig()
	cfg.Export.AutoCSV = true
	cfg.Export.Dir = t.TempDir()

	srv := newTestServer(t, cfg, &export.FileWriter{Dir: cfg.Export.Dir})
	createRecord(t, srv, "E1", "Alice")

	rec := doJSON(t, srv, http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := os.ReadDir(cfg.Export.Dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].Name(), "records_export_")
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".csv"))
}

func doForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAddFormRedirects(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	rec := doForm(t, srv, "/add", url.Values{
		"eid":    {"E1"},
		"name":   {"Alice"},
		"rights": {"admin"},
		"status": {"active"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/main", rec.Header().Get("Location"))

	list := doJSON(t, srv, http.MethodGet, "/api/records", nil)
	var records []core.Record
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Alice", records[0].Name)
}

func TestAddFormDuplicateEID(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	createRecord(t, srv, "E1", "Alice")

	rec := doForm(t, srv, "/add", url.Values{
		"eid":    {"E1"},
		"name":   {"Impostor"},
		"rights": {"read"},
		"status": {"active"},
	})
	// Form contract gets a plain text error, not JSON.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestUpdateFormSkipsBlankFields(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	created := createRecord(t, srv, "E1", "Alice")

	rec := doForm(t, srv, "/update/"+itoa(created.ID), url.Values{
		"eid":    {""},
		"name":   {"Alice Cooper"},
		"rights": {""},
		"status": {""},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/main", rec.Header().Get("Location"))

	list := doJSON(t, srv, http.MethodGet, "/api/records", nil)
	var records []core.Record
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Alice Cooper", records[0].Name)
	assert.Equal(t, "E1", records[0].EID)
	assert.Equal(t, "read", records[0].Rights)
}

func TestDeleteFormRedirects(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	created := createRecord(t, srv, "E1", "Alice")

	rec := doForm(t, srv, "/delete/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/main", rec.Header().Get("Location"))

	list := doJSON(t, srv, http.MethodGet, "/api/records", nil)
	var records []core.Record
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &records))
	assert.Empty(t, records)
}

func TestPagesRender(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	createRecord(t, srv, "E1", "Alice")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	req = httptest.NewRequest(http.MethodGet, "/main", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alice")
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
