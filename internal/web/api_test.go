package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabuladb/tabula/internal/sql/executor"
)

// newTestServer creates a server over a small seeded database.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	exec := executor.New()
	for _, stmt := range []string{
		`CREATE TABLE friends (name TEXT NOT NULL, age INTEGER, health TEXT)`,
		`INSERT INTO friends (name, age, health) VALUES
			('Ororo', 30, 'good'), ('Jean', 29, NULL), ('Logan', 98, 'good')`,
	} {
		_, err := exec.ExecuteSQL(stmt)
		require.NoError(t, err)
	}
	return NewServer(0, exec, newTestLogger())
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestQueryEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodPost, "/api/query",
		QueryRequest{SQL: `SELECT name FROM friends WHERE age > 29 ORDER BY age`})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var qr QueryResponse
	require.NoError(t, json.Unmarshal(data, &qr))

	assert.Equal(t, []string{"name"}, qr.Columns)
	require.Len(t, qr.Rows, 2)
	assert.Equal(t, "Ororo", qr.Rows[0][0])
	assert.Equal(t, "Logan", qr.Rows[1][0])
}

func TestQueryEndpointMutation(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodPost, "/api/query",
		QueryRequest{SQL: `UPDATE friends SET health = 'fine' WHERE health IS NULL`})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, _ := json.Marshal(resp.Data)
	var qr QueryResponse
	require.NoError(t, json.Unmarshal(data, &qr))
	assert.Equal(t, 1, qr.RowCount)
}

func TestQueryEndpointErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		sql    string
		status int
	}{
		{"parse error", `SELEC * FROM friends`, http.StatusBadRequest},
		{"unknown table", `SELECT * FROM nowhere`, http.StatusNotFound},
		{"type error", `SELECT name + age FROM friends`, http.StatusBadRequest},
		{"division by zero", `SELECT age / 0 FROM friends`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doJSON(t, s, http.MethodPost, "/api/query", QueryRequest{SQL: tt.sql})
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestQueryEndpointRejectsBadBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec2, resp := doJSON(t, s, http.MethodPost, "/api/query", QueryRequest{SQL: ""})
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
	assert.Contains(t, resp.Error, "sql field")
}

func TestTablesEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodGet, "/api/tables", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(resp.Data)
	var tl TableListResponse
	require.NoError(t, json.Unmarshal(data, &tl))
	assert.Equal(t, []string{"friends"}, tl.Tables)
}

func TestTableSchemaEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodGet, "/api/tables/friends", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(resp.Data)
	var ts TableSchemaResponse
	require.NoError(t, json.Unmarshal(data, &ts))

	assert.Equal(t, "friends", ts.Name)
	assert.Equal(t, 3, ts.RowCount)
	require.Len(t, ts.Columns, 3)
	assert.Equal(t, "name", ts.Columns[0].Name)
	assert.Equal(t, "TEXT", ts.Columns[0].Type)
	assert.True(t, ts.Columns[0].NotNull)
}

func TestTableSchemaNotFound(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodGet, "/api/tables/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Hint)
}

func TestTableRowsEndpointPagination(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodGet, "/api/tables/friends/rows?limit=2&offset=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(resp.Data)
	var rr RowsResponse
	require.NoError(t, json.Unmarshal(data, &rr))

	assert.Equal(t, 3, rr.TotalCount)
	require.Len(t, rr.Rows, 2)
	assert.Equal(t, "Jean", rr.Rows[0]["name"])
	// Jean's NULL health serializes as JSON null.
	assert.Nil(t, rr.Rows[0]["health"])
	assert.False(t, rr.HasMore)
}

// Concurrent writers through /api/query and readers of the table endpoints
// must not share mutable row state. Run with -race.
func TestConcurrentQueriesAndTableReads(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	const (
		writers    = 4
		readers    = 4
		iterations = 25
	)

	serve := func(method, path string, body []byte) {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				sql := fmt.Sprintf(
					`INSERT INTO friends (name, age) VALUES ('w%d-%d', %d), ('w%d-%d b', %d)`,
					w, i, 20+i, w, i, 30+i)
				body, _ := json.Marshal(QueryRequest{SQL: sql})
				serve(http.MethodPost, "/api/query", body)
			}
		}(w)
	}
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				serve(http.MethodGet, "/api/tables/friends/rows?limit=1000", nil)
				serve(http.MethodGet, "/api/tables/friends", nil)
			}
		}()
	}
	wg.Wait()

	// Every insert is two rows on top of the three seeded ones.
	_, resp := doJSON(t, s, http.MethodGet, "/api/tables/friends", nil)
	data, _ := json.Marshal(resp.Data)
	var ts TableSchemaResponse
	require.NoError(t, json.Unmarshal(data, &ts))
	assert.Equal(t, 3+writers*iterations*2, ts.RowCount)
}

func TestTableRowsRejectsBadName(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doJSON(t, s, http.MethodGet, "/api/tables/bad-name;drop/rows", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
