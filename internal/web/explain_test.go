package web

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodPost, "/api/explain",
		QueryRequest{SQL: `SELECT name FROM friends WHERE age > 30 ORDER BY name LIMIT 2`})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, _ := json.Marshal(resp.Data)
	var er ExplainResponse
	require.NoError(t, json.Unmarshal(data, &er))

	require.NotEmpty(t, er.Steps)
	assert.Equal(t, "SCAN friends", er.Steps[0])
	assert.Contains(t, er.Steps, "LIMIT 2")
}

func TestExplainStripsExplainPrefix(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodPost, "/api/explain",
		QueryRequest{SQL: `EXPLAIN SELECT * FROM friends`})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, _ := json.Marshal(resp.Data)
	var er ExplainResponse
	require.NoError(t, json.Unmarshal(data, &er))
	assert.Equal(t, "SCAN friends", er.Steps[0])
}

func TestExplainDoesNotExecute(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doJSON(t, s, http.MethodPost, "/api/explain",
		QueryRequest{SQL: `DELETE FROM friends`})
	assert.Equal(t, http.StatusOK, rec.Code)

	_, resp := doJSON(t, s, http.MethodPost, "/api/query",
		QueryRequest{SQL: `SELECT COUNT(*) AS n FROM friends`})
	data, _ := json.Marshal(resp.Data)
	var qr QueryResponse
	require.NoError(t, json.Unmarshal(data, &qr))
	assert.Equal(t, float64(3), qr.Rows[0][0])
}

func TestExplainUnknownTable(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodPost, "/api/explain",
		QueryRequest{SQL: `SELECT * FROM nowhere`})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}
