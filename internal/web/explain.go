// Package web - EXPLAIN endpoint.

package web

import (
	"encoding/json"
	"net/http"

	"github.com/tabuladb/tabula/internal/sql/parser"
)

// ExplainResponse contains the pipeline description for a statement.
type ExplainResponse struct {
	SQL   string   `json:"sql"`
	Steps []string `json:"steps"`
}

// handleExplain describes how a statement would execute, without running
// it. The statement may itself carry an EXPLAIN prefix; it is stripped so
// the endpoint always describes the underlying statement.
// POST /api/explain
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	exec := GetExecutor(r)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SQL == "" {
		writeError(w, http.StatusBadRequest, "sql field is required")
		return
	}

	stmt, err := parser.ParseStatement(req.SQL)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	if ex, ok := stmt.(*parser.ExplainStatement); ok {
		stmt = ex.Statement
	}

	plan, err := exec.Describe(stmt)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeSuccess(w, ExplainResponse{SQL: req.SQL, Steps: plan.Steps})
}
