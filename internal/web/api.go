// Package web - JSON API endpoints for programmatic access.

package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ============================================================================
// API Response Types
// ============================================================================

// APIResponse wraps all API responses with success/error info.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// TableListResponse contains the list of tables.
type TableListResponse struct {
	Tables []string `json:"tables"`
}

// ColumnInfo describes a single column in a table.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key"`
	NotNull    bool   `json:"not_null"`
	Default    any    `json:"default,omitempty"`
}

// TableSchemaResponse describes a table's structure.
type TableSchemaResponse struct {
	Name     string       `json:"name"`
	Columns  []ColumnInfo `json:"columns"`
	RowCount int          `json:"row_count"`
}

// RowsResponse contains paginated row data.
type RowsResponse struct {
	Columns    []string         `json:"columns"`
	Rows       []map[string]any `json:"rows"`
	TotalCount int              `json:"total_count"`
	Offset     int              `json:"offset"`
	Limit      int              `json:"limit"`
	HasMore    bool             `json:"has_more"`
}

// QueryRequest is the body for query and explain execution.
type QueryRequest struct {
	SQL string `json:"sql"`
}

// QueryResponse contains query results.
type QueryResponse struct {
	Columns  []string `json:"columns,omitempty"`
	Rows     [][]any  `json:"rows,omitempty"`
	RowCount int      `json:"row_count"`
	Message  string   `json:"message,omitempty"`
}

// ============================================================================
// Helper Functions
// ============================================================================

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful API response.
func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error API response, attaching a hint when one is
// available for the message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   message,
		Hint:    ErrorHint(message),
	})
}

// ============================================================================
// API Handlers
// ============================================================================

// handleTables returns a list of all tables.
// GET /api/tables
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	exec := GetExecutor(r)
	writeSuccess(w, TableListResponse{Tables: exec.Tables()})
}

// handleTableSchema returns the schema for a specific table.
// GET /api/tables/{name}
func (s *Server) handleTableSchema(w http.ResponseWriter, r *http.Request) {
	exec := GetExecutor(r)

	tableName := chi.URLParam(r, "name")
	if !IsValidIdentifier(tableName) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid table name %q", tableName))
		return
	}

	snap, err := exec.Snapshot(tableName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	columns := make([]ColumnInfo, len(snap.Columns))
	for i, col := range snap.Columns {
		info := ColumnInfo{
			Name:       col.Name,
			Type:       col.Type.String(),
			PrimaryKey: col.PrimaryKey,
			NotNull:    col.NotNull,
		}
		if col.Default != nil {
			info.Default = col.Default.Native()
		}
		columns[i] = info
	}

	writeSuccess(w, TableSchemaResponse{
		Name:     snap.Name,
		Columns:  columns,
		RowCount: len(snap.Rows),
	})
}

// handleTableRows returns paginated rows from a table.
// GET /api/tables/{name}/rows?limit=50&offset=0
func (s *Server) handleTableRows(w http.ResponseWriter, r *http.Request) {
	exec := GetExecutor(r)

	tableName := chi.URLParam(r, "name")
	if !IsValidIdentifier(tableName) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid table name %q", tableName))
		return
	}

	snap, err := exec.Snapshot(tableName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	allRows := snap.Rows
	totalCount := len(allRows)
	start := offset
	end := offset + limit
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	colNames := snap.ColumnNames()
	rows := make([]map[string]any, 0, end-start)
	for _, row := range allRows[start:end] {
		values := make(map[string]any, len(colNames))
		for j, val := range row.Values {
			values[colNames[j]] = val.Native()
		}
		rows = append(rows, values)
	}

	writeSuccess(w, RowsResponse{
		Columns:    colNames,
		Rows:       rows,
		TotalCount: totalCount,
		Offset:     offset,
		Limit:      limit,
		HasMore:    end < totalCount,
	})
}

// handleQuery executes an arbitrary SQL statement.
// POST /api/query
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
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

	result, err := exec.ExecuteSQL(req.SQL)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	resp := QueryResponse{
		RowCount: result.RowCount,
		Message:  result.Message,
	}
	if len(result.Columns) > 0 {
		resp.Columns = result.Columns
		resp.Rows = make([][]any, len(result.Rows))
		for i, row := range result.Rows {
			resp.Rows[i] = make([]any, len(row))
			for j, val := range row {
				resp.Rows[i][j] = val.Native()
			}
		}
	}

	writeSuccess(w, resp)
}
