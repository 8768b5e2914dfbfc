// Package catalog implements the schema registry.
//
// EDUCATIONAL NOTES:
// ------------------
// Every database keeps a catalog of what tables exist and what their
// schemas look like. PostgreSQL stores it in pg_class/pg_attribute, SQLite
// in sqlite_master. Ours is an in-memory registry: table names are unique
// (case-insensitive), and creation order is preserved so that listings are
// deterministic.
package catalog

import (
	"strings"

	"github.com/tabuladb/tabula/internal/sql/sqlerr"
	"github.com/tabuladb/tabula/internal/table"
)

// Catalog is the registry of table definitions.
type Catalog struct {
	tables map[string]*table.Table
	order  []string // creation order of lower-cased names
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		tables: make(map[string]*table.Table),
	}
}

// Create registers a new table. The name must not already be taken.
func (c *Catalog) Create(tbl *table.Table) error {
	key := strings.ToLower(tbl.Name)
	if _, exists := c.tables[key]; exists {
		return sqlerr.Schemaf("table %q already exists", tbl.Name)
	}
	c.tables[key] = tbl
	c.order = append(c.order, key)
	return nil
}

// Get resolves a table by name.
func (c *Catalog) Get(name string) (*table.Table, error) {
	tbl, ok := c.tables[strings.ToLower(name)]
	if !ok {
		return nil, sqlerr.Schemaf("no such table %q", name)
	}
	return tbl, nil
}

// Drop removes a table and its rows.
func (c *Catalog) Drop(name string) error {
	key := strings.ToLower(name)
	if _, ok := c.tables[key]; !ok {
		return sqlerr.Schemaf("no such table %q", name)
	}
	delete(c.tables, key)
	for i, n := range c.order {
		if n == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns table names in creation order.
func (c *Catalog) List() []string {
	names := make([]string, 0, len(c.order))
	for _, key := range c.order {
		names = append(names, c.tables[key].Name)
	}
	return names
}
