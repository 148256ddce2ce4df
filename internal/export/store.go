// # internal/export/store.go
//
// SQLite export. A snapshot of the graph goes into three tables so it
// can be queried with plain SQL after the run.
package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"uanodeset/internal/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS namespaces (
	idx  INTEGER PRIMARY KEY,
	uri  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS nodes (
	node_id      TEXT PRIMARY KEY,
	node_class   TEXT NOT NULL,
	browse_name  TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	parent_id    TEXT NOT NULL DEFAULT '',
	data_type    TEXT NOT NULL DEFAULT '',
	value_rank   TEXT NOT NULL DEFAULT '',
	is_abstract  TEXT NOT NULL DEFAULT '',
	value_xml    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS "references" (
	source_id      TEXT NOT NULL,
	reference_type TEXT NOT NULL,
	target_id      TEXT NOT NULL,
	PRIMARY KEY (source_id, reference_type, target_id)
);
CREATE INDEX IF NOT EXISTS idx_references_target ON "references" (target_id);
`

// Store writes graph snapshots to a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the database and applies the schema.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveGraph replaces the stored snapshot with the given graph in one
// transaction.
func (s *Store) SaveGraph(ctx context.Context, g *graph.UAGraph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"namespaces", "nodes", `"references"`} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, uri := range g.Namespaces.URIs() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO namespaces (idx, uri) VALUES (?, ?)", i, uri); err != nil {
			return fmt.Errorf("insert namespace: %w", err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes
		(node_id, node_class, browse_name, display_name, description,
		 parent_id, data_type, value_rank, is_abstract, value_xml)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare nodes: %w", err)
	}
	defer nodeStmt.Close()
	for _, r := range g.NodeRows() {
		if _, err := nodeStmt.ExecContext(ctx,
			r.ID, r.Class, r.BrowseName, r.DisplayName, r.Description,
			r.ParentID, r.DataType, r.ValueRank, r.IsAbstract, r.Value); err != nil {
			return fmt.Errorf("insert node %s: %w", r.ID, err)
		}
	}

	refStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO "references" (source_id, reference_type, target_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare references: %w", err)
	}
	defer refStmt.Close()
	for _, r := range g.ReferenceRows() {
		if _, err := refStmt.ExecContext(ctx, r.Source, r.Type, r.Target); err != nil {
			return fmt.Errorf("insert reference %s -> %s: %w", r.Source, r.Target, err)
		}
	}

	return tx.Commit()
}

// CountNodes returns the stored node count.
func (s *Store) CountNodes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&n)
	return n, err
}

// CountReferences returns the stored reference count.
func (s *Store) CountReferences(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "references"`).Scan(&n)
	return n, err
}
