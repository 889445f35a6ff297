package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/atharv3903/navpath/internal/model"
)

// Schema creates the tables Store reads and writes. The per-node arrays are
// JSON documents so order, duplicates and the null/empty distinction survive
// a round trip.
const Schema = `
CREATE TABLE IF NOT EXISTS nodes (
    node_id     VARCHAR(191) PRIMARY KEY,
    locations   JSON NOT NULL,
    edges       JSON NOT NULL,
    coordinates JSON NOT NULL
);
CREATE TABLE IF NOT EXISTS edges (
    edge_id VARCHAR(191) PRIMARY KEY,
    node_a  VARCHAR(191) NOT NULL,
    node_b  VARCHAR(191) NOT NULL
);`

type Store struct {
	DB *sql.DB
}

func (s Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// nodeRow is a node as stored in the nodes table. A nil slice is kept as
// the JSON literal null, an empty one as [].
type nodeRow struct {
	ID          string
	Locations   []byte
	Edges       []byte
	Coordinates []byte
}

func encodeNode(n *model.Node) (nodeRow, error) {
	row := nodeRow{ID: n.ID}
	var err error
	if row.Locations, err = json.Marshal(n.Locations); err != nil {
		return nodeRow{}, fmt.Errorf("node %s locations: %w", n.ID, err)
	}
	if row.Edges, err = json.Marshal(n.Edges); err != nil {
		return nodeRow{}, fmt.Errorf("node %s edges: %w", n.ID, err)
	}
	if row.Coordinates, err = json.Marshal(n.Coordinates); err != nil {
		return nodeRow{}, fmt.Errorf("node %s coordinates: %w", n.ID, err)
	}
	return row, nil
}

func decodeNode(row nodeRow) (*model.Node, error) {
	n := &model.Node{ID: row.ID}
	if err := json.Unmarshal(row.Locations, &n.Locations); err != nil {
		return nil, fmt.Errorf("node %s locations: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Edges, &n.Edges); err != nil {
		return nil, fmt.Errorf("node %s edges: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Coordinates, &n.Coordinates); err != nil {
		return nil, fmt.Errorf("node %s coordinates: %w", row.ID, err)
	}
	return n, nil
}

// Load assembles the stored graph.
func (s Store) Load(ctx context.Context) (*model.Graph, error) {
	g := model.NewGraph()

	rows, err := s.DB.QueryContext(ctx, `SELECT node_id, locations, edges, coordinates FROM nodes`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(&row.ID, &row.Locations, &row.Edges, &row.Coordinates); err != nil {
			rows.Close()
			return nil, err
		}
		n, err := decodeNode(row)
		if err != nil {
			rows.Close()
			return nil, err
		}
		g.Nodes[n.ID] = n
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.DB.QueryContext(ctx, `SELECT edge_id, node_a, node_b FROM edges`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		e := &model.Edge{}
		if err := rows.Scan(&e.ID, &e.Nodes[0], &e.Nodes[1]); err != nil {
			rows.Close()
			return nil, err
		}
		g.Edges[e.ID] = e
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	return g, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

// Save replaces the stored graph with g in one transaction. Nil nodes and
// edges are skipped.
func (s Store) Save(ctx context.Context, g *model.Graph) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"edges", "nodes"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, id := range sortedKeys(g.Nodes) {
		n := g.Nodes[id]
		if n == nil {
			continue
		}
		row, rerr := encodeNode(n)
		if rerr != nil {
			return rerr
		}
		// MySQL rejects binary-charset JSON, so the documents go in as strings.
		// The map key is the node's identity.
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO nodes (node_id, locations, edges, coordinates) VALUES (?, ?, ?, ?)`,
			id, string(row.Locations), string(row.Edges), string(row.Coordinates)); err != nil {
			return fmt.Errorf("insert node %s: %w", id, err)
		}
	}

	for _, id := range sortedKeys(g.Edges) {
		e := g.Edges[id]
		if e == nil {
			continue
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO edges (edge_id, node_a, node_b) VALUES (?, ?, ?)`, id, e.Nodes[0], e.Nodes[1]); err != nil {
			return fmt.Errorf("insert edge %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
