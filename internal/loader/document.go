package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/atharv3903/navpath/internal/model"
)

// document mirrors the static data file: {"navigation":{"nodes":{..},"edges":{..}}}.
type document struct {
	Navigation struct {
		Nodes map[string]*model.Node `json:"nodes"`
		Edges map[string]*model.Edge `json:"edges"`
	} `json:"navigation"`
}

// Decode reads a graph document. IDs come from the map keys.
func Decode(r io.Reader) (*model.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if len(doc.Navigation.Nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	g := model.NewGraph()
	for id, n := range doc.Navigation.Nodes {
		if n == nil {
			n = &model.Node{}
		}
		n.ID = id
		g.Nodes[id] = n
	}
	for id, e := range doc.Navigation.Edges {
		if e == nil {
			continue
		}
		e.ID = id
		g.Edges[id] = e
	}
	return g, nil
}

// Encode writes g in the document layout Decode reads.
func Encode(w io.Writer, g *model.Graph) error {
	var doc document
	doc.Navigation.Nodes = g.Nodes
	doc.Navigation.Edges = g.Edges
	if doc.Navigation.Edges == nil {
		doc.Navigation.Edges = map[string]*model.Edge{}
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// DecodeWith reads a graph through codec c.
func DecodeWith(c Codec, r io.Reader) (*model.Graph, error) {
	rc, err := c.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open %s stream: %w", c.Ext, err)
	}
	defer rc.Close()
	return Decode(rc)
}

// EncodeWith writes g through codec c and flushes it.
func EncodeWith(c Codec, w io.Writer, g *model.Graph) error {
	wc, err := c.NewWriter(w)
	if err != nil {
		return fmt.Errorf("open %s stream: %w", c.Ext, err)
	}
	if err := Encode(wc, g); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
