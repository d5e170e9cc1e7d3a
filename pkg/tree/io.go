package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Format identifies a tree input encoding.
type Format string

// Supported input formats.
const (
	FormatAuto  Format = ""
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatGraph Format = "graph"
)

// Graph is the flat node-link encoding of a dependency graph.
// Version is read from meta.version when the node has no top-level version.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is a node in the node-link encoding.
type GraphNode struct {
	ID      string         `json:"id"`
	Version string         `json:"version,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// GraphEdge is a directed dependency in the node-link encoding.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReadFile reads a tree from path. The format is inferred from the extension
// and, for JSON, from whether the document has a top-level "nodes" key.
// rootID selects the root of node-link graphs and is ignored otherwise.
func ReadFile(path, rootID string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tree file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return Decode(bytes.NewReader(data), format, rootID)
}

// Decode reads a tree encoded as format from r.
func Decode(r io.Reader, format Format, rootID string) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}

	if format == FormatAuto || format == FormatJSON {
		format = sniffJSON(data)
	}

	switch format {
	case FormatJSON:
		var root Node
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree JSON")
		}
		return New(&root)
	case FormatYAML:
		var root Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree YAML")
		}
		return New(&root)
	case FormatGraph:
		var g Graph
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph JSON")
		}
		return FromGraph(g, rootID)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported tree format %q", format)
	}
}

// FromGraph links a node-link graph into a pointer tree rooted at rootID.
// With an empty rootID the first node without incoming edges is the root,
// falling back to the first node. Children keep edge order. Cycles in the
// graph become cycles in the tree.
func FromGraph(g Graph, rootID string) (*Tree, error) {
	if len(g.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTree, "graph has no nodes")
	}

	nodes := make(map[string]*Node, len(g.Nodes))
	for _, gn := range g.Nodes {
		if _, dup := nodes[gn.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidTree, "duplicate node %q", gn.ID)
		}
		nodes[gn.ID] = &Node{ID: gn.ID, Version: gn.version()}
	}

	incoming := make(map[string]int)
	for _, e := range g.Edges {
		from, ok := nodes[e.From]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidTree, "edge from unknown node %q", e.From)
		}
		to, ok := nodes[e.To]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidTree, "edge to unknown node %q", e.To)
		}
		from.Children = append(from.Children, to)
		incoming[e.To]++
	}

	if rootID == "" {
		rootID = g.Nodes[0].ID
		for _, gn := range g.Nodes {
			if incoming[gn.ID] == 0 {
				rootID = gn.ID
				break
			}
		}
	}

	root, ok := nodes[rootID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "root %q not in graph", rootID)
	}
	return New(root)
}

func (n GraphNode) version() string {
	if n.Version != "" {
		return n.Version
	}
	if v, ok := n.Meta["version"].(string); ok {
		return v
	}
	return ""
}

// sniffJSON tells nested trees and node-link graphs apart.
func sniffJSON(data []byte) Format {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return FormatJSON
	}
	if _, ok := probe["nodes"]; ok {
		return FormatGraph
	}
	return FormatJSON
}
