package tree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/deptree/pkg/errors"
)

func sample() *Node {
	d := &Node{ID: "D", Version: "4.0"}
	return &Node{ID: "A", Version: "1.0", Children: []*Node{
		{ID: "B", Version: "2.0", Children: []*Node{d}},
		{ID: "C", Version: "3.0"},
	}}
}

func TestNew(t *testing.T) {
	tr, err := New(sample())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Len() != 4 {
		t.Errorf("Len() = %d, want 4", tr.Len())
	}
	if got := strings.Join(tr.IDs(), ","); got != "A,B,D,C" {
		t.Errorf("IDs() = %s, want A,B,D,C", got)
	}
	if got := strings.Join(tr.Expandable(), ","); got != "A,B" {
		t.Errorf("Expandable() = %s, want A,B", got)
	}
	if !tr.Contains("D") || tr.Contains("Z") {
		t.Error("Contains mismatch")
	}
	if n, ok := tr.Node("B"); !ok || n.Label() != "B@2.0" {
		t.Errorf("Node(B) = %v, %v", n, ok)
	}
}

func TestNewIdentity(t *testing.T) {
	a, _ := New(sample())
	b, _ := New(sample())
	if a.ID() == b.ID() {
		t.Error("distinct trees share an identity")
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("New(nil) err = %v, want INVALID_TREE", err)
	}
	bad := &Node{ID: "A", Children: []*Node{{ID: ""}}}
	if _, err := New(bad); !errors.Is(err, errors.ErrCodeInvalidNodeID) {
		t.Errorf("New(empty child) err = %v, want INVALID_NODE_ID", err)
	}
}

func TestNewCycle(t *testing.T) {
	a := &Node{ID: "a"}
	b := &Node{ID: "b", Children: []*Node{a}}
	a.Children = []*Node{b}

	tr, err := New(a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		root    string
		input   string
		wantIDs string
		wantErr errors.Code
	}{
		{
			name:    "NestedJSON",
			input:   `{"name":"A","version":"1","children":[{"name":"B"},{"name":"C"}]}`,
			wantIDs: "A,B,C",
		},
		{
			name:    "NestedYAML",
			format:  FormatYAML,
			input:   "name: A\nchildren:\n  - name: B\n    children:\n      - name: D\n",
			wantIDs: "A,B,D",
		},
		{
			name:    "GraphSniffed",
			input:   `{"nodes":[{"id":"b"},{"id":"a","meta":{"version":"2"}}],"edges":[{"from":"a","to":"b"}]}`,
			wantIDs: "a,b",
		},
		{
			name:    "GraphExplicitRoot",
			root:    "b",
			input:   `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"from":"a","to":"b"}]}`,
			wantIDs: "b",
		},
		{
			name:    "GraphUnknownEdge",
			input:   `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"zz"}]}`,
			wantErr: errors.ErrCodeInvalidTree,
		},
		{
			name:    "GraphUnknownRoot",
			root:    "zz",
			input:   `{"nodes":[{"id":"a"}],"edges":[]}`,
			wantErr: errors.ErrCodeNodeNotFound,
		},
		{
			name:    "InvalidJSON",
			input:   `{invalid`,
			wantErr: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Decode(strings.NewReader(tt.input), tt.format, tt.root)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := strings.Join(tr.IDs(), ","); got != tt.wantIDs {
				t.Errorf("IDs() = %s, want %s", got, tt.wantIDs)
			}
		})
	}
}

func TestFromGraphCycle(t *testing.T) {
	g := Graph{
		Nodes: []GraphNode{{ID: "app"}, {ID: "x"}, {ID: "y"}},
		Edges: []GraphEdge{{From: "app", To: "x"}, {From: "x", To: "y"}, {From: "y", To: "x"}},
	}
	tr, err := FromGraph(g, "")
	if err != nil {
		t.Fatalf("FromGraph: %v", err)
	}
	if tr.Root().ID != "app" {
		t.Errorf("root = %s, want app", tr.Root().ID)
	}
	x, _ := tr.Node("x")
	if x.Children[0].Children[0] != x {
		t.Error("cycle not preserved as shared pointer")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deps.yaml")
	if err := os.WriteFile(path, []byte("name: app\nversion: 0.1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tr, err := ReadFile(path, "")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tr.Root().Label() != "app@0.1.0" {
		t.Errorf("root = %s", tr.Root().Label())
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json"), ""); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}
}
