package metadata

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/deptree/pkg/tree"
)

// Field is one labeled line of the detail panel.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Panel builds the detail fields for a selected node. Name and version are
// always present. Size, license and vulnerabilities appear only when the
// lookup has an entry; a lookup error suppresses them too and is returned
// for logging.
func Panel(ctx context.Context, l Lookup, n *tree.Node) ([]Field, error) {
	if n == nil {
		return nil, nil
	}
	fields := []Field{{Label: "Name", Value: n.ID}}
	if n.Version != "" {
		fields = append(fields, Field{Label: "Version", Value: n.Version})
	}
	fields = append(fields, Field{Label: "Dependencies", Value: fmt.Sprint(len(n.Children))})

	if l == nil {
		return fields, nil
	}
	d, ok, err := l.Get(ctx, n.ID)
	if err != nil || !ok {
		return fields, err
	}

	if d.Size > 0 {
		fields = append(fields, Field{Label: "Size", Value: humanize.Bytes(uint64(d.Size))})
	}
	if d.License != "" {
		fields = append(fields, Field{Label: "License", Value: d.License})
	}
	fields = append(fields, Field{Label: "Vulnerabilities", Value: formatVulns(d.Vulnerabilities)})
	return fields, nil
}

func formatVulns(v Vulns) string {
	if v.Total() == 0 {
		return "none"
	}
	return fmt.Sprintf("%d (critical %d, high %d, moderate %d, low %d)",
		v.Total(), v.Critical, v.High, v.Moderate, v.Low)
}
