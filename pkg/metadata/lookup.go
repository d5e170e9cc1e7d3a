package metadata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Vulns counts known vulnerabilities by severity.
type Vulns struct {
	Critical int `json:"critical,omitempty" yaml:"critical,omitempty" bson:"critical"`
	High     int `json:"high,omitempty" yaml:"high,omitempty" bson:"high"`
	Moderate int `json:"moderate,omitempty" yaml:"moderate,omitempty" bson:"moderate"`
	Low      int `json:"low,omitempty" yaml:"low,omitempty" bson:"low"`
}

// Total returns the sum over all severities.
func (v Vulns) Total() int { return v.Critical + v.High + v.Moderate + v.Low }

// Details is the supplementary metadata of one package.
type Details struct {
	Size            int64  `json:"size,omitempty" yaml:"size,omitempty" bson:"size"`
	License         string `json:"license,omitempty" yaml:"license,omitempty" bson:"license"`
	Vulnerabilities Vulns  `json:"vulnerabilities" yaml:"vulnerabilities" bson:"vulnerabilities"`
}

// Lookup returns the details for a node ID. A missing entry yields ok=false
// and a nil error.
type Lookup interface {
	Get(ctx context.Context, id string) (Details, bool, error)
}

// Writer stores details. Backends that can be populated implement it.
type Writer interface {
	Put(ctx context.Context, id string, d Details) error
}

// MapLookup serves details from memory.
type MapLookup map[string]Details

// Get implements Lookup.
func (m MapLookup) Get(ctx context.Context, id string) (Details, bool, error) {
	if err := ctx.Err(); err != nil {
		return Details{}, false, err
	}
	d, ok := m[id]
	return d, ok, nil
}

// LoadFile reads a JSON or YAML object mapping node IDs to details.
// The format follows the file extension; anything but .yaml/.yml is JSON.
func LoadFile(path string) (MapLookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "metadata file %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	m := MapLookup{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return m, nil
}

var _ Lookup = MapLookup(nil)
