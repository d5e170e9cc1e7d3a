package tree

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"
)

// ExpandedSet is the set of node ids whose children are visible.
// The zero value is an empty set ready to use.
type ExpandedSet struct {
	ids map[string]struct{}
}

// NewExpandedSet returns a set containing ids.
func NewExpandedSet(ids ...string) ExpandedSet {
	s := ExpandedSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is expanded.
func (s ExpandedSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of ids in the set.
func (s ExpandedSet) Len() int { return len(s.ids) }

// IDs returns the members in sorted order.
func (s ExpandedSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// With returns a copy of s that includes id.
func (s ExpandedSet) With(id string) ExpandedSet {
	out := s.clone()
	out.ids[id] = struct{}{}
	return out
}

// Without returns a copy of s that excludes id.
// Descendants of id keep their membership.
func (s ExpandedSet) Without(id string) ExpandedSet {
	out := s.clone()
	delete(out.ids, id)
	return out
}

// Toggle returns a copy of s with id's membership flipped.
func (s ExpandedSet) Toggle(id string) ExpandedSet {
	if s.Contains(id) {
		return s.Without(id)
	}
	return s.With(id)
}

// Equal reports whether both sets hold the same ids.
func (s ExpandedSet) Equal(o ExpandedSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for id := range s.ids {
		if !o.Contains(id) {
			return false
		}
	}
	return true
}

// Fingerprint returns a stable hash of the members, used as a memo key.
// Ids are length-prefixed so separators inside an id cannot alias a split.
func (s ExpandedSet) Fingerprint() string {
	h := sha256.New()
	var n [8]byte
	for _, id := range s.IDs() {
		binary.BigEndian.PutUint64(n[:], uint64(len(id)))
		h.Write(n[:])
		h.Write([]byte(id))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// String renders the set as "{a, b}".
func (s ExpandedSet) String() string {
	return "{" + strings.Join(s.IDs(), ", ") + "}"
}

// MarshalJSON encodes the set as a sorted array.
func (s ExpandedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes a JSON array of ids.
func (s *ExpandedSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewExpandedSet(ids...)
	return nil
}

func (s ExpandedSet) clone() ExpandedSet {
	out := ExpandedSet{ids: make(map[string]struct{}, len(s.ids)+1)}
	for id := range s.ids {
		out.ids[id] = struct{}{}
	}
	return out
}
