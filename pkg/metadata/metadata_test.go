package metadata

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/tree"
)

var express = Details{
	Size:            220_000,
	License:         "MIT",
	Vulnerabilities: Vulns{High: 1, Low: 2},
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "meta.json")
	yamlPath := filepath.Join(dir, "meta.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"express":{"size":220000,"license":"MIT","vulnerabilities":{"high":1,"low":2}}}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("express:\n  size: 220000\n  license: MIT\n  vulnerabilities:\n    high: 1\n    low: 2\n"), 0o644))

	for _, path := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			m, err := LoadFile(path)
			require.NoError(t, err)
			d, ok, err := m.Get(context.Background(), "express")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, express, d)

			_, ok, err = m.Get(context.Background(), "missing")
			assert.NoError(t, err)
			assert.False(t, ok)
		})
	}

	_, err := LoadFile(filepath.Join(dir, "nope.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadFile(bad)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestMapLookupCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := MapLookup{"a": {}}.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// Redis
// =============================================================================

type fakeRedis struct {
	hashes map[string]map[string]string
	err    error
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if f.err != nil {
		return redis.NewMapStringStringResult(nil, f.err)
	}
	return redis.NewMapStringStringResult(f.hashes[key], nil)
}

func (f *fakeRedis) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	h := map[string]string{}
	for k, v := range values[0].(map[string]any) {
		switch v := v.(type) {
		case int64:
			h[k] = strconv.FormatInt(v, 10)
		case int:
			h[k] = strconv.Itoa(v)
		case string:
			h[k] = v
		}
	}
	f.hashes[key] = h
	return redis.NewIntResult(int64(len(h)), nil)
}

func TestRedisLookup(t *testing.T) {
	fake := &fakeRedis{hashes: map[string]map[string]string{}}
	r := &RedisLookup{client: fake, prefix: DefaultRedisPrefix}
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "express")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Put(ctx, "express", express))
	assert.Contains(t, fake.hashes, "deptree:meta:express")

	d, ok, err := r.Get(ctx, "express")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, express, d)

	fake.err = stderrors.New("connection refused")
	_, ok, err = r.Get(ctx, "express")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, errors.ErrCodeNetwork))
}

func TestDialRedisBadURL(t *testing.T) {
	_, _, err := DialRedis("http://not-redis", "")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

// =============================================================================
// MongoDB
// =============================================================================

type fakeCollection struct {
	docs     map[string]mongoDocument
	findErr  error
	replaced int
}

func (f *fakeCollection) FindOne(_ context.Context, filter any, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if f.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.findErr, nil)
	}
	id := filter.(bson.M)["_id"].(string)
	doc, ok := f.docs[id]
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func (f *fakeCollection) ReplaceOne(_ context.Context, _ any, replacement any, _ ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	doc := replacement.(mongoDocument)
	f.docs[doc.ID] = doc
	f.replaced++
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func TestMongoLookup(t *testing.T) {
	fake := &fakeCollection{docs: map[string]mongoDocument{}}
	m := &MongoLookup{coll: fake}
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "express")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, "express", express))
	assert.Equal(t, 1, fake.replaced)

	d, ok, err := m.Get(ctx, "express")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, express, d)

	fake.findErr = stderrors.New("server selection timeout")
	_, _, err = m.Get(ctx, "express")
	assert.True(t, errors.Is(err, errors.ErrCodeNetwork))
}

// =============================================================================
// Panel
// =============================================================================

type failingLookup struct{}

func (failingLookup) Get(context.Context, string) (Details, bool, error) {
	return Details{}, false, stderrors.New("backend down")
}

func TestPanel(t *testing.T) {
	ctx := context.Background()
	node := &tree.Node{ID: "express", Version: "4.18.2", Children: []*tree.Node{{ID: "debug"}}}
	lookup := MapLookup{"express": express, "debug": {}}

	labels := func(fs []Field) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.Label)
		}
		return out
	}

	fields, err := Panel(ctx, lookup, node)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Version", "Dependencies", "Size", "License", "Vulnerabilities"}, labels(fields))
	assert.Equal(t, "220 kB", fields[3].Value)
	assert.Equal(t, "3 (critical 0, high 1, moderate 0, low 2)", fields[5].Value)

	fields, err = Panel(ctx, lookup, &tree.Node{ID: "debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Dependencies", "Vulnerabilities"}, labels(fields))
	assert.Equal(t, "none", fields[2].Value)

	fields, err = Panel(ctx, lookup, &tree.Node{ID: "unknown", Version: "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Version", "Dependencies"}, labels(fields))

	fields, err = Panel(ctx, failingLookup{}, node)
	assert.Error(t, err)
	assert.Equal(t, []string{"Name", "Version", "Dependencies"}, labels(fields))

	fields, err = Panel(ctx, nil, node)
	require.NoError(t, err)
	assert.Len(t, fields, 3)

	fields, _ = Panel(ctx, lookup, nil)
	assert.Nil(t, fields)
}
