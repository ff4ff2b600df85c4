package votes

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tally/internal/errs"
	"github.com/koustreak/tally/internal/filestore"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*filestore.ObjectInfo, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[bucket+"/"+key] = b
	m.types[bucket+"/"+key] = contentType
	return &filestore.ObjectInfo{Key: key, Size: size}, nil
}

func (m *memStore) PresignGetURL(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return "https://store.local/" + bucket + "/" + key + "?ttl=" + ttl.String(), nil
}

func TestSnapshotter_Save(t *testing.T) {
	store := newMemStore()
	s := NewSnapshotter(store, "tally", time.Minute)
	s.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 5, time.UTC) }

	snap, err := s.Save(context.Background(), []Vote{{"yes", 2}, {"no", 1}})
	require.NoError(t, err)

	assert.Equal(t, "snapshots/20261014T093000.000000005Z.json", snap.Key)
	assert.Equal(t, "https://store.local/tally/"+snap.Key+"?ttl=1m0s", snap.URL)

	raw := store.objects["tally/"+snap.Key]
	require.NotEmpty(t, raw)
	assert.Equal(t, "application/json", store.types["tally/"+snap.Key])

	var body snapshotBody
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, []Vote{{"yes", 2}, {"no", 1}}, body.Votes)
	assert.True(t, body.TakenAt.Equal(snap.TakenAt))
}

func TestSnapshotter_PutError(t *testing.T) {
	store := newMemStore()
	store.putErr = errs.New(errs.ErrKindPermissionDenied, "denied")

	_, err := NewSnapshotter(store, "tally", time.Minute).Save(context.Background(), nil)
	assert.True(t, errs.IsPermissionDenied(err))
}
