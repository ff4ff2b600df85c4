package votes

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/koustreak/tally/internal/errs"
	"github.com/koustreak/tally/internal/filestore"
)

// Snapshot points at a stored copy of a tally.
type Snapshot struct {
	Key     string    `json:"key"`
	URL     string    `json:"url"`
	TakenAt time.Time `json:"taken_at"`
}

type snapshotBody struct {
	TakenAt time.Time `json:"taken_at"`
	Votes   []Vote    `json:"votes"`
}

// Snapshotter writes tallies as JSON objects to a bucket.
type Snapshotter struct {
	store  filestore.Store
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

// NewSnapshotter stores snapshots in bucket and presigns links valid for ttl.
func NewSnapshotter(store filestore.Store, bucket string, ttl time.Duration) *Snapshotter {
	return &Snapshotter{store: store, bucket: bucket, ttl: ttl, now: time.Now}
}

// Save uploads tally and returns a presigned download link for it.
func (s *Snapshotter) Save(ctx context.Context, tally []Vote) (*Snapshot, error) {
	taken := s.now().UTC()
	body, err := json.Marshal(snapshotBody{TakenAt: taken, Votes: tally})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to encode snapshot", err)
	}

	key := "snapshots/" + taken.Format("20060102T150405.000000000Z") + ".json"
	if _, err := s.store.Put(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return nil, err
	}

	url, err := s.store.PresignGetURL(ctx, s.bucket, key, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Key: key, URL: url, TakenAt: taken}, nil
}
