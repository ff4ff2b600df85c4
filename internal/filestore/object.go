package filestore

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "snapshots/1.json").
	Key string `json:"key"`

	// Size is the byte size of the object.
	Size int64 `json:"size"`

	// ETag is the object's entity tag, as returned by the backend.
	ETag string `json:"etag"`
}
