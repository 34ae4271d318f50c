package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/usersvc/apiserver/types"
)

const snapshotContentType = "application/json"

// UserLister returns every stored user.
type UserLister interface {
	List(ctx context.Context) ([]types.User, error)
}

// UserSnapshot is the document written by Exporter.
type UserSnapshot struct {
	ExportedAt time.Time    `json:"exported_at"`
	Count      int          `json:"count"`
	Users      []types.User `json:"users"`
}

// ExportResult describes an uploaded snapshot.
type ExportResult struct {
	Bucket string
	Key    string
	Count  int
	Bytes  int
}

// Exporter writes user snapshots to object storage.
type Exporter struct {
	users   UserLister
	objects ObjectStorage
	now     func() time.Time
}

func NewExporter(users UserLister, objects ObjectStorage) *Exporter {
	return &Exporter{users: users, objects: objects, now: time.Now}
}

// SnapshotKey names a snapshot taken at t.
func SnapshotKey(t time.Time) string {
	return "users-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// Export uploads a snapshot of all users under key, or under SnapshotKey when
// key is empty.
func (e *Exporter) Export(ctx context.Context, key string) (ExportResult, error) {
	users, err := e.users.List(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []types.User{}
	}

	now := e.now().UTC()
	if key == "" {
		key = SnapshotKey(now)
	}

	data, err := json.Marshal(UserSnapshot{ExportedAt: now, Count: len(users), Users: users})
	if err != nil {
		return ExportResult{}, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := e.objects.EnsureBucket(ctx); err != nil {
		return ExportResult{}, fmt.Errorf("ensure bucket %s: %w", e.objects.Bucket(), err)
	}
	if err := e.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), snapshotContentType); err != nil {
		return ExportResult{}, fmt.Errorf("upload %s: %w", key, err)
	}

	return ExportResult{
		Bucket: e.objects.Bucket(),
		Key:    key,
		Count:  len(users),
		Bytes:  len(data),
	}, nil
}
