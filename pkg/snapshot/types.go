package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	overlay "github.com/jameslkingsley/overlaymap"
)

var ErrNotFound = errors.New("snapshot: not found")

var ErrETagMismatch = errors.New("snapshot: etag mismatch")

// Ref identifies one persisted map dump for one domain and owner. Owner may
// be empty for dumps shared across owners.
type Ref struct {
	Domain string
	Owner  string
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one dump for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (dump T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, dump T, meta Meta) (Meta, error)
}

// Archive converts between live maps and record dumps held in a Store.
type Archive[K comparable, V any] struct {
	Store Store[[]overlay.Record[K, V]]
}

type Mutator[K comparable, V any] func(*overlay.Map[K, V]) error

func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", fmt.Errorf("snapshot: domain is required")
	}
	if r.Owner == "" {
		return fmt.Sprintf("shared/%s", r.Domain), nil
	}
	return fmt.Sprintf("owner/%s/%s", r.Owner, r.Domain), nil
}

// Capture dumps m and saves it under ref. The saved meta always carries a
// fresh ETag; SnapshotID and UpdatedAt are preserved when supplied.
func (a Archive[K, V]) Capture(ctx context.Context, ref Ref, m *overlay.Map[K, V], meta Meta) (Meta, error) {
	if a.Store == nil {
		return Meta{}, fmt.Errorf("snapshot: store is required")
	}
	if m == nil {
		return Meta{}, fmt.Errorf("snapshot: map is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return Meta{}, err
	}

	saved, err := a.Store.Save(ctx, ref, m.Export(), mintMeta(meta))
	if err != nil {
		return Meta{}, fmt.Errorf("snapshot: save %q for owner %q: %w", ref.Domain, ref.Owner, err)
	}
	return saved, nil
}

// Restore rebuilds a map from the dump stored under ref. Options are passed
// through to the rebuilt map.
func (a Archive[K, V]) Restore(ctx context.Context, ref Ref, opts ...overlay.Option) (*overlay.Map[K, V], Meta, error) {
	if a.Store == nil {
		return nil, Meta{}, fmt.Errorf("snapshot: store is required")
	}
	id, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, err
	}

	records, meta, ok, err := a.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("snapshot: load %q for owner %q: %w", ref.Domain, ref.Owner, err)
	}
	if !ok {
		return nil, Meta{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return overlay.FromRecords(records, opts...), meta, nil
}

// Mutate loads the dump under ref, applies fn to a rebuilt map, then saves
// the result. A non-empty meta.ETag must match the stored ETag or the
// mutation fails with ErrETagMismatch before fn runs. A missing dump starts
// from an empty map.
func (a Archive[K, V]) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator[K, V]) (*overlay.Map[K, V], Meta, error) {
	if a.Store == nil {
		return nil, Meta{}, fmt.Errorf("snapshot: store is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("snapshot: mutator is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return nil, Meta{}, err
	}

	records, loadedMeta, ok, err := a.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("snapshot: load %q for owner %q: %w", ref.Domain, ref.Owner, err)
	}
	if !ok {
		records = nil
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	m := overlay.FromRecords(records)
	if err := fn(m); err != nil {
		return nil, loadedMeta, err
	}

	saveMeta := mintMeta(mergeMeta(loadedMeta, meta))
	savedMeta, err := a.Store.Save(ctx, ref, m.Export(), saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("snapshot: save %q for owner %q: %w", ref.Domain, ref.Owner, err)
	}
	return m, savedMeta, nil
}

// mintMeta rotates the ETag and fills SnapshotID/UpdatedAt when missing.
func mintMeta(meta Meta) Meta {
	out := meta
	if out.SnapshotID == "" {
		out.SnapshotID = uuid.NewString()
	}
	out.ETag = uuid.NewString()
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = time.Now().UTC()
	}
	return out
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
