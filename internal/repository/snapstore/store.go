// Package snapstore persists snapshots as a directory of parquet files plus a YAML manifest.
package snapstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
)

// File names inside a snapshot directory.
const (
	ItemsFile      = "items.parquet"
	EmbeddingsFile = "embeddings.parquet"
	ManifestFile   = "manifest.yaml"
)

const readBatch = 1000

// Store reads and writes one snapshot directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string { return s.dir }

// Load reads items, position-ordered vectors and the manifest.
// Embedding positions must cover exactly [0, len(items)).
func (s *Store) Load(ctx context.Context) ([]item.Item, [][]float32, snapshot.Manifest, error) {
	m, err := s.readManifest()
	if err != nil {
		return nil, nil, snapshot.Manifest{}, err
	}

	items, err := ReadItems(ctx, filepath.Join(s.dir, ItemsFile))
	if err != nil {
		return nil, nil, snapshot.Manifest{}, err
	}

	if err = ctx.Err(); err != nil {
		return nil, nil, snapshot.Manifest{}, fmt.Errorf("load snapshot: %w", err)
	}
	rows, err := readAll[vectorRow](filepath.Join(s.dir, EmbeddingsFile))
	if err != nil {
		return nil, nil, snapshot.Manifest{}, fmt.Errorf("read embeddings: %w", err)
	}

	vectors, err := orderVectors(rows, len(items))
	if err != nil {
		return nil, nil, snapshot.Manifest{}, err
	}
	return items, vectors, m, nil
}

// Save writes items, vectors and manifest. Each file goes to a temp file first and is
// renamed into place; the manifest is renamed last.
func (s *Store) Save(
	ctx context.Context, items []item.Item, vectors [][]float32, m snapshot.Manifest,
) error {
	if len(items) != len(vectors) {
		return fmt.Errorf("%d items, %d vectors: %w", len(items), len(vectors), domain.ErrMisaligned)
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	itemRows := make([]itemRow, len(items))
	for i := range items {
		itemRows[i] = itemToRow(&items[i])
	}
	vecRows := make([]vectorRow, len(vectors))
	for i, v := range vectors {
		vecRows[i] = vectorRow{Position: int64(i), Vector: v}
	}

	if m.Count == 0 {
		m.Count = len(items)
	}
	if m.Dimension == 0 && len(vectors) > 0 {
		m.Dimension = len(vectors[0])
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	manifest, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err = writeAtomic(s.dir, ItemsFile, func(w io.Writer) error { return writeAll(w, itemRows) }); err != nil {
		return fmt.Errorf("write items: %w", err)
	}
	if err = writeAtomic(s.dir, EmbeddingsFile, func(w io.Writer) error { return writeAll(w, vecRows) }); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}
	if err = writeAtomic(s.dir, ManifestFile, func(w io.Writer) error {
		_, werr := w.Write(manifest)
		return werr //nolint:wrapcheck // wrapped by caller
	}); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadItems reads an items parquet file in row order.
func ReadItems(ctx context.Context, path string) ([]item.Item, error) {
	rows, err := readAll[itemRow](path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	items := make([]item.Item, len(rows))
	for i := range rows {
		if i%readBatch == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("read items: %w", err)
			}
		}
		if items[i], err = itemFromRow(&rows[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return items, nil
}

func (s *Store) readManifest() (snapshot.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, ManifestFile))
	if err != nil {
		return snapshot.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m snapshot.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return snapshot.Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// orderVectors places rows by their position column, rejecting gaps and duplicates.
func orderVectors(rows []vectorRow, count int) ([][]float32, error) {
	if len(rows) != count {
		return nil, fmt.Errorf("%d embeddings for %d items: %w", len(rows), count, domain.ErrMisaligned)
	}
	out := make([][]float32, count)
	for _, r := range rows {
		if r.Position < 0 || r.Position >= int64(count) {
			return nil, fmt.Errorf("embedding position %d outside [0, %d): %w", r.Position, count, domain.ErrMisaligned)
		}
		if out[r.Position] != nil {
			return nil, fmt.Errorf("duplicate embedding position %d: %w", r.Position, domain.ErrMisaligned)
		}
		out[r.Position] = r.Vector
	}
	return out, nil
}

func readAll[T any](path string) ([]T, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := parquet.NewGenericReader[T](f)
	defer func() { _ = r.Close() }()

	out := make([]T, 0, r.NumRows())
	for {
		// Fresh buffer per batch: the reader may reuse list backing arrays.
		buf := make([]T, readBatch)
		n, readErr := r.Read(buf)
		out = append(out, buf[:n]...)
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read rows: %w", readErr)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

func writeAll[T any](w io.Writer, rows []T) error {
	pw := parquet.NewGenericWriter[T](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

func writeAtomic(dir, name string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err = write(tmp); err != nil {
		cleanup()
		return err
	}
	if err = tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err = os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
