package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlplan/builder"
)

// Format identifies a snapshot encoding.
type Format string

const (
	// YAML is the human-readable text encoding.
	YAML Format = "yaml"

	// Msgpack is the compact binary encoding.
	Msgpack Format = "msgpack"
)

// Snapshot is a persisted registry state: the topologically ordered dict
// export of every independently managed entity, stamped with an identifier
// and a creation time.
type Snapshot struct {
	ID        string           `yaml:"id" msgpack:"id"`
	CreatedAt time.Time        `yaml:"created_at" msgpack:"created_at"`
	Entities  []map[string]any `yaml:"entities" msgpack:"entities"`
}

// Capture exports the manager's registry into a fresh snapshot.
func Capture(m *builder.Manager) (*Snapshot, error) {
	dicts, err := m.ExportDicts()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Entities:  dicts,
	}, nil
}

// Restore rebuilds a root manager holding the snapshot's entities.
func (s *Snapshot) Restore(opts ...builder.Option) (*builder.Manager, error) {
	m := builder.NewRoot(opts...)
	if err := m.ImportDicts(s.Entities); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serialises the snapshot in the given format.
func (s *Snapshot) Encode(f Format) ([]byte, error) {
	switch f {
	case YAML:
		return yaml.Marshal(s)
	case Msgpack:
		return msgpack.Marshal(s)
	default:
		return nil, fmt.Errorf("sqlplan: unknown snapshot format %q", f)
	}
}

// Decode deserialises a snapshot in the given format.
func Decode(data []byte, f Format) (*Snapshot, error) {
	s := &Snapshot{}
	switch f {
	case YAML:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, err
		}
	case Msgpack:
		if err := msgpack.Unmarshal(data, s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("sqlplan: unknown snapshot format %q", f)
	}
	return s, nil
}

// FormatForPath picks the encoding from a file extension: .msgpack and .bin
// are binary, everything else is YAML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".bin":
		return Msgpack
	default:
		return YAML
	}
}

// WriteFile encodes the snapshot into path, picking the format from the
// extension.
func (s *Snapshot) WriteFile(path string) error {
	data, err := s.Encode(FormatForPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile decodes a snapshot from path, picking the format from the
// extension.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, FormatForPath(path))
}

// LoadPair reads the old and new snapshot files concurrently. It exists for
// the common planning flow, where both sides come from disk and neither
// depends on the other.
func LoadPair(ctx context.Context, oldPath, newPath string) (*Snapshot, *Snapshot, error) {
	var oldSnap, newSnap *Snapshot
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		oldSnap, err = ReadFile(oldPath)
		return err
	})
	eg.Go(func() (err error) {
		newSnap, err = ReadFile(newPath)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return oldSnap, newSnap, nil
}
