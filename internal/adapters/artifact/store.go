// Package artifact loads scoring artifacts from disk.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/metarisk/internal/domain/risk"
	"github.com/okian/metarisk/pkg/logger"
	"github.com/okian/metarisk/pkg/metrics"
	"gopkg.in/yaml.v3"
)

// Load outcomes recorded in metrics.
const (
	resultLoaded   = "loaded"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// FileStore resolves artifact references to YAML (or JSON) documents under a
// directory. It implements risk.Loader.
type FileStore struct {
	dir    string
	logger logger.Logger
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory artifacts are read from.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file an artifact reference resolves to.
func (s *FileStore) Path(ref string) string {
	return filepath.Join(s.dir, filepath.Clean("/"+ref))
}

// Load reads and validates the artifact named by ref. A missing file fails
// with risk.ErrArtifactNotFound; anything unreadable or malformed fails with
// risk.ErrArtifactError.
func (s *FileStore) Load(ctx context.Context, ref string) (risk.Classifier, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", risk.ErrArtifactError, ref, err)
	}

	path := s.Path(ref)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.record(ctx, ref, resultNotFound, start, err)
			return nil, fmt.Errorf("%w: %s", risk.ErrArtifactNotFound, path)
		}
		s.record(ctx, ref, resultInvalid, start, err)
		return nil, fmt.Errorf("%w: open %s: %w", risk.ErrArtifactError, path, err)
	}
	defer func() { _ = f.Close() }()

	clf, err := Decode(f, ref)
	if err != nil {
		s.record(ctx, ref, resultInvalid, start, err)
		return nil, err
	}
	s.record(ctx, ref, resultLoaded, start, nil)
	return clf, nil
}

// Decode parses one artifact document.
func Decode(r io.Reader, ref string) (risk.Classifier, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", risk.ErrArtifactError, ref, err)
	}
	return doc.build(ref)
}

func (s *FileStore) record(ctx context.Context, ref, result string, start time.Time, err error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordArtifactLoad(ref, result)
	metrics.RecordArtifactLoadLatency(ms)
	if s.logger == nil {
		return
	}
	if err != nil {
		s.logger.Warn(ctx, "artifact load failed",
			logger.String("ref", ref),
			logger.String("result", result),
			logger.Error(err),
		)
		return
	}
	s.logger.Info(ctx, "artifact loaded",
		logger.String("ref", ref),
		logger.Float64("latencyMs", ms),
	)
}
