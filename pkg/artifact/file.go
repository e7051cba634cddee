package artifact

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/labelsheet/pkg/errors"
)

// FileSink stages documents as hidden temporary files in Dir and renames
// them on publish. An existing file of the same name is replaced.
type FileSink struct {
	Dir string // empty means the working directory
}

// Stage implements Sink.
func (s FileSink) Stage(ctx context.Context, name string, data []byte) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutput, err, "stage %s", name)
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutput, err, "create %s", final)
	}
	fail := func(err error) (Artifact, error) {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, errors.Wrap(errors.ErrCodeOutput, err, "write %s", final)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, errors.Wrap(errors.ErrCodeOutput, err, "write %s", final)
	}
	return &fileArtifact{tmp: tmp.Name(), path: final}, nil
}

type fileArtifact struct {
	tmp  string
	path string
	done bool
}

func (a *fileArtifact) Path() string { return a.path }

func (a *fileArtifact) Publish() error {
	if a.done {
		return nil
	}
	if err := os.Rename(a.tmp, a.path); err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "publish %s", a.path)
	}
	a.done = true
	return nil
}

func (a *fileArtifact) Discard() error {
	if a.done {
		return nil
	}
	a.done = true
	if err := os.Remove(a.tmp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeOutput, err, "discard %s", a.tmp)
	}
	return nil
}

var _ Sink = FileSink{}
