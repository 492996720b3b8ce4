package apiclient

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"go.yaml.in/yaml/v3"
)

// FixtureLoader returns the raw bytes of a named fixture.
type FixtureLoader interface {
	Load(name string, kind FileKind) ([]byte, error)
}

// FSLoader reads fixtures named <name>.<kind> from a file system.
type FSLoader struct {
	fsys fs.FS
	dir  string
}

// NewFSLoader returns a loader over fsys, e.g. an embed.FS or fstest.MapFS.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys, dir: "."}
}

// NewDirLoader returns a loader over the directory dir.
func NewDirLoader(dir string) *FSLoader {
	return &FSLoader{fsys: os.DirFS(dir), dir: dir}
}

// Load reads <name>.<kind>. A missing file wraps ErrFixtureNotFound.
func (l *FSLoader) Load(name string, kind FileKind) ([]byte, error) {
	file := path.Clean(name + "." + string(kind))
	if !fs.ValidPath(file) {
		return nil, fmt.Errorf("invalid fixture path %q", file)
	}
	data, err := fs.ReadFile(l.fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s in %s", ErrFixtureNotFound, file, l.dir)
	}
	return data, err
}

// LoadFixture loads and decodes a fixture as T under the same rules as a
// live response body, validate tags included. Every failure is a
// *FixtureError.
func LoadFixture[T any](loader FixtureLoader, name string, kind FileKind) (T, error) {
	var v T
	if kind == "" {
		kind = FileKindJSON
	}
	if loader == nil {
		return v, &FixtureError{Name: name, Kind: kind, Err: errors.New("no fixture loader configured")}
	}

	data, err := loader.Load(name, kind)
	if err != nil {
		return v, &FixtureError{Name: name, Kind: kind, Err: err}
	}

	switch kind {
	case FileKindJSON:
		v, err = decodeJSON[T](data)
	case FileKindYAML:
		err = yaml.Unmarshal(data, &v)
	default:
		err = fmt.Errorf("unsupported fixture kind %q", kind)
	}
	if err == nil {
		err = validateDecoded(v)
	}
	if err != nil {
		var zero T
		return zero, &FixtureError{Name: name, Kind: kind, Err: fmt.Errorf("decode: %w", err)}
	}
	return v, nil
}
