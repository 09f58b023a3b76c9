package schema

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
)

// DefaultFileName is the snapshot file name used when none is configured.
const DefaultFileName = "schema.yaml"

const fileHeader = "#\n" +
	"# This schema file is auto generated and synchronized with the database.\n" +
	"# Editing it will have no effect.\n" +
	"#\n"

// Load reads the schema snapshot at path. A missing file is an Init error
// and undecodable content is a Parsing error.
func Load(fs afero.Fs, path string) (*DatabaseSchema, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errdefs.Init(path, err.Error())
	}
	s := New()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errdefs.Parsing(path, err)
	}
	return s, nil
}

// Exists reports whether a snapshot file is present at path.
func Exists(fs afero.Fs, path string) (bool, error) {
	return afero.Exists(fs, path)
}

// Encode renders the snapshot file content, header included.
func (s *DatabaseSchema) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save truncates and rewrites the snapshot file at path.
func (s *DatabaseSchema) Save(fs afero.Fs, path string) error {
	data, err := s.Encode()
	if err != nil {
		return errdefs.IO(err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdefs.IO(err)
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errdefs.IO(err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errdefs.IO(err)
	}
	return errdefs.IO(f.Close())
}
