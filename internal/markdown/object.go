package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/rogersnm/linkbook/internal/model"
)

const delimiter = "---\n"

// MarshalObject writes o as frontmatter (id, name, type, related) with the
// description as the markdown body.
func MarshalObject(o model.ManagedObject) ([]byte, error) {
	meta, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.Write(meta)
	buf.WriteString(delimiter)
	if body := strings.TrimSpace(o.Description); body != "" {
		buf.WriteString("\n" + body + "\n")
	}
	return buf.Bytes(), nil
}

func ParseObject(r io.Reader) (model.ManagedObject, error) {
	var o model.ManagedObject
	body, err := frontmatter.Parse(r, &o)
	if err != nil {
		return o, fmt.Errorf("parsing frontmatter: %w", err)
	}
	o.Description = strings.TrimSpace(string(body))
	if o.RelatedObjectIDs == nil {
		o.RelatedObjectIDs = []int64{}
	}
	return o, nil
}

func ObjectFileName(o model.ManagedObject) string {
	return fmt.Sprintf("%d.md", o.ID)
}

// ExportDir writes one file per object into dir and returns the paths written.
func ExportDir(dir string, objects []model.ManagedObject) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	paths := make([]string, 0, len(objects))
	for _, o := range objects {
		data, err := MarshalObject(o)
		if err != nil {
			return paths, fmt.Errorf("object %d: %w", o.ID, err)
		}
		path := filepath.Join(dir, ObjectFileName(o))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ImportDir reads every *.md file in dir, in file name order. Files that fail
// to parse are reported together after the rest have been read.
func ImportDir(dir string) ([]model.ManagedObject, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}
	sort.Strings(matches)

	var objects []model.ManagedObject
	var errs []error
	for _, path := range matches {
		o, err := readObject(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		objects = append(objects, o)
	}
	return objects, errors.Join(errs...)
}

func readObject(path string) (model.ManagedObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ManagedObject{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ParseObject(f)
}
