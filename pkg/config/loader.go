package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Common errors for fixture loading.
var (
	ErrFileNotFound = errors.New("stub fixture file not found")
	ErrInvalidJSON  = errors.New("invalid JSON syntax")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
	ErrEmptyFile    = errors.New("stub fixture file is empty")
	ErrNoStubs      = errors.New("fixture contains no stubs")
)

// LoadFromFile reads a StubCollection from a JSON or YAML file. The format
// is picked by extension: .yaml/.yml parse as YAML, everything else as JSON.
func LoadFromFile(path string) (*StubCollection, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat fixture: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// ParseYAML decodes a StubCollection from YAML.
func ParseYAML(data []byte) (*StubCollection, error) {
	var c StubCollection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if len(c.Stubs) == 0 {
		return nil, ErrNoStubs
	}
	return &c, nil
}

// ParseJSON decodes a StubCollection from JSON.
func ParseJSON(data []byte) (*StubCollection, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	var c StubCollection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if len(c.Stubs) == 0 {
		return nil, ErrNoStubs
	}
	return &c, nil
}

// LoadFromGlob loads and merges every fixture matching the pattern, in
// lexical path order. Patterns support ** for recursive matching, e.g.
// "testdata/stubs/**/*.yaml".
func LoadFromGlob(pattern string) (*StubCollection, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad fixture glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files match %q", ErrFileNotFound, pattern)
	}
	sort.Strings(paths)

	merged := &StubCollection{}
	for _, path := range paths {
		c, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if merged.Name == "" {
			merged.Name = c.Name
		}
		merged.Stubs = append(merged.Stubs, c.Stubs...)
	}
	return merged, nil
}
