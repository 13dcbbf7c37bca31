// Package store persists the token id -> image URL mapping.
//
// The file is a flat JSON object with decimal string keys in ascending
// numeric order. It is rewritten in full after every chunk, through a temp
// file in the same directory, so a crash leaves the previous snapshot intact.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dmagro/nft-image-urls/internal/metadata"
)

// Results maps token id to image URL. Only resolved ids are present.
type Results map[int]string

// Load reads the mapping at path. A missing file yields an empty mapping.
func Load(path string) (Results, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Results{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	results := make(Results, len(raw))
	for key, url := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("failed to parse %s: key %q is not a token id", path, key)
		}
		results[id] = url
	}
	return results, nil
}

// IDs returns the ids present, ascending.
func (r Results) IDs() []int {
	ids := make([]int, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Pending returns the ids in [0, total) that have no entry, ascending.
func (r Results) Pending(total int) []int {
	var ids []int
	for id := 0; id < total; id++ {
		if _, ok := r[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Merge adds the URL of every resolved outcome whose id is not yet present
// and returns how many entries were added. Existing entries are never replaced.
func (r Results) Merge(outcomes []metadata.Outcome) int {
	added := 0
	for _, out := range outcomes {
		if !out.Resolved() {
			continue
		}
		if _, ok := r[out.ID]; ok {
			continue
		}
		r[out.ID] = out.URL
		added++
	}
	return added
}

// MarshalJSON encodes the mapping with keys in numeric order and 2-space indentation.
func (r Results) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := bytes.NewBufferString("{\n")
	for i, id := range r.IDs() {
		buf.Reset()
		if err := enc.Encode(r[id]); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "  %q: %s", strconv.Itoa(id), bytes.TrimRight(buf.Bytes(), "\n"))
		if i < len(r)-1 {
			out.WriteByte(',')
		}
		out.WriteByte('\n')
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// Save writes the full mapping to path, replacing any previous file atomically.
func (r Results) Save(path string) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close results: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
