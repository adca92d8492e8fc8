// Package manifest records what a build read and wrote.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Filename is the manifest file name inside the cache directory.
const Filename = "build-manifest.json"

// BuildManifest represents a complete record of a build's inputs and outputs.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Site      string    `json:"site"`
	Inputs    Inputs    `json:"inputs"`
	Outputs   Outputs   `json:"outputs"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
}

// Inputs captures all inputs to the build.
type Inputs struct {
	ConfigHash string      `json:"config_hash"`
	Pages      []PageEntry `json:"pages"`
}

// PageEntry is one compiled page.
type PageEntry struct {
	RouteKey          string `json:"route_key"`
	PageType          string `json:"page_type"`
	SourcePath        string `json:"source_path"`
	OutputPath        string `json:"output_path"`
	SourceFingerprint string `json:"source_fingerprint"`
	OutputHash        string `json:"output_sha256"`
}

// Outputs captures files produced besides pages.
type Outputs struct {
	ContentHash    string            `json:"content_hash,omitempty"`
	ArtifactHashes map[string]string `json:"artifact_hashes,omitempty"`
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's inputs and page
// outputs. Two builds of identical sources hash identically.
func (m *BuildManifest) Hash() (string, error) {
	hashInput := struct {
		ConfigHash string            `json:"config_hash"`
		Pages      []PageEntry       `json:"pages"`
		Artifacts  map[string]string `json:"artifacts"`
	}{
		ConfigHash: m.Inputs.ConfigHash,
		Pages:      m.Inputs.Pages,
		Artifacts:  m.Outputs.ArtifactHashes,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Write stores the manifest at path, creating the parent directory.
func (m *BuildManifest) Write(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*BuildManifest, error) {
	// #nosec G304 -- path is the configured cache location.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}
