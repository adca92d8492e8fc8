package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/manifest"
)

// ManifestName is the task name of the implicit build manifest.
const ManifestName = "manifest"

// Manifest records every compiled page and every artifact written by
// earlier tasks into <cache>/build-manifest.json.
type Manifest struct{}

func (Manifest) Name() string { return ManifestName }

func (Manifest) Run(ctx context.Context, tc *Context) error {
	cfgHash, err := configHash(tc)
	if err != nil {
		return err
	}

	m := &manifest.BuildManifest{
		ID:        tc.BuildID,
		Timestamp: tc.StartedAt.UTC(),
		Site:      tc.Config.Site.Name,
		Inputs:    manifest.Inputs{ConfigHash: cfgHash},
		Outputs:   manifest.Outputs{ArtifactHashes: map[string]string{}},
		Status:    "complete",
	}
	if !tc.StartedAt.IsZero() {
		m.Duration = time.Since(tc.StartedAt).Milliseconds()
	}

	for _, r := range tc.Routes.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		outHash, err := fileHash(tc.OutputPath(r.OutputPath))
		if errors.Is(err, fs.ErrNotExist) {
			// page failed to compile
			continue
		}
		if err != nil {
			return err
		}
		p := r.Page()
		m.Inputs.Pages = append(m.Inputs.Pages, manifest.PageEntry{
			RouteKey:          r.Key,
			PageType:          string(r.Type),
			SourcePath:        r.SourcePath,
			OutputPath:        r.OutputPath,
			SourceFingerprint: mdfp.CalculateFingerprintFromParts(p.RawMatter(), p.Body()),
			OutputHash:        outHash,
		})
	}

	artifacts := tc.Artifacts()
	sort.Strings(artifacts)
	for _, rel := range artifacts {
		h, err := fileHash(tc.OutputPath(rel))
		if err != nil {
			return err
		}
		m.Outputs.ArtifactHashes[rel] = h
	}

	contentHash, err := m.Hash()
	if err != nil {
		return err
	}
	m.Outputs.ContentHash = contentHash

	return m.Write(filepath.Join(tc.Config.Path(tc.Config.Paths.Cache), manifest.Filename))
}

func configHash(tc *Context) (string, error) {
	data, err := yaml.Marshal(tc.Config)
	if err != nil {
		return "", fmt.Errorf("encode config for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func fileHash(path string) (string, error) {
	// #nosec G304 -- path is inside the output root.
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
