package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"basic-cleaning/models"
)

const (
	artifactsDir = "artifacts"
	manifestFile = "manifest.yaml"
	aliasLatest  = "latest"
)

// FileArtifactStore keeps versioned, immutable artifacts on local disk:
//
//	<root>/artifacts/<name>/v<N>/<file>
//	<root>/artifacts/<name>/v<N>/manifest.yaml
type FileArtifactStore struct {
	root string
	now  func() time.Time
}

// StoreOption customizes a FileArtifactStore during construction.
type StoreOption func(*FileArtifactStore)

// WithClock overrides the clock used for manifest timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *FileArtifactStore) {
		s.now = clock
	}
}

// NewFileArtifactStore opens (creating if needed) a store rooted at root.
func NewFileArtifactStore(root string, opts ...StoreOption) (*FileArtifactStore, error) {
	if err := os.MkdirAll(filepath.Join(root, artifactsDir), 0755); err != nil {
		return nil, fmt.Errorf("store: create root %q: %w", root, err)
	}
	s := &FileArtifactStore{root: root, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the directory the store lives in.
func (s *FileArtifactStore) Root() string { return s.root }

// ParseRef splits a reference such as "entity/project/sample.csv:v2" into
// the artifact name and its alias. The alias defaults to "latest".
func ParseRef(ref string) (name, alias string, err error) {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	name, alias = ref, aliasLatest
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		name, alias = ref[:i], ref[i+1:]
	}
	if err := validateName(name); err != nil {
		return "", "", err
	}
	if alias == "" {
		return "", "", errors.New("empty alias")
	}
	if alias != aliasLatest {
		if _, err := parseVersion(alias); err != nil {
			return "", "", fmt.Errorf("unknown alias %q", alias)
		}
	}
	return name, alias, nil
}

func validateName(name string) error {
	switch {
	case name == "":
		return errors.New("empty artifact name")
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("artifact name %q must not start with '.'", name)
	case strings.ContainsAny(name, `/\:`):
		return fmt.Errorf("artifact name %q contains a path separator or ':'", name)
	}
	return nil
}

func parseVersion(alias string) (int, error) {
	if !strings.HasPrefix(alias, "v") {
		return 0, fmt.Errorf("not a version alias: %q", alias)
	}
	n, err := strconv.Atoi(alias[1:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("not a version alias: %q", alias)
	}
	return n, nil
}

// Versions lists the published versions of name in ascending order.
func (s *FileArtifactStore) Versions(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, artifactsDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: list versions of %q: %w", name, err)
	}
	var versions []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if n, err := parseVersion(e.Name()); err == nil {
			versions = append(versions, n)
		}
	}
	sort.Ints(versions)
	return versions, nil
}

// Lookup returns the manifest of the artifact ref points at.
func (s *FileArtifactStore) Lookup(ref string) (*models.Artifact, error) {
	name, alias, err := ParseRef(ref)
	if err != nil {
		return nil, &models.ResolutionError{Ref: ref, Err: err}
	}

	version := -1
	if alias == aliasLatest {
		versions, err := s.Versions(name)
		if err != nil {
			return nil, &models.ResolutionError{Ref: ref, Err: err}
		}
		if len(versions) > 0 {
			version = versions[len(versions)-1]
		}
	} else {
		version, _ = parseVersion(alias)
	}
	if version < 0 {
		return nil, &models.ResolutionError{Ref: ref, Err: fmt.Errorf("no versions of %q", name)}
	}

	data, err := os.ReadFile(filepath.Join(s.versionDir(name, version), manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.ResolutionError{Ref: ref, Err: fmt.Errorf("%s:v%d does not exist", name, version)}
		}
		return nil, &models.ResolutionError{Ref: ref, Err: err}
	}
	var a models.Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, &models.ResolutionError{Ref: ref, Err: fmt.Errorf("read manifest: %w", err)}
	}
	return &a, nil
}

// Resolve returns the local path of the file behind ref.
func (s *FileArtifactStore) Resolve(ref string) (string, error) {
	a, err := s.Lookup(ref)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.versionDir(a.Name, a.Version), a.File)
	if _, err := os.Stat(path); err != nil {
		return "", &models.ResolutionError{Ref: ref, Err: err}
	}
	return path, nil
}

// Publish copies localPath into the store as the next version of name.
// The version directory is staged under a hidden name and renamed into
// place once the file and manifest are complete.
func (s *FileArtifactStore) Publish(localPath, name, artifactType, description, runID string) (*models.Artifact, error) {
	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("store: publish: %w", err)
	}
	if strings.TrimSpace(artifactType) == "" {
		return nil, fmt.Errorf("store: publish %q: empty artifact type", name)
	}

	nameDir := filepath.Join(s.root, artifactsDir, name)
	if err := os.MkdirAll(nameDir, 0755); err != nil {
		return nil, fmt.Errorf("store: publish %q: %w", name, err)
	}
	staging, err := os.MkdirTemp(nameDir, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("store: publish %q: %w", name, err)
	}
	defer os.RemoveAll(staging)

	fileName := filepath.Base(localPath)
	sum, size, err := copyFile(localPath, filepath.Join(staging, fileName))
	if err != nil {
		return nil, fmt.Errorf("store: publish %q: %w", name, err)
	}

	versions, err := s.Versions(name)
	if err != nil {
		return nil, err
	}
	next := 0
	if len(versions) > 0 {
		next = versions[len(versions)-1] + 1
	}

	a := &models.Artifact{
		ID:          uuid.NewString(),
		Name:        name,
		Version:     next,
		Type:        artifactType,
		Description: description,
		File:        fileName,
		Checksum:    "sha256:" + sum,
		Size:        size,
		RunID:       runID,
		CreatedAt:   s.now().UTC(),
	}
	manifest, err := yaml.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("store: encode manifest for %q: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(staging, manifestFile), manifest, 0644); err != nil {
		return nil, fmt.Errorf("store: write manifest for %q: %w", name, err)
	}

	if err := os.Rename(staging, s.versionDir(name, next)); err != nil {
		return nil, fmt.Errorf("store: commit %s:v%d: %w", name, next, err)
	}
	return a, nil
}

func (s *FileArtifactStore) versionDir(name string, version int) string {
	return filepath.Join(s.root, artifactsDir, name, "v"+strconv.Itoa(version))
}

// RefOf formats the canonical reference of a stored artifact.
func RefOf(a *models.Artifact) string {
	return a.Name + ":v" + strconv.Itoa(a.Version)
}

func copyFile(src, dst string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", 0, err
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if err != nil {
		_ = out.Close()
		return "", 0, err
	}
	if err := out.Close(); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
