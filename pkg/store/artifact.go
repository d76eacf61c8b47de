// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/schema"
	"github.com/xz1/capacity-prediction/pkg/table"
)

// ArtifactStore writes result files into a flat directory that is exposed
// for download under a public prefix.
type ArtifactStore struct {
	root   string
	subdir string
	prefix string
}

// NewArtifactStore returns a store writing to <mediaRoot>/<subdir> and
// publishing under <publicPrefix>/<subdir>.
func NewArtifactStore(mediaRoot, subdir, publicPrefix string) *ArtifactStore {
	if publicPrefix == "" {
		publicPrefix = "/"
	}
	return &ArtifactStore{root: mediaRoot, subdir: subdir, prefix: publicPrefix}
}

// Dir returns the directory artifacts are written to.
func (a *ArtifactStore) Dir() string {
	return filepath.Join(a.root, a.subdir)
}

// NewName returns a collision-resistant artifact file name.
func NewName() string {
	return "pred_" + strings.ReplaceAll(uuid.NewString(), "-", "") + ".csv"
}

// Save writes an artifact through write. Content goes to a temporary file
// that is renamed into place, so a failed save never leaves a partial
// artifact under name.
func (a *ArtifactStore) Save(name string, write func(io.Writer) error) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", apperrors.NewWithContext(apperrors.ErrCodePersistence,
			"invalid artifact name", map[string]any{"name": name})
	}

	dir := a.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodePersistence, "failed to create artifact directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodePersistence, "failed to create artifact", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", apperrors.Wrap(apperrors.ErrCodePersistence, "failed to write artifact", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", apperrors.Wrap(apperrors.ErrCodePersistence, "failed to flush artifact", err)
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return "", apperrors.Wrap(apperrors.ErrCodePersistence, "failed to publish artifact", err)
	}
	return final, nil
}

// SaveTable writes columns and rows as a CSV artifact.
func (a *ArtifactStore) SaveTable(name string, columns []string, rows []schema.Row) (string, error) {
	return a.Save(name, func(w io.Writer) error {
		return table.Write(w, columns, rows)
	})
}

// URLPath returns the public path (or absolute URL for absolute prefixes)
// of an artifact.
func (a *ArtifactStore) URLPath(name string) string {
	if u, err := url.Parse(a.prefix); err == nil && u.IsAbs() {
		joined, err := url.JoinPath(a.prefix, a.subdir, name)
		if err == nil {
			return joined
		}
	}
	return path.Join("/", a.prefix, a.subdir, name)
}

// BuildURL returns the download URL of an artifact as seen by the client
// that sent r. Absolute prefixes are returned as is.
func (a *ArtifactStore) BuildURL(r *http.Request, name string) string {
	p := a.URLPath(name)
	if r == nil || !strings.HasPrefix(p, "/") {
		return p
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if host == "" {
		return p
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, p)
}
