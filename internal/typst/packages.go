package typst

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/fakturo/fakturo/internal/logger"
	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

const defaultRegistryURL = "https://packages.typst.org"

// PackageSpec identifies a typst package by namespace, name and version.
type PackageSpec struct {
	Namespace string
	Name      string
	Version   string
}

func (s PackageSpec) String() string {
	return fmt.Sprintf("@%s/%s:%s", s.Namespace, s.Name, s.Version)
}

// matches package imports like: #import "@preview/tablex:0.0.8": tablex
var packageImportRe = regexp.MustCompile(`"@([a-z0-9-]+)/([a-zA-Z0-9-]+):([0-9]+\.[0-9]+\.[0-9]+)`)

// ImportedPackages lists the package dependencies a source text declares,
// deduplicated, in order of first appearance.
func ImportedPackages(source string) []PackageSpec {
	matches := packageImportRe.FindAllStringSubmatch(source, -1)
	specs := lo.Map(matches, func(m []string, _ int) PackageSpec {
		return PackageSpec{Namespace: m[1], Name: m[2], Version: m[3]}
	})
	return lo.Uniq(specs)
}

// PackageCache materializes typst packages under
// <root>/<namespace>/<name>/<version>/, downloading them from the package
// registry on first use. Package content is immutable once present, so
// concurrent materialization of the same package is resolved by extracting
// into a staging directory and renaming into place; the loser of the race
// simply uses the winner's directory.
type PackageCache struct {
	root        string
	registryURL string
	client      *http.Client
	logger      *logger.Logger
}

type PackageCacheOption func(c *PackageCache)

// WithRegistryURL overrides the package registry endpoint.
func WithRegistryURL(url string) PackageCacheOption {
	return func(c *PackageCache) {
		c.registryURL = strings.TrimSuffix(url, "/")
	}
}

// NewPackageCache creates a package cache rooted at root.
func NewPackageCache(root string, log *logger.Logger, opts ...PackageCacheOption) *PackageCache {
	c := &PackageCache{
		root:        root,
		registryURL: defaultRegistryURL,
		client:      &http.Client{},
		logger:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the cache root directory.
func (c *PackageCache) Root() string {
	return c.root
}

// Dir returns the directory a package resolves to, whether or not it exists.
func (c *PackageCache) Dir(spec PackageSpec) string {
	return filepath.Join(c.root, spec.Namespace, spec.Name, spec.Version)
}

// URL returns the registry location a package is fetched from.
func (c *PackageCache) URL(spec PackageSpec) string {
	return fmt.Sprintf("%s/%s/%s-%s.tar.gz", c.registryURL, spec.Namespace, spec.Name, spec.Version)
}

// Ensure returns the package directory, materializing it on first use.
// A second call after successful materialization returns the existing
// directory without re-fetching.
func (c *PackageCache) Ensure(spec PackageSpec) (string, error) {
	dir := c.Dir(spec)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir, nil
	}
	if err := c.download(spec, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func (c *PackageCache) download(spec PackageSpec, dir string) error {
	url := c.URL(spec)
	unavailable := func(cause error) error {
		return ierr.WithError(cause).
			WithMessagef("package %s is not available", spec).
			WithHintf("Download %s and extract it to %s", url, dir).
			WithReportableDetails(map[string]any{
				"package": spec.String(),
				"url":     url,
				"path":    dir,
			}).
			Mark(ierr.ErrPackageUnavailable)
	}

	c.logger.Infow("downloading typst package", "package", spec.String(), "url", url)

	resp, err := c.client.Get(url)
	if err != nil {
		return unavailable(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return unavailable(fmt.Errorf("registry returned status %d", resp.StatusCode))
	}

	staging := fmt.Sprintf("%s.tmp-%s", dir, ulid.Make().String())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return unavailable(err)
	}
	defer os.RemoveAll(staging)

	if err := extractTarGz(resp.Body, staging); err != nil {
		return unavailable(err)
	}

	if err := os.Rename(staging, dir); err != nil {
		// a concurrent materialization may have landed first
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
		return unavailable(err)
	}
	return nil
}

// extractTarGz unpacks a gzipped tarball into dest, rejecting entries that
// escape it.
func extractTarGz(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		name := filepath.Clean(hdr.Name)
		if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
			return fmt.Errorf("archive entry escapes destination: %s", hdr.Name)
		}
		target := filepath.Join(dest, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		default:
			// symlinks and special files are not part of typst packages
		}
	}
}
