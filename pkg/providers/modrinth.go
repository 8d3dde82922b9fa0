package providers

import (
	"context"
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depo-mc/depo/pkg/semver"
)

// Modrinth resolves dependencies against the Modrinth version-listing
// API. Listings are filtered by loader and game versions first; when the
// filtered listing comes back empty the lookup falls back to the
// unfiltered one. Among the surviving versions the maximum (by version
// ordering) matching the constraint wins.
type Modrinth struct {
	*Client
	baseURL string
	logger  *log.Logger
}

// NewModrinth creates a Modrinth provider.
func NewModrinth(timeout time.Duration, logger *log.Logger) *Modrinth {
	if logger == nil {
		logger = log.Default()
	}
	return &Modrinth{
		Client:  NewClient(timeout, map[string]string{"User-Agent": "depo (https://github.com/depo-mc/depo)"}),
		baseURL: "https://api.modrinth.com",
		logger:  logger,
	}
}

// Name returns the provider key.
func (m *Modrinth) Name() string { return "modrinth" }

// ResolveDownloadURL lists the project's versions and returns the
// artifact of the highest version compatible with p and c.
func (m *Modrinth) ResolveDownloadURL(ctx context.Context, project string, p Platform, c *semver.Constraint) (Resolution, bool) {
	versions, err := m.listVersions(ctx, project, p)
	if err != nil {
		m.logger.Warn("modrinth lookup failed", "project", project, "err", err)
		return Resolution{}, false
	}
	if len(versions) == 0 && (p.Loader != "" || len(p.GameVersions) > 0) {
		// Filtered listing was empty; some projects tag their uploads
		// inconsistently, so try again without filters.
		if versions, err = m.listVersions(ctx, project, Platform{}); err != nil {
			m.logger.Warn("modrinth lookup failed", "project", project, "err", err)
			return Resolution{}, false
		}
	}

	var (
		best     semver.Version
		bestFile *modrinthFile
	)
	for i := range versions {
		v, ok := semver.Parse(versions[i].VersionNumber)
		if !ok {
			continue
		}
		if c != nil && !c.Matches(v) {
			continue
		}
		f := versions[i].artifact()
		if f == nil {
			continue
		}
		if bestFile == nil || semver.Compare(v, best) > 0 {
			best, bestFile = v, f
		}
	}
	if bestFile == nil {
		return Resolution{}, false
	}

	name := bestFile.Filename
	if name == "" {
		name = defaultFileName(project)
	}
	return Resolution{URL: bestFile.URL, FileName: name}, true
}

// SuggestFileName prefers the artifact name embedded in the URL path and
// falls back to "<project>.jar".
func (m *Modrinth) SuggestFileName(project, rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); strings.HasSuffix(strings.ToLower(base), ".jar") {
			return base
		}
	}
	return defaultFileName(project)
}

func (m *Modrinth) listVersions(ctx context.Context, project string, p Platform) ([]modrinthVersion, error) {
	q := url.Values{}
	if p.Loader != "" {
		q.Set("loaders", jsonArray(p.Loader))
	}
	if len(p.GameVersions) > 0 {
		q.Set("game_versions", jsonArray(p.GameVersions...))
	}

	u := m.baseURL + "/v2/project/" + url.PathEscape(project) + "/version"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var versions []modrinthVersion
	if err := m.GetJSON(ctx, u, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// jsonArray renders values as the JSON string-array query parameter the
// Modrinth API expects (e.g. `["paper"]`).
func jsonArray(values ...string) string {
	b, _ := json.Marshal(values)
	return string(b)
}

type modrinthVersion struct {
	VersionNumber string         `json:"version_number"`
	Files         []modrinthFile `json:"files"`
}

type modrinthFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
}

// artifact selects the version's downloadable file: the one marked
// primary, else the first with the package extension.
func (v *modrinthVersion) artifact() *modrinthFile {
	for i := range v.Files {
		if v.Files[i].Primary {
			return &v.Files[i]
		}
	}
	for i := range v.Files {
		if strings.HasSuffix(strings.ToLower(v.Files[i].Filename), ".jar") {
			return &v.Files[i]
		}
	}
	return nil
}
