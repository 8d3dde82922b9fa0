package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GitHub fetches release artifacts from the GitHub API. It is not a
// Provider in the resolution sense; it backs the direct "download from a
// repository release" workflow where the user names the repo themselves.
type GitHub struct {
	*Client
	baseURL string
}

// NewGitHub creates a GitHub API client. Pass an empty token for
// unauthenticated requests (lower rate limits apply).
func NewGitHub(token string, timeout time.Duration) *GitHub {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &GitHub{
		Client:  NewClient(timeout, headers),
		baseURL: "https://api.github.com",
	}
}

// ReleaseAsset is a downloadable file attached to a release.
type ReleaseAsset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
	Size int64  `json:"size"`
}

// LatestReleaseAssets returns the assets of the repository's latest
// release. Repositories without releases yield ErrNotFound.
func (g *GitHub) LatestReleaseAssets(ctx context.Context, owner, repo string) ([]ReleaseAsset, error) {
	var rel releaseResponse
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", g.baseURL, owner, repo)
	if err := g.GetJSON(ctx, url, &rel); err != nil {
		return nil, err
	}
	return rel.Assets, nil
}

// PickAsset selects the asset to download: the first jar whose name
// contains filter (case-insensitive), or the first jar at all when
// filter is empty.
func PickAsset(assets []ReleaseAsset, filter string) (ReleaseAsset, bool) {
	filter = strings.ToLower(filter)
	for _, a := range assets {
		if !strings.HasSuffix(strings.ToLower(a.Name), ".jar") {
			continue
		}
		if filter == "" || strings.Contains(strings.ToLower(a.Name), filter) {
			return a, true
		}
	}
	return ReleaseAsset{}, false
}

// ParseRepoRef splits an "owner/repo" reference, tolerating a full
// https://github.com/owner/repo URL.
func ParseRepoRef(ref string) (owner, repo string, err error) {
	ref = strings.TrimPrefix(ref, "https://github.com/")
	ref = strings.TrimPrefix(ref, "http://github.com/")
	ref = strings.TrimSuffix(strings.Trim(ref, "/"), ".git")

	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository reference %q (want owner/repo)", ref)
	}
	return parts[0], parts[1], nil
}

// releaseResponse mirrors the GitHub latest-release payload.
type releaseResponse struct {
	TagName string         `json:"tag_name"`
	Assets  []ReleaseAsset `json:"assets"`
}
