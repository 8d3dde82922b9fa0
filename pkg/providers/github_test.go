package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testGitHub(t *testing.T, serverURL string) *GitHub {
	t.Helper()
	g := NewGitHub("", time.Second)
	g.baseURL = serverURL
	return g
}

func TestGitHub_LatestReleaseAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/towny/releases/latest" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"tag_name": "v1.2.0",
			"assets": [
				{"name": "towny-1.2.0.jar", "browser_download_url": "https://example.com/towny-1.2.0.jar", "size": 42},
				{"name": "sources.zip", "browser_download_url": "https://example.com/sources.zip", "size": 7}
			]
		}`))
	}))
	defer srv.Close()

	g := testGitHub(t, srv.URL)
	assets, err := g.LatestReleaseAssets(context.Background(), "acme", "towny")
	if err != nil {
		t.Fatalf("LatestReleaseAssets: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}
	if assets[0].Name != "towny-1.2.0.jar" {
		t.Errorf("asset name = %q", assets[0].Name)
	}
}

func TestGitHub_LatestReleaseAssets_NoReleases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := testGitHub(t, srv.URL)
	if _, err := g.LatestReleaseAssets(context.Background(), "acme", "empty"); err == nil {
		t.Fatal("expected error for repo without releases")
	}
}

func TestPickAsset(t *testing.T) {
	assets := []ReleaseAsset{
		{Name: "sources.zip"},
		{Name: "Towny-Paper-1.2.0.jar"},
		{Name: "Towny-Folia-1.2.0.jar"},
	}

	tests := []struct {
		name   string
		filter string
		want   string
		ok     bool
	}{
		{"first jar when no filter", "", "Towny-Paper-1.2.0.jar", true},
		{"filter case-insensitive", "folia", "Towny-Folia-1.2.0.jar", true},
		{"no jar matches filter", "velocity", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickAsset(assets, tt.filter)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got.Name != tt.want {
				t.Errorf("asset = %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		ref     string
		owner   string
		repo    string
		wantErr bool
	}{
		{"acme/towny", "acme", "towny", false},
		{"https://github.com/acme/towny", "acme", "towny", false},
		{"https://github.com/acme/towny.git", "acme", "towny", false},
		{"acme", "", "", true},
		{"acme/towny/extra", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRepoRef(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepoRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRepoRef(%q) = %q/%q, want %q/%q", tt.ref, owner, repo, tt.owner, tt.repo)
		}
	}
}
