package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depo-mc/depo/pkg/semver"
)

// Spiget resolves dependencies against the Spiget keyword-search API.
//
// The API offers no version listing, so constraints cannot be applied
// here; the orchestrator knows about this asymmetry and reports it when a
// constrained dependency ends up unsatisfied.
type Spiget struct {
	*Client
	baseURL string
	logger  *log.Logger
}

// NewSpiget creates a Spiget provider.
func NewSpiget(timeout time.Duration, logger *log.Logger) *Spiget {
	if logger == nil {
		logger = log.Default()
	}
	return &Spiget{
		Client:  NewClient(timeout, map[string]string{"User-Agent": "depo (https://github.com/depo-mc/depo)"}),
		baseURL: "https://api.spiget.org",
		logger:  logger,
	}
}

// Name returns the provider key.
func (s *Spiget) Name() string { return "spiget" }

// ResolveDownloadURL searches resources by name and derives the fixed
// download URL from the selected result's identifier. The first result
// whose name equals project case-insensitively wins; with no exact match
// the first result overall is used.
func (s *Spiget) ResolveDownloadURL(ctx context.Context, project string, _ Platform, c *semver.Constraint) (Resolution, bool) {
	if c != nil && !c.IsEmpty() {
		s.logger.Debug("spiget cannot apply version constraints", "project", project, "constraint", c.String())
	}

	u := fmt.Sprintf("%s/v2/search/resources/%s?field=name&size=10", s.baseURL, url.PathEscape(project))

	var results []spigetResource
	if err := s.GetJSON(ctx, u, &results); err != nil {
		s.logger.Warn("spiget lookup failed", "project", project, "err", err)
		return Resolution{}, false
	}
	if len(results) == 0 {
		return Resolution{}, false
	}

	selected := results[0]
	for _, r := range results {
		if strings.EqualFold(r.Name, project) {
			selected = r
			break
		}
	}

	return Resolution{
		URL:      fmt.Sprintf("%s/v2/resources/%d/download", s.baseURL, selected.ID),
		FileName: defaultFileName(project),
	}, true
}

// SuggestFileName returns "<project>.jar"; Spiget download URLs carry no
// file name.
func (s *Spiget) SuggestFileName(project, _ string) string {
	return defaultFileName(project)
}

type spigetResource struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
