package sonar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sonarstash/sonarstash/internal/logger"
)

// catalogPageSize is the page size requested from /api/rules/search.
const catalogPageSize = 500

// RuleCatalog is a set of rule identifiers, deduplicated by trimmed key.
// It is built fresh for every run and discarded after classification.
type RuleCatalog struct {
	keys map[string]struct{}
}

// NewRuleCatalog creates an empty rule catalog.
func NewRuleCatalog() *RuleCatalog {
	return &RuleCatalog{keys: make(map[string]struct{})}
}

// Add inserts a rule key into the catalog. Keys are trimmed before
// insertion; empty keys are ignored.
func (c *RuleCatalog) Add(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	c.keys[key] = struct{}{}
}

// Has reports whether the catalog contains the given rule key.
func (c *RuleCatalog) Has(key string) bool {
	_, ok := c.keys[strings.TrimSpace(key)]
	return ok
}

// Len returns the number of distinct rule keys in the catalog.
func (c *RuleCatalog) Len() int {
	return len(c.keys)
}

// CatalogFetcher fetches rule identifiers from the SonarQube rules search
// API.
type CatalogFetcher struct {
	baseURL string
	token   string
	client  *http.Client
	log     *logger.Logger
}

// NewCatalogFetcher creates a catalog fetcher against the given SonarQube
// root URL. Timeouts are the client's responsibility; the fetcher adds none
// of its own.
func NewCatalogFetcher(baseURL, token string, client *http.Client, log *logger.Logger) *CatalogFetcher {
	return &CatalogFetcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  client,
		log:     log.WithPrefix("CATALOG"),
	}
}

// Fetch walks the paginated rules search until the reported total is
// covered and returns the accumulated catalog. The catalog is best-effort
// enrichment: any network or parse failure stops the walk and whatever was
// accumulated so far is returned, possibly empty. Fetch never fails.
//
// The fetched counter advances by the page size rather than by the number
// of keys actually received. A page with zero keys stops the walk
// unconditionally, so a total that disagrees with the real page sizes
// cannot loop forever.
func (f *CatalogFetcher) Fetch(ctx context.Context, languages, types string) *RuleCatalog {
	catalog := NewRuleCatalog()

	fetched := 0
	total := 1
	for page := 1; total > fetched; page++ {
		keys, pageTotal, err := f.fetchPage(ctx, languages, types, page)
		if err != nil {
			f.log.Error("Unable to fetch rule catalog from SonarQube: %v", err)
			f.log.Debug("Rule catalog fetch failed on page %d (accumulated %d keys): %v",
				page, catalog.Len(), err)
			return catalog
		}
		if len(keys) == 0 {
			break
		}
		for _, key := range keys {
			catalog.Add(key)
		}
		total = pageTotal
		fetched += catalogPageSize
	}

	f.log.Debug("Fetched %d rule keys from the catalog", catalog.Len())
	return catalog
}

// fetchPage requests a single page of the rules search.
func (f *CatalogFetcher) fetchPage(ctx context.Context, languages, types string, page int) ([]string, int, error) {
	query := url.Values{}
	query.Set("languages", languages)
	query.Set("ps", strconv.Itoa(catalogPageSize))
	query.Set("p", strconv.Itoa(page))
	query.Set("types", types)
	query.Set("f", "key")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+"/api/rules/search?"+query.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	if f.token != "" {
		req.SetBasicAuth(f.token, "")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("rules search returned %s", resp.Status)
	}

	var payload struct {
		Total int `json:"total"`
		Rules []struct {
			Key string `json:"key"`
		} `json:"rules"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("decoding rules search response: %w", err)
	}

	keys := make([]string, 0, len(payload.Rules))
	for _, rule := range payload.Rules {
		keys = append(keys, rule.Key)
	}
	return keys, payload.Total, nil
}
