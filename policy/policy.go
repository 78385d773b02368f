// Package policy implements the crawl policy gate: per-host robots rules,
// cached, consulted before any listing page is fetched.
package policy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// cacheTTL is how long a fetched policy stays fresh. Entries older than
	// this are refetched on the next lookup.
	cacheTTL = 24 * time.Hour

	fetchTimeout = 10 * time.Second
)

type entry struct {
	disallow  []string
	fetchedAt time.Time
}

// Gate answers "may this URL be fetched" from per-host robots rules. A host
// whose policy cannot be retrieved, or whose policy file is empty, is treated
// as allow-all: an infrastructure hiccup on the policy file itself must never
// block crawling.
type Gate struct {
	agent  string
	client *http.Client

	mu    sync.RWMutex
	cache map[string]entry

	now func() time.Time
}

// NewGate creates a gate for the given user-agent token. The token is matched
// against User-agent lines in robots files.
func NewGate(agent string) *Gate {
	return &Gate{
		agent:  agent,
		client: &http.Client{Timeout: fetchTimeout},
		cache:  make(map[string]entry),
		now:    time.Now,
	}
}

// IsAllowed reports whether the URL's path is permitted by its host's crawl
// policy, refreshing the cached policy when stale. Redundant concurrent
// refreshes of the same host are tolerated; last write wins.
func (g *Gate) IsAllowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		log.Warn().Str("url", rawURL).Msg("Unparseable URL passed to policy gate, allowing")
		return true
	}

	g.mu.RLock()
	e, ok := g.cache[u.Host]
	g.mu.RUnlock()

	if !ok || g.now().Sub(e.fetchedAt) > cacheTTL {
		e = g.refresh(ctx, u.Scheme, u.Host)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	for _, prefix := range e.disallow {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// refresh fetches and parses the host's robots file, caching the result.
// Any fetch failure is cached as allow-all so a transient error does not
// block the host indefinitely.
func (g *Gate) refresh(ctx context.Context, scheme, host string) entry {
	e := entry{fetchedAt: g.now()}

	body, err := g.fetchRobots(ctx, scheme, host)
	if err != nil {
		log.Warn().Err(err).Str("host", host).Msg("Crawl policy fetch failed, allowing all paths")
	} else {
		e.disallow = parseRobots(body, g.agent)
	}

	g.mu.Lock()
	g.cache[host] = e
	g.mu.Unlock()

	return e
}

func (g *Gate) fetchRobots(ctx context.Context, scheme, host string) (string, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create robots request: %w", err)
	}
	req.Header.Set("User-Agent", g.agent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("robots fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read robots body: %w", err)
	}
	return string(data), nil
}

// parseRobots collects Disallow path prefixes from directive blocks relevant
// to the given agent. A "User-agent:" line opens a block; the block is
// relevant when the agent token is "*" or names this crawler. Empty Disallow
// values (the conventional allow-all marker) are skipped.
func parseRobots(body, agent string) []string {
	var prefixes []string
	relevant := false

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "user-agent:"):
			token := strings.TrimSpace(line[len("user-agent:"):])
			relevant = token == "*" || (token != "" &&
				strings.Contains(strings.ToLower(agent), strings.ToLower(token)))
		case strings.HasPrefix(lower, "disallow:") && relevant:
			prefix := strings.TrimSpace(line[len("disallow:"):])
			if prefix != "" {
				prefixes = append(prefixes, prefix)
			}
		}
	}

	return prefixes
}
