// Package gateway provides a gateway to the Translation Project hub,
// abstracting away the HTTP fetching of its published pages.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the Translation Project hub.
const DefaultBaseURL = "https://translationproject.org"

// downloadConcurrency bounds parallel PO file downloads.
const downloadConcurrency = 4

// ErrTeamNotFound is returned when the hub has no team page for a language.
var ErrTeamNotFound = errors.New("language not found on the hub")

// Team is one entry of the hub's team index.
type Team struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TeamPage holds what a team page publishes: the PO file URLs for the
// language and the package-to-translator assignments.
type TeamPage struct {
	POFiles     []string
	Translators map[string]string
}

// Download describes one fetched PO file.
type Download struct {
	URL     string
	Path    string
	Size    int64
	Elapsed time.Duration
}

// Fetcher defines the behavior of a gateway for fetching information from the hub.
type Fetcher interface {
	FetchMatrix(ctx context.Context) ([]byte, error)
	FetchTeams(ctx context.Context) ([]Team, error)
	FetchTeamPage(ctx context.Context, code string) (*TeamPage, error)
	DownloadPOFiles(ctx context.Context, urls []string, destDir string) ([]Download, error)
}

// HubGateway is the concrete implementation of the Fetcher interface.
type HubGateway struct {
	client  *http.Client
	baseURL string
	logger  *log.Logger
}

// NewHubGateway creates a gateway against baseURL, or the real hub when
// baseURL is empty.
func NewHubGateway(baseURL string, logger *log.Logger) *HubGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HubGateway{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// FetchMatrix returns the raw content of the hub's status matrix page.
// Parsing is left to the matrix package; the gateway does no interpretation.
func (g *HubGateway) FetchMatrix(ctx context.Context) ([]byte, error) {
	g.logger.Debug("Fetching status matrix", "url", g.baseURL+"/extra/matrix.html")
	return g.get(ctx, g.baseURL+"/extra/matrix.html")
}

var indexTeamLink = regexp.MustCompile(`^([a-z]{2,3}(?:_[A-Za-z]+)?)\.html$`)

// FetchTeams fetches and parses the hub's team index into (code, name) pairs.
func (g *HubGateway) FetchTeams(ctx context.Context) ([]Team, error) {
	body, err := g.get(ctx, g.baseURL+"/team/index.html")
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse team index: %w", err)
	}

	var teams []Team
	seen := make(map[string]bool)
	walkAnchors(doc, func(href, text string) {
		m := indexTeamLink.FindStringSubmatch(href)
		if m == nil || text == "" || strings.HasPrefix(text, "mailto:") {
			return
		}
		code := strings.ToLower(m[1])
		if seen[code] {
			return
		}
		seen[code] = true
		teams = append(teams, Team{Code: code, Name: text})
	})
	g.logger.Debug("Fetched team index", "teams", len(teams))
	return teams, nil
}

var teamPackageLink = regexp.MustCompile(`/domain/([^./]+)\.html$`)

// FetchTeamPage fetches a team page and extracts its PO file URLs and the
// translator assigned to each package.
func (g *HubGateway) FetchTeamPage(ctx context.Context, code string) (*TeamPage, error) {
	url := fmt.Sprintf("%s/team/%s.html", g.baseURL, strings.ToLower(code))
	body, err := g.get(ctx, url)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("team %q: %w", code, ErrTeamNotFound)
		}
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse team page: %w", err)
	}

	page := &TeamPage{Translators: make(map[string]string)}

	// PO file links anywhere on the page.
	walkAnchors(doc, func(href, text string) {
		if strings.Contains(href, "/PO-files/") && strings.HasSuffix(href, ".po") {
			page.POFiles = append(page.POFiles, g.absoluteURL(href))
		}
	})

	// Translator assignments are row-scoped: a domain link and a mailto
	// anchor in the same table row.
	walkRows(doc, func(tr *html.Node) {
		var pkg, translator string
		walkAnchors(tr, func(href, text string) {
			if m := teamPackageLink.FindStringSubmatch(href); m != nil {
				pkg = m[1]
			} else if strings.HasPrefix(href, "mailto:") && translator == "" {
				translator = text
			}
		})
		if pkg != "" && translator != "" {
			page.Translators[pkg] = translator
		}
	})

	g.logger.Debug("Fetched team page", "team", code,
		"po_files", len(page.POFiles), "translators", len(page.Translators))
	return page, nil
}

// DownloadPOFiles fetches the given PO file URLs into destDir, a few at a
// time. Individual failures are logged and skipped so one flaky file does
// not abort the run; the returned slice holds the successful downloads
// sorted by path.
func (g *HubGateway) DownloadPOFiles(ctx context.Context, urls []string, destDir string) ([]Download, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	var (
		mu        sync.Mutex
		downloads []Download
	)
	start := time.Now()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(downloadConcurrency)
	for _, url := range urls {
		url := url
		eg.Go(func() error {
			d, err := g.downloadOne(egCtx, url, destDir)
			if err != nil {
				// Abort everything only on cancellation.
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				g.logger.Warn("Download failed", "url", url, "err", err)
				return nil
			}
			mu.Lock()
			downloads = append(downloads, d)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(downloads, func(i, j int) bool {
		return downloads[i].Path < downloads[j].Path
	})

	var total int64
	for _, d := range downloads {
		total += d.Size
	}
	g.logger.Info("Downloaded PO files",
		"files", len(downloads),
		"size", humanize.Bytes(uint64(total)),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return downloads, nil
}

func (g *HubGateway) downloadOne(ctx context.Context, url, destDir string) (Download, error) {
	start := time.Now()
	body, err := g.get(ctx, url)
	if err != nil {
		return Download{}, err
	}
	name := url[strings.LastIndex(url, "/")+1:]
	path := filepath.Join(destDir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return Download{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	elapsed := time.Since(start)
	g.logger.Debug("Downloaded", "file", name,
		"size", humanize.Bytes(uint64(len(body))), "elapsed", elapsed.Round(time.Millisecond))
	return Download{URL: url, Path: path, Size: int64(len(body)), Elapsed: elapsed}, nil
}

var errNotFound = errors.New("not found")

func (g *HubGateway) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "tp-stats (+https://github.com/yeager/tp-stats)")
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return body, nil
}

// absoluteURL resolves the hub's relative links against the base URL.
func (g *HubGateway) absoluteURL(href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "../"):
		return g.baseURL + "/" + strings.TrimPrefix(href, "../")
	case strings.HasPrefix(href, "/"):
		return g.baseURL + href
	default:
		return g.baseURL + "/" + href
	}
}

// walkAnchors calls fn for every anchor below n with its href and text.
func walkAnchors(n *html.Node, fn func(href, text string)) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href string
			for _, a := range n.Attr {
				if a.Key == "href" {
					href = a.Val
					break
				}
			}
			if href != "" {
				fn(href, strings.TrimSpace(nodeText(n)))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
}

// walkRows calls fn for every table row below n.
func walkRows(n *html.Node, fn func(tr *html.Node)) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			fn(n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
