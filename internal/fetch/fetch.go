// Package fetch retrieves web pages and extracts their readable text for
// providers that cannot browse on their own.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

const (
	defaultMaxBodyBytes = 512 * 1024
	defaultMaxTextChars = 20000
	maxRedirects        = 5
	userAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Page is the extracted content of a fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// PageFetcher downloads pages and reduces them to visible text.
type PageFetcher struct {
	httpClient   *http.Client
	maxBodyBytes int64
	maxTextChars int
}

// ErrBlockedAddress is returned when a page resolves to an address that is
// not on the public internet.
var ErrBlockedAddress = errors.New("address is not publicly routable")

// NewPageFetcher creates a fetcher with a 10 second timeout. It only
// connects to public addresses, including after redirects.
func NewPageFetcher() *PageFetcher {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   dialControl,
	}
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}
	return newPageFetcher(&http.Client{
		Timeout:       10 * time.Second,
		Transport:     transport,
		CheckRedirect: checkRedirect,
	})
}

func newPageFetcher(client *http.Client) *PageFetcher {
	return &PageFetcher{
		httpClient:   client,
		maxBodyBytes: defaultMaxBodyBytes,
		maxTextChars: defaultMaxTextChars,
	}
}

// dialControl runs after DNS resolution, so address is always an IP.
func dialControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublic(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, addr)
	}
	return nil
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("redirect to unsupported scheme %q", req.URL.Scheme)
	}
	if addr, err := netip.ParseAddr(req.URL.Hostname()); err == nil && !isPublic(addr) {
		return fmt.Errorf("%w: redirect to %s", ErrBlockedAddress, addr)
	}
	return nil
}

// cgnat is the shared address space of RFC 6598.
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		cgnat.Contains(addr):
		return false
	}
	return true
}

// Fetch downloads pageURL and returns its title and visible text.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", req.URL.Scheme)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	page := &Page{URL: pageURL}
	var sb strings.Builder
	walk(doc, page, &sb)

	page.Text = collapseSpace(sb.String())
	if r := []rune(page.Text); len(r) > f.maxTextChars {
		page.Text = string(r[:f.maxTextChars])
	}

	log.Debug().Str("url", pageURL).Int("chars", len(page.Text)).Msg("Page fetched")
	return page, nil
}

// Subtrees skipped entirely.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"canvas":   true,
	"template": true,
	"nav":      true,
	"footer":   true,
}

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"div": true, "section": true, "article": true, "main": true, "li": true,
	"blockquote": true, "br": true, "tr": true, "figcaption": true,
}

func walk(n *html.Node, page *Page, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		if n.Data == "title" && page.Title == "" && n.FirstChild != nil {
			page.Title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		if skipTags[n.Data] || isHidden(n) {
			return
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, page, sb)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteByte('\n')
	}
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		}
	}
	return false
}

// collapseSpace squeezes runs of spaces and keeps single line breaks.
func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
