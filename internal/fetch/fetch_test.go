package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><head><title>Miracle Cure Found</title><style>body{color:red}</style></head>
<body>
  <nav>Home | About</nav>
  <article>
    <h1>Doctors hate   this</h1>
    <p>Drinking lemon water cures &amp; prevents everything.</p>
    <div aria-hidden="true">tracking pixel</div>
    <script>alert("x")</script>
  </article>
  <footer>Copyright</footer>
</body></html>`

// newTestFetcher skips the public-address guard so httptest servers on
// loopback are reachable.
func newTestFetcher() *PageFetcher {
	return newPageFetcher(&http.Client{})
}

func TestFetch_ExtractsVisibleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, samplePage)
	}))
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Miracle Cure Found", page.Title)
	assert.Contains(t, page.Text, "Doctors hate this")
	assert.Contains(t, page.Text, "lemon water cures & prevents everything.")
	assert.NotContains(t, page.Text, "alert")
	assert.NotContains(t, page.Text, "tracking pixel")
	assert.NotContains(t, page.Text, "Home | About")
	assert.NotContains(t, page.Text, "color:red")
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_TruncatesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<p>abcdefghijklmnopqrstuvwxyz</p>")
	}))
	defer srv.Close()

	f := newTestFetcher()
	f.maxTextChars = 5
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "abcde", page.Text)
}

func TestNewPageFetcher_RefusesLoopback(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		io.WriteString(w, samplePage)
	}))
	defer srv.Close()

	_, err := NewPageFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlockedAddress)
	assert.False(t, hit)
}

func TestNewPageFetcher_RejectsNonHTTPScheme(t *testing.T) {
	_, err := NewPageFetcher().Fetch(context.Background(), "file:///etc/passwd")
	assert.Error(t, err)
}

func TestIsPublic(t *testing.T) {
	cases := map[string]bool{
		"93.184.216.34":    true,
		"2606:4700::1111":  true,
		"127.0.0.1":        false,
		"::1":              false,
		"10.1.2.3":         false,
		"172.16.0.1":       false,
		"192.168.1.1":      false,
		"169.254.169.254":  false,
		"100.64.0.1":       false,
		"0.0.0.0":          false,
		"::":               false,
		"fe80::1":          false,
		"fc00::1":          false,
		"::ffff:127.0.0.1": false,
		"224.0.0.1":        false,
	}
	for ip, want := range cases {
		assert.Equal(t, want, isPublic(netip.MustParseAddr(ip)), ip)
	}
}

func TestDialControl(t *testing.T) {
	assert.ErrorIs(t, dialControl("tcp", "127.0.0.1:80", nil), ErrBlockedAddress)
	assert.ErrorIs(t, dialControl("tcp6", "[::1]:443", nil), ErrBlockedAddress)
	assert.NoError(t, dialControl("tcp", "93.184.216.34:443", nil))
}

func TestCheckRedirect(t *testing.T) {
	redirect := func(raw string) *http.Request {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return &http.Request{URL: u}
	}

	err := checkRedirect(redirect("http://169.254.169.254/latest/meta-data/"), nil)
	assert.ErrorIs(t, err, ErrBlockedAddress)

	assert.Error(t, checkRedirect(redirect("file:///etc/passwd"), nil))
	assert.NoError(t, checkRedirect(redirect("https://example.com/next"), nil))

	via := make([]*http.Request, maxRedirects)
	assert.Error(t, checkRedirect(redirect("https://example.com/next"), via))
}
