package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sjsage522/newsscraper/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homeHTML = `<!DOCTYPE html>
<html><body>
	<nav>
		<a href="/world"><span>World</span></a>
		<span>Politics</span>
		<a href="/todays-news"><span>Today's news</span></a>
	</nav>
</body></html>`

const worldHTML = `<!DOCTYPE html>
<html><body>
	<ul>
		<li class="stream-item">
			<h3 class="stream-item-title">Storm hits coast</h3>
			<p data-test-locator="stream-item-summary">Heavy rain expected.</p>
			<img src="/img/storm.jpg">
		</li>
		<li class="stream-item">
			<h3 class="stream-item-title">Markets rally</h3>
		</li>
	</ul>
</body></html>`

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(homeHTML))
	})
	mux.HandleFunc("/world", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(worldHTML))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestStaticNotOpen(t *testing.T) {
	b := NewStatic(nil, logger.Nop())

	_, err := b.Elements(context.Background(), "li")
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestStaticCategoryClick(t *testing.T) {
	server := newSiteServer(t)
	ctx := context.Background()

	b := NewStatic(server.Client(), logger.Nop())
	require.NoError(t, b.Open(ctx, server.URL, OpenOptions{Headless: true}))
	defer b.Close()

	visible, err := b.IsVisible(ctx, WithText("span", "World"))
	require.NoError(t, err)
	assert.True(t, visible)

	visible, err = b.IsVisible(ctx, WithText("span", "Today's news"))
	require.NoError(t, err)
	assert.True(t, visible)

	visible, err = b.IsVisible(ctx, WithText("span", "Sports"))
	require.NoError(t, err)
	assert.False(t, visible)

	// Politics has no link to follow
	assert.Error(t, b.Click(ctx, WithText("span", "Politics")))

	require.NoError(t, b.Click(ctx, WithText("span", "World")))
	require.NoError(t, b.WaitPresent(ctx, "h3", 0))
	require.NoError(t, b.Execute(ctx, "window.scrollBy(0, document.body.scrollHeight/3)"))

	items, err := b.Elements(ctx, "li.stream-item")
	require.NoError(t, err)
	require.Len(t, items, 2)

	title, err := items[0].Find(ctx, "h3.stream-item-title")
	require.NoError(t, err)
	text, err := title.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Storm hits coast", text)

	img, err := items[0].Find(ctx, "img")
	require.NoError(t, err)
	src, ok, err := img.Attribute(ctx, "src")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, server.URL+"/img/storm.jpg", src)

	_, err = items[1].Find(ctx, "img")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = items[1].WaitFor(ctx, "p[data-test-locator='stream-item-summary']", 0)
	assert.True(t, errors.Is(err, ErrWaitTimeout))
}

func TestStaticWaitPresentMiss(t *testing.T) {
	server := newSiteServer(t)
	ctx := context.Background()

	b := NewStatic(server.Client(), logger.Nop())
	require.NoError(t, b.Open(ctx, server.URL, OpenOptions{}))

	err := b.WaitPresent(ctx, "h3", 0)
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestStaticTextMatchIsPerTextNode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body>
			<span> World </span>
			<span>Sports<b>!</b></span>
			<span>Tech<i>nology</i></span>
		</body></html>`))
	}))
	t.Cleanup(server.Close)
	ctx := context.Background()

	b := NewStatic(server.Client(), logger.Nop())
	require.NoError(t, b.Open(ctx, server.URL, OpenOptions{}))

	tests := []struct {
		text string
		want bool
	}{
		{"World", false},
		{" World ", true},
		{"Sports", true},
		{"Sports!", false},
		{"Technology", false},
		{"Tech", true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			visible, err := b.IsVisible(ctx, WithText("span", tt.text))
			require.NoError(t, err)
			assert.Equal(t, tt.want, visible)
		})
	}
}
