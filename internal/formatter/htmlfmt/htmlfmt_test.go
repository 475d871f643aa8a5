package htmlfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

type link struct {
	class, href, text string
}

// links parses frag and returns every anchor in document order.
func links(t *testing.T, frag render.Fragment) []link {
	t.Helper()

	root, err := html.Parse(strings.NewReader(string(frag)))
	require.NoError(t, err)

	var out []link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var l link
			for _, a := range n.Attr {
				switch a.Key {
				case "class":
					l.class = a.Val
				case "href":
					l.href = a.Val
				}
			}
			if n.FirstChild != nil {
				l.text = n.FirstChild.Data
			}
			out = append(out, l)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func healthMap(entries ...payload.Value) payload.Value {
	return payload.Map(
		payload.Pair("map", payload.Seq(entries...)),
		payload.Pair("total", payload.Int(10)),
		payload.Pair("safe", payload.Int(7)),
		payload.Pair("unsafe", payload.Int(3)),
		payload.Pair("issue_percentage", payload.Int(30)),
	)
}

func entry(state, url string) payload.Value {
	return payload.Map(payload.Pair(state, payload.String(url)))
}

func TestHealthMap(t *testing.T) {
	t.Parallel()

	ctx := render.NewContext(format.HTML, "healthmap")

	t.Run("renders entries in order with state classes", func(t *testing.T) {
		t.Parallel()

		frag, err := HealthMap().Render(healthMap(
			entry("safe", "http://a"),
			entry("unsafe", "http://b"),
			entry("safe", "http://c"),
		), ctx)
		require.NoError(t, err)

		assert.Equal(t, []link{
			{class: "safe", href: "http://a", text: "http://a"},
			{class: "unsafe", href: "http://b", text: "http://b"},
			{class: "safe", href: "http://c", text: "http://c"},
		}, links(t, frag))
	})

	t.Run("passes statistics through unchanged", func(t *testing.T) {
		t.Parallel()

		frag, err := HealthMap().Render(healthMap(), ctx)
		require.NoError(t, err)

		s := string(frag)
		assert.Contains(t, s, "<h3>Stats</h3>")
		assert.Contains(t, s, "<strong>Total</strong>: 10 <br/>")
		assert.Contains(t, s, "<strong>Safe</strong>: 7 <br/>")
		assert.Contains(t, s, "<strong>Unsafe</strong>: 3 <br/>")
		assert.Contains(t, s, "<strong>Issue percentage</strong>: 30%")
	})

	t.Run("escapes hostile URLs and neutralizes unknown states", func(t *testing.T) {
		t.Parallel()

		hostile := `http://x/"><script>alert(1)</script>`
		frag, err := HealthMap().Render(healthMap(entry(`safe" onclick="x`, hostile)), ctx)
		require.NoError(t, err)

		assert.NotContains(t, string(frag), "<script>")
		got := links(t, frag)
		require.Len(t, got, 1)
		assert.Equal(t, hostile, got[0].href)
		assert.Equal(t, hostile, got[0].text)
		assert.Equal(t, "unknown", got[0].class)
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		p := healthMap(entry("safe", "http://a"), entry("unsafe", "http://b"))
		first, err := HealthMap().Render(p, ctx)
		require.NoError(t, err)
		second, err := HealthMap().Render(p, ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()

		_, err := HealthMap().Render(payload.Seq(), ctx)
		assert.ErrorIs(t, err, render.ErrMalformedPayload)
	})
}

func contentTypes(method string, params payload.Value) payload.Value {
	res := payload.NewMapBuilder().
		Set("url", payload.String("http://x/search")).
		Set("method", payload.String(method))
	if !params.IsNull() {
		res.Set("params", params)
	}
	return payload.Map(payload.Pair("text/html", payload.Seq(res.Build())))
}

func TestContentTypes(t *testing.T) {
	t.Parallel()

	ctx := render.NewContext(format.HTML, "content_types")

	t.Run("POST lists each parameter once", func(t *testing.T) {
		t.Parallel()

		frag, err := ContentTypes().Render(
			contentTypes("POST", payload.Map(payload.Pair("q", payload.String("x")))), ctx)
		require.NoError(t, err)

		s := string(frag)
		assert.Contains(t, s, "<li>Parameters:</li>")
		assert.Equal(t, 1, strings.Count(s, "<li>q = x</li>"))
		assert.Equal(t, []link{{href: "http://x/search", text: "http://x/search"}}, links(t, frag))
	})

	t.Run("GET with parameters shows no list", func(t *testing.T) {
		t.Parallel()

		frag, err := ContentTypes().Render(
			contentTypes("GET", payload.Map(payload.Pair("q", payload.String("x")))), ctx)
		require.NoError(t, err)
		assert.NotContains(t, string(frag), "Parameters:")
		assert.NotContains(t, string(frag), "q = x")
	})

	t.Run("escapes parameter names and values", func(t *testing.T) {
		t.Parallel()

		frag, err := ContentTypes().Render(contentTypes("post", payload.Map(
			payload.Pair("<b>", payload.String(`"><img src=x onerror=alert(1)>`)),
		)), ctx)
		require.NoError(t, err)
		assert.NotContains(t, string(frag), "<img")
		assert.NotContains(t, string(frag), "<b>")
		assert.Contains(t, string(frag), "&lt;b&gt; = ")
	})

	t.Run("keeps content type order", func(t *testing.T) {
		t.Parallel()

		p, err := payload.DecodeYAML([]byte(`
text/html: [{url: "http://a", method: GET}]
image/png: [{url: "http://b", method: GET}]
application/json: [{url: "http://c", method: GET}]
`))
		require.NoError(t, err)

		frag, err := ContentTypes().Render(p, ctx)
		require.NoError(t, err)

		s := string(frag)
		htmlAt := strings.Index(s, "text/html")
		png := strings.Index(s, "image/png")
		js := strings.Index(s, "application/json")
		assert.True(t, htmlAt < png && png < js, "order lost: %s", s)
	})
}
