package plugin

import (
	"context"
	"mime"
	"regexp"
	"strings"

	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/payload"
)

// ContentTypes inventories the content types of recorded responses.
//
// Its payload maps each media type, in first-seen order, to the responses
// that carried it:
//
//	text/html:
//	  - url: http://example.com/login
//	    method: POST
//	    params: {user: admin}
type ContentTypes struct {
	exclude *regexp.Regexp
}

// ContentTypesOption configures a ContentTypes plugin.
type ContentTypesOption func(*ContentTypes)

// WithExclude skips media types matching re, e.g. `^image/` to drop images.
func WithExclude(re *regexp.Regexp) ContentTypesOption {
	return func(c *ContentTypes) {
		c.exclude = re
	}
}

// NewContentTypes creates the content-type inventory plugin.
func NewContentTypes(opts ...ContentTypesOption) *ContentTypes {
	c := &ContentTypes{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Plugin.
func (c *ContentTypes) Name() string {
	return model.PluginContentTypes
}

// Run implements Plugin.
func (c *ContentTypes) Run(_ context.Context, scan *model.Scan) (payload.Value, error) {
	var order []string
	groups := make(map[string][]payload.Value)

	for _, res := range scan.Responses {
		mt := mediaType(res.ContentType)
		if mt == "" || (c.exclude != nil && c.exclude.MatchString(mt)) {
			continue
		}
		if _, seen := groups[mt]; !seen {
			order = append(order, mt)
		}
		groups[mt] = append(groups[mt], responseValue(res))
	}

	b := payload.NewMapBuilder()
	for _, mt := range order {
		b.Set(mt, payload.Seq(groups[mt]...))
	}
	return b.Build(), nil
}

// mediaType strips parameters such as charset and lower-cases the type.
// Unparseable headers are kept as recorded so they still show up.
func mediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mt
}

func responseValue(res model.Response) payload.Value {
	b := payload.NewMapBuilder().
		Set("url", payload.String(res.URL)).
		Set("method", payload.String(strings.ToUpper(res.Method)))
	if len(res.Params) > 0 {
		params := payload.NewMapBuilder()
		for _, p := range res.Params {
			params.Set(p.Name, payload.String(p.Value))
		}
		b.Set("params", params.Build())
	}
	return b.Build()
}
