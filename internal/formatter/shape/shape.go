// Package shape decodes the payloads of the built-in plugins into typed
// views that every format's formatters share.
//
// Formatters must not guess at payload structure. Each decoder here checks
// the shape it needs and reports the first divergence as a
// *render.MalformedPayloadError naming the path of the offending node, so
// a broken payload costs one report section and nothing more.
package shape

import (
	"strconv"
	"strings"

	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

// Param is one request parameter recorded for a response.
type Param struct {
	Name  string
	Value string
}

// Response is one recorded response within a content-type group.
type Response struct {
	URL    string
	Method string
	Params []Param
}

// ShowParams reports whether the parameter list should be rendered: only
// for POST requests that actually carried parameters.
func (r Response) ShowParams() bool {
	return strings.EqualFold(r.Method, "post") && len(r.Params) > 0
}

// ContentTypeGroup lists the responses recorded for one content type.
type ContentTypeGroup struct {
	Type      string
	Responses []Response
}

// ContentTypes decodes a content_types payload: a mapping from content type
// to a sequence of response mappings, each carrying url, method and an
// optional params mapping. Group and parameter order are kept.
func ContentTypes(p payload.Value, ctx *render.Context) ([]ContentTypeGroup, error) {
	pairs, err := p.Pairs()
	if err != nil {
		return nil, render.Malformed(ctx, "", err)
	}

	groups := make([]ContentTypeGroup, 0, len(pairs))
	for _, pair := range pairs {
		items, err := pair.Value.Items()
		if err != nil {
			return nil, render.Malformed(ctx, pair.Key, err)
		}

		group := ContentTypeGroup{Type: pair.Key, Responses: make([]Response, 0, len(items))}
		for i, item := range items {
			path := pair.Key + "[" + strconv.Itoa(i) + "]"
			res, err := decodeResponse(item, path, ctx)
			if err != nil {
				return nil, err
			}
			group.Responses = append(group.Responses, res)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func decodeResponse(v payload.Value, path string, ctx *render.Context) (Response, error) {
	var res Response
	var err error

	if res.URL, err = stringField(v, "url"); err != nil {
		return Response{}, render.Malformed(ctx, path+".url", err)
	}
	if res.Method, err = stringField(v, "method"); err != nil {
		return Response{}, render.Malformed(ctx, path+".method", err)
	}

	params, ok := v.Get("params")
	if !ok || params.IsNull() {
		return res, nil
	}
	entries, err := params.Pairs()
	if err != nil {
		return Response{}, render.Malformed(ctx, path+".params", err)
	}
	for _, e := range entries {
		val, err := e.Value.Scalar()
		if err != nil {
			return Response{}, render.Malformed(ctx, path+".params."+e.Key, err)
		}
		res.Params = append(res.Params, Param{Name: e.Key, Value: val})
	}
	return res, nil
}

// HealthEntry is one page of the health map.
type HealthEntry struct {
	State string
	URL   string
}

// HealthMap is the decoded healthmap payload. The statistics keep the text
// the plugin supplied so they render exactly as given.
type HealthMap struct {
	Entries         []HealthEntry
	Total           string
	Safe            string
	Unsafe          string
	IssuePercentage string
}

// HealthMapOf decodes a healthmap payload: a mapping with a "map" sequence
// of single-key state→url mappings plus total, safe, unsafe and
// issue_percentage.
func HealthMapOf(p payload.Value, ctx *render.Context) (HealthMap, error) {
	m, err := p.Field("map")
	if err != nil {
		return HealthMap{}, render.Malformed(ctx, "map", err)
	}
	items, err := m.Items()
	if err != nil {
		return HealthMap{}, render.Malformed(ctx, "map", err)
	}

	hm := HealthMap{Entries: make([]HealthEntry, 0, len(items))}
	for i, item := range items {
		path := "map[" + strconv.Itoa(i) + "]"
		pairs, err := item.Pairs()
		if err != nil {
			return HealthMap{}, render.Malformed(ctx, path, err)
		}
		if len(pairs) != 1 {
			return HealthMap{}, render.Malformed(ctx, path, errSingleKey(len(pairs)))
		}
		url, err := pairs[0].Value.AsString()
		if err != nil {
			return HealthMap{}, render.Malformed(ctx, path+"."+pairs[0].Key, err)
		}
		hm.Entries = append(hm.Entries, HealthEntry{State: pairs[0].Key, URL: url})
	}

	stats := []struct {
		key string
		dst *string
	}{
		{"total", &hm.Total},
		{"safe", &hm.Safe},
		{"unsafe", &hm.Unsafe},
		{"issue_percentage", &hm.IssuePercentage},
	}
	for _, s := range stats {
		if *s.dst, err = numberField(p, s.key); err != nil {
			return HealthMap{}, render.Malformed(ctx, s.key, err)
		}
	}
	return hm, nil
}

func stringField(v payload.Value, key string) (string, error) {
	f, err := v.Field(key)
	if err != nil {
		return "", err
	}
	return f.AsString()
}

// numberField accepts numbers and numeric-looking strings, since hand-written
// snapshots often quote them.
func numberField(v payload.Value, key string) (string, error) {
	f, err := v.Field(key)
	if err != nil {
		return "", err
	}
	if f.Kind() == payload.KindNumber || f.Kind() == payload.KindString {
		return f.Scalar()
	}
	return "", &payload.ShapeError{Path: key, Want: payload.KindNumber, Got: f.Kind()}
}
