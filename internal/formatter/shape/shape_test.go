package shape

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

func mustDecode(t *testing.T, doc string) payload.Value {
	t.Helper()
	v, err := payload.DecodeYAML([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestContentTypes(t *testing.T) {
	t.Parallel()

	ctx := render.NewContext(format.HTML, "content_types")

	t.Run("keeps group and parameter order", func(t *testing.T) {
		t.Parallel()

		groups, err := ContentTypes(mustDecode(t, `
text/html:
  - url: http://x/login
    method: post
    params: {user: a, pass: b}
  - url: http://x/
    method: GET
application/json:
  - url: http://x/api
    method: GET
    params: {q: "1"}
`), ctx)
		require.NoError(t, err)
		require.Len(t, groups, 2)

		assert.Equal(t, "text/html", groups[0].Type)
		assert.Equal(t, "application/json", groups[1].Type)
		assert.Equal(t, []Param{{"user", "a"}, {"pass", "b"}}, groups[0].Responses[0].Params)

		assert.True(t, groups[0].Responses[0].ShowParams(), "lower-case post still shows params")
		assert.False(t, groups[0].Responses[1].ShowParams())
		assert.False(t, groups[1].Responses[0].ShowParams(), "GET never shows params")
	})

	t.Run("POST without params shows no list", func(t *testing.T) {
		t.Parallel()

		assert.False(t, Response{Method: "POST"}.ShowParams())
	})

	t.Run("reports the path of a malformed node", func(t *testing.T) {
		t.Parallel()

		_, err := ContentTypes(mustDecode(t, "text/html:\n  - method: GET\n"), ctx)
		require.ErrorIs(t, err, render.ErrMalformedPayload)

		var mpe *render.MalformedPayloadError
		require.True(t, errors.As(err, &mpe))
		assert.Equal(t, "content_types", mpe.Plugin)
		assert.Equal(t, "text/html[0].url", mpe.Path)
	})

	t.Run("rejects a non-mapping payload", func(t *testing.T) {
		t.Parallel()

		_, err := ContentTypes(payload.String("oops"), ctx)
		assert.ErrorIs(t, err, render.ErrMalformedPayload)
	})
}

func TestHealthMapOf(t *testing.T) {
	t.Parallel()

	ctx := render.NewContext(format.Text, "healthmap")

	t.Run("keeps entries and stats as given", func(t *testing.T) {
		t.Parallel()

		hm, err := HealthMapOf(mustDecode(t, `
map:
  - safe: http://a
  - unsafe: http://b
  - safe: http://c
total: 10
safe: 7
unsafe: 3
issue_percentage: 30
`), ctx)
		require.NoError(t, err)

		assert.Equal(t, []HealthEntry{
			{State: "safe", URL: "http://a"},
			{State: "unsafe", URL: "http://b"},
			{State: "safe", URL: "http://c"},
		}, hm.Entries)
		assert.Equal(t, "10", hm.Total)
		assert.Equal(t, "7", hm.Safe)
		assert.Equal(t, "3", hm.Unsafe)
		assert.Equal(t, "30", hm.IssuePercentage)
	})

	t.Run("missing map is malformed", func(t *testing.T) {
		t.Parallel()

		_, err := HealthMapOf(mustDecode(t, "total: 1\n"), ctx)
		var mpe *render.MalformedPayloadError
		require.True(t, errors.As(err, &mpe))
		assert.Equal(t, "map", mpe.Path)
	})

	t.Run("entry with two states is malformed", func(t *testing.T) {
		t.Parallel()

		_, err := HealthMapOf(mustDecode(t, "map:\n  - {safe: a, unsafe: b}\ntotal: 1\nsafe: 1\nunsafe: 0\nissue_percentage: 0\n"), ctx)
		assert.ErrorIs(t, err, ErrHealthEntry)
		assert.ErrorIs(t, err, render.ErrMalformedPayload)
	})

	t.Run("non-scalar statistic is malformed", func(t *testing.T) {
		t.Parallel()

		_, err := HealthMapOf(mustDecode(t, "map: []\ntotal: [1]\nsafe: 1\nunsafe: 0\nissue_percentage: 0\n"), ctx)
		var mpe *render.MalformedPayloadError
		require.True(t, errors.As(err, &mpe))
		assert.Equal(t, "total", mpe.Path)
	})
}
