package datafmt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

func sample() payload.Value {
	return payload.Map(
		payload.Pair("map", payload.Seq(
			payload.Map(payload.Pair("safe", payload.String("http://a"))),
			payload.Map(payload.Pair("unsafe", payload.String(`http://b/?q="<x>"`))),
		)),
		payload.Pair("total", payload.Int(2)),
		payload.Pair("issue_percentage", payload.Int(50)),
	)
}

func TestDumpJSON(t *testing.T) {
	t.Parallel()

	frag, err := Dump().Render(sample(), render.NewContext(format.JSON, "healthmap"))
	require.NoError(t, err)

	assert.True(t, json.Valid([]byte(frag)))
	assert.Equal(t,
		`{"map":[{"safe":"http://a"},{"unsafe":"http://b/?q=\"<x>\""}],"total":2,"issue_percentage":50}`,
		string(frag))
}

func TestDumpYAML(t *testing.T) {
	t.Parallel()

	frag, err := Dump().Render(sample(), render.NewContext(format.YAML, "healthmap"))
	require.NoError(t, err)

	back, err := payload.DecodeYAML([]byte(frag))
	require.NoError(t, err)
	assert.True(t, payload.Equal(sample(), back), "round trip changed the payload: %s", frag)
	assert.Equal(t, []string{"map", "total", "issue_percentage"}, back.Keys())
}

func TestDumpRejectsDocumentFormats(t *testing.T) {
	t.Parallel()

	_, err := Dump().Render(sample(), render.NewContext(format.HTML, "healthmap"))
	assert.ErrorIs(t, err, render.ErrUnregisteredFormatter)
}
