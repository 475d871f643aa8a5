package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/registry"
	"github.com/nao1215/scanreport/internal/render"
)

func TestNewDefaultRegistry(t *testing.T) {
	t.Parallel()

	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	t.Run("every built-in plugin is covered in every format", func(t *testing.T) {
		t.Parallel()

		gaps := r.Validate(
			[]string{model.PluginContentTypes, model.PluginHealthMap},
			format.All(),
		)
		assert.Empty(t, gaps)
	})

	t.Run("unknown plugins resolve only in structured formats", func(t *testing.T) {
		t.Parallel()

		gaps := r.Validate([]string{"autothrottle"}, format.All())
		assert.ElementsMatch(t, []registry.Gap{
			{Format: format.HTML, Plugin: "autothrottle"},
			{Format: format.Text, Plugin: "autothrottle"},
			{Format: format.Markdown, Plugin: "autothrottle"},
		}, gaps)
	})
}

func TestRegisterBuiltinsCanBeOverridden(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, RegisterBuiltins(r))

	custom := render.Singleton(render.FormatterFunc(func(payload.Value, *render.Context) (render.Fragment, error) {
		return "custom", nil
	}))
	require.NoError(t, r.Register(format.HTML, model.PluginHealthMap, custom))

	f, ok := r.Resolve(format.HTML, model.PluginHealthMap)
	require.True(t, ok)
	frag, err := f.Render(payload.Null(), render.NewContext(format.HTML, model.PluginHealthMap))
	require.NoError(t, err)
	assert.Equal(t, render.Fragment("custom"), frag)

	assert.Error(t, RegisterBuiltins(r), "sealed registry rejects registration")
}
