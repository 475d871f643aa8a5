package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

// constant returns a factory whose formatter always renders s.
func constant(s string) render.Factory {
	return render.Singleton(render.FormatterFunc(func(payload.Value, *render.Context) (render.Fragment, error) {
		return render.Fragment(s), nil
	}))
}

func renderWith(t *testing.T, f render.Formatter) string {
	t.Helper()
	frag, err := f.Render(payload.Null(), render.NewContext(format.HTML, "p"))
	require.NoError(t, err)
	return string(frag)
}

func TestRegisterAndResolve(t *testing.T) {
	t.Parallel()

	t.Run("resolves a registered pair", func(t *testing.T) {
		t.Parallel()

		r := New()
		require.NoError(t, r.Register(format.HTML, "healthmap", constant("hm")))

		f, ok := r.Resolve(format.HTML, "healthmap")
		require.True(t, ok)
		assert.Equal(t, "hm", renderWith(t, f))
	})

	t.Run("unknown pair returns not found", func(t *testing.T) {
		t.Parallel()

		r := New()
		require.NoError(t, r.Register(format.HTML, "healthmap", constant("hm")))

		f, ok := r.Resolve(format.Text, "healthmap")
		assert.False(t, ok)
		assert.Nil(t, f)

		f, ok = r.Resolve(format.HTML, "unknown")
		assert.False(t, ok)
		assert.Nil(t, f)
	})

	t.Run("last registration wins", func(t *testing.T) {
		t.Parallel()

		r := New()
		require.NoError(t, r.Register(format.HTML, "healthmap", constant("builtin")))
		require.NoError(t, r.Register(format.HTML, "healthmap", constant("override")))

		f, ok := r.Resolve(format.HTML, "healthmap")
		require.True(t, ok)
		assert.Equal(t, "override", renderWith(t, f))
	})

	t.Run("specific binding beats fallback", func(t *testing.T) {
		t.Parallel()

		r := New()
		require.NoError(t, r.RegisterFallback(format.JSON, constant("dump")))
		require.NoError(t, r.Register(format.JSON, "healthmap", constant("specific")))

		f, ok := r.Resolve(format.JSON, "healthmap")
		require.True(t, ok)
		assert.Equal(t, "specific", renderWith(t, f))

		f, ok = r.Resolve(format.JSON, "anything")
		require.True(t, ok)
		assert.Equal(t, "dump", renderWith(t, f))
	})

	t.Run("rejects invalid registrations", func(t *testing.T) {
		t.Parallel()

		r := New()
		assert.ErrorIs(t, r.Register(format.None, "p", constant("x")), ErrInvalidFormat)
		assert.ErrorIs(t, r.Register(format.Format("pdf"), "p", constant("x")), ErrInvalidFormat)
		assert.ErrorIs(t, r.Register(format.HTML, "p", nil), ErrNilFactory)
		assert.ErrorIs(t, r.Register(format.HTML, "", constant("x")), ErrEmptyPlugin)
		assert.ErrorIs(t, r.RegisterFallback(format.None, constant("x")), ErrInvalidFormat)
	})
}

func TestSeal(t *testing.T) {
	t.Parallel()

	t.Run("first resolve seals", func(t *testing.T) {
		t.Parallel()

		r := New()
		require.NoError(t, r.Register(format.HTML, "a", constant("a")))
		assert.False(t, r.Sealed())

		r.Resolve(format.HTML, "a")
		assert.True(t, r.Sealed())

		assert.ErrorIs(t, r.Register(format.HTML, "b", constant("b")), ErrSealed)
		assert.ErrorIs(t, r.RegisterFallback(format.JSON, constant("b")), ErrSealed)
	})

	t.Run("seal is idempotent", func(t *testing.T) {
		t.Parallel()

		r := New()
		r.Seal()
		r.Seal()
		assert.True(t, r.Sealed())
	})
}

func TestResolveConcurrently(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register(format.HTML, "healthmap", constant("hm")))
	require.NoError(t, r.Register(format.Text, "content_types", constant("ct")))

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if _, ok := r.Resolve(format.HTML, "healthmap"); !ok {
					t.Error("expected healthmap binding")
					return
				}
				if _, ok := r.Resolve(format.HTML, "missing"); ok {
					t.Error("expected no binding")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestBindingsAndPlugins(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register(format.Text, "healthmap", constant("x")))
	require.NoError(t, r.Register(format.HTML, "healthmap", constant("x")))
	require.NoError(t, r.Register(format.HTML, "content_types", constant("x")))
	require.NoError(t, r.RegisterFallback(format.JSON, constant("x")))

	assert.Equal(t, []Binding{
		{Format: format.HTML, Plugin: "content_types"},
		{Format: format.HTML, Plugin: "healthmap"},
		{Format: format.JSON, Plugin: "*", Fallback: true},
		{Format: format.Text, Plugin: "healthmap"},
	}, r.Bindings())

	assert.Equal(t, []string{"content_types", "healthmap"}, r.Plugins())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register(format.HTML, "healthmap", constant("x")))
	require.NoError(t, r.Register(format.HTML, "content_types", constant("x")))
	require.NoError(t, r.Register(format.Text, "healthmap", constant("x")))
	require.NoError(t, r.RegisterFallback(format.JSON, constant("x")))

	gaps := r.Validate(
		[]string{"healthmap", "content_types"},
		[]format.Format{format.HTML, format.Text, format.JSON},
	)

	assert.Equal(t, []Gap{{Format: format.Text, Plugin: "content_types"}}, gaps)
	assert.False(t, r.Sealed(), "validation must not seal")
}
