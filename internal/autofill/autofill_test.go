package autofill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchDefaultValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		param string
		want  string
		ok    bool
	}{
		{name: "e-mail beats user", param: "user_email", want: "scanreport@example.com", ok: true},
		{name: "case insensitive", param: "EMAIL", want: "scanreport@example.com", ok: true},
		{name: "name beats user", param: "username", want: "scanreport_name", ok: true},
		{name: "password", param: "passwd", want: "5543!%scanreport_secret", ok: true},
		{name: "abbreviated user", param: "usr", want: "scanreport_user", ok: true},
		{name: "number", param: "phone_num", want: "132", ok: true},
		{name: "amount", param: "Amount", want: "100", ok: true},
		{name: "account beats id", param: "account_id", want: "12", ok: true},
		{name: "identifier", param: "sessionid", want: "1", ok: true},
		{name: "no match", param: "foo", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := MatchDefaultValue(tt.param)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFill(t *testing.T) {
	t.Parallel()

	t.Run("fills only empty values", func(t *testing.T) {
		t.Parallel()

		in := map[string]string{
			"user_email": "",
			"foo":        "",
			"q":          "kept",
		}
		got := Fill(in)

		assert.Equal(t, map[string]string{
			"user_email": "scanreport@example.com",
			"foo":        "1",
			"q":          "kept",
		}, got)
		assert.Empty(t, in["foo"], "input must not be modified")
	})

	t.Run("nil input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, Fill(nil))
	})
}
