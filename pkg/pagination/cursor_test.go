package pagination

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor_RoundTrip(t *testing.T) {
	c := Cursor{
		V:   1,
		Did: "ds-123",
		Seg: "high_risk",
		Fh:  "abcd",
		Off: 20,
		Ps:  10,
	}
	tok, err := EncodeCursor(c)
	require.NoError(t, err)
	// token should be url-safe base64 (no '+', '/', '=')
	require.False(t, strings.ContainsAny(tok, "+/="), tok)

	out, err := DecodeCursor(tok)
	require.NoError(t, err)
	require.Equal(t, c.Did, out.Did)
	require.Equal(t, c.Seg, out.Seg)
	require.Equal(t, c.Off, out.Off)
	require.Equal(t, c.Ps, out.Ps)
	require.NotZero(t, out.Iat)

	require.NoError(t, out.Bind("ds-123", "high_risk", "abcd"))
	require.ErrorIs(t, out.Bind("ds-123", "high_risk", "other"), ErrMismatch)
	require.ErrorIs(t, out.Bind("ds-999", "high_risk", "abcd"), ErrMismatch)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cases := []string{
		"",    // empty
		"!!!", // not base64
		base64.RawURLEncoding.EncodeToString([]byte("not-json")),
		// missing required fields
		mustB64(`{"v":1}`),
		mustB64(`{"v":1,"did":"","seg":"high_risk","off":0,"ps":10}`),
		mustB64(`{"v":1,"did":"x","seg":"","off":0,"ps":10}`),
		mustB64(`{"v":1,"did":"x","seg":"underpaid","off":-1,"ps":10}`),
		mustB64(`{"v":1,"did":"x","seg":"underpaid","off":0,"ps":0}`),
	}
	for i, tok := range cases {
		_, err := DecodeCursor(tok)
		require.Error(t, err, "case %d", i)
	}
}

func TestPage(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}

	got, next := Page(rows, 0, 2)
	require.Equal(t, []int{1, 2}, got)
	require.Equal(t, 2, next)

	got, next = Page(rows, 4, 2)
	require.Equal(t, []int{5}, got)
	require.Equal(t, -1, next)

	got, next = Page(rows, 3, 2)
	require.Equal(t, []int{4, 5}, got)
	require.Equal(t, -1, next)

	got, next = Page(rows, 9, 2)
	require.Empty(t, got)
	require.Equal(t, -1, next)
}

func FuzzDecodeCursor(f *testing.F) {
	seeds := []string{
		"", "abc", mustB64(`{"v":1}`), mustB64(`{"did":"x"}`),
		mustB64(`{"v":1,"did":"ds","seg":"high_risk","fh":"00","off":0,"ps":1}`),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, token string) {
		_, _ = DecodeCursor(token)
	})
}

func mustB64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
