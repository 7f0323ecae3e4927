package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripWhitespace(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: " alice ", expected: "alice"},
		{in: "al ice", expected: "alice"},
		{in: "al\u3000ice", expected: "alice"},
		{in: "al\u200bice\ufeff", expected: "alice"},
		{in: "a\tb\nc", expected: "abc"},
		{in: "", expected: ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, StripWhitespace(test.in), test.in)
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "alicesmith", NormalizeName(" Alice  Smith\n"))
}

func TestContainsAny(t *testing.T) {
	kw, ok := ContainsAny("用户昵称", []string{"姓名", "昵称"})
	require.True(t, ok)
	require.Equal(t, "昵称", kw)

	_, ok = ContainsAny("学校", []string{"", "nick"})
	require.False(t, ok)
}

func TestCleanText(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "\n a   \t b \n", expected: "a b"},
		{in: "a\u0000b", expected: "ab"},
		{in: "al\nice", expected: "al ice"},
		{in: "\u200bbob\r\n", expected: "bob"},
		{in: "张 三", expected: "张 三"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, CleanText(test.in), test.in)
	}
}
