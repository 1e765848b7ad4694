package krk_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratorFunctionBasic(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"def counter(n):",
		"    let i = 0",
		"    while i < n:",
		"        yield i",
		"        i = i + 1",
		"for v in counter(3):",
		"    print(v)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestGeneratorResumesBetweenYields(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"def talk():",
		"    print(\"a\")",
		"    yield 1",
		"    print(\"b\")",
		"    yield 2",
		"    print(\"c\")",
		"let g = talk()",
		"print(g())",
		"print(g())",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "a\n1\nb\n2\n", out)
}

func TestGeneratorExhaustionReturnsSelf(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"def one():",
		"    yield 1",
		"let g = one()",
		"let first = g()",
		"let second = g()",
		"print(first)",
		"print(second is g)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "1\nTrue\n", out)
}

func TestAwaitDrivesGeneratorToLastYield(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"async def fetch():",
		"    yield 1",
		"    yield 2",
		"async def main():",
		"    let v = await fetch()",
		"    print(v)",
		"main()",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "2\n", out)
}
