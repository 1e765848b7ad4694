package krk_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListComprehension(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let xs = [x * x for x in range(5)]",
		"print(xs)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "[0, 1, 4, 9, 16]\n", out)
}

func TestListComprehensionWithFilter(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let xs = [x for x in range(10) if x % 2 == 0]",
		"print(xs)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "[0, 2, 4, 6, 8]\n", out)
}

func TestSetComprehension(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let s = {x % 3 for x in range(10)}",
		"print(len(s))",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestDictComprehension(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let d = {x: x * x for x in range(4)}",
		"for k, v in d.items():",
		"    print(k, v)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "0 0\n1 1\n2 4\n3 9\n", out)
}

func TestNestedComprehensionOverUnpackedPairs(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let pairs = [(1, 2), (3, 4)]",
		"let sums = [a + b for a, b in pairs]",
		"print(sums)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "[3, 7]\n", out)
}

func TestGeneratorExpression(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let g = (x * 2 for x in range(3))",
		"for v in g:",
		"    print(v)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "0\n2\n4\n", out)
}

func TestGeneratorExpressionAsCallArgument(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"print(sum((x for x in range(5))))",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "10\n", out)
}

func TestConditionalExpression(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"def sign(n):",
		"    return \"neg\" if n < 0 else \"nonneg\"",
		"print(sign(-3))",
		"print(sign(3))",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "neg\nnonneg\n", out)
}

func TestConditionalExpressionInComprehensionHead(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let xs = [x if x % 2 == 0 else -x for x in range(5)]",
		"print(xs)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "[0, -1, 2, -3, 4]\n", out)
}

func TestConditionalExpressionNested(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"def classify(n):",
		"    return \"zero\" if n == 0 else (\"pos\" if n > 0 else \"neg\")",
		"print(classify(0))",
		"print(classify(5))",
		"print(classify(-5))",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "zero\npos\nneg\n", out)
}
