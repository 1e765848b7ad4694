package krk_test

import (
	"strings"
	"testing"

	"github.com/kuroko-lang/krk"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	var out strings.Builder
	vm := krk.NewVM(krk.WithStdout(&out))
	_, err := krk.Interpret(vm, source, "<test>")
	return out.String(), err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, "print(1 + 2 * 3)\n")
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestDefaultArguments(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"def greet(name, greeting=\"hi\"):",
		"    print(greeting, name)",
		"greet(\"ren\")",
		"greet(\"ren\", \"yo\")",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "hi ren\nyo ren\n", out)
}

func TestClassInitAndRepr(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"class Point:",
		"    def __init__(self, x, y):",
		"        self.x = x",
		"        self.y = y",
		"    def __repr__(self):",
		"        return \"Point(\" + str(self.x) + \", \" + str(self.y) + \")\"",
		"let p = Point(1, 2)",
		"print(repr(p))",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "Point(1, 2)\n", out)
}

func TestListSort(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let xs = [3, 1, 2]",
		"xs.sort()",
		"print(xs)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]\n", out)
}

func TestTryExcept(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"try:",
		"    raise ValueError(\"nope\")",
		"except ValueError as e:",
		"    print(\"caught\", str(e))",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "caught nope\n", out)
}

func TestDictIterationOrder(t *testing.T) {
	out, err := run(t, strings.Join([]string{
		"let d = {}",
		"d[\"c\"] = 3",
		"d[\"a\"] = 1",
		"d[\"b\"] = 2",
		"for k, v in d.items():",
		"    print(k, v)",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, "c 3\na 1\nb 2\n", out)
}

func TestUnhandledExceptionCarriesTrace(t *testing.T) {
	_, err := run(t, strings.Join([]string{
		"def boom():",
		"    raise ValueError(\"bad\")",
		"boom()",
		"",
	}, "\n"))
	require.Error(t, err)
	kerr, ok := err.(*krk.KurokoError)
	require.True(t, ok, "expected a *krk.KurokoError")
	require.NotEmpty(t, kerr.Trace, "expected at least one unwound frame")
}

func TestImportResolvesRegisteredModule(t *testing.T) {
	var out strings.Builder
	vm := krk.NewVM(krk.WithStdout(&out))
	var mod krk.Table
	krk.AttachNamedValue(vm, &mod, "answer", krk.Int(42))
	krk.RegisterModule(vm, "facts", &mod)
	_, err := krk.Interpret(vm, strings.Join([]string{
		"from facts import answer",
		"print(answer)",
		"",
	}, "\n"), "<test>")
	require.NoError(t, err)
	require.Equal(t, "42\n", out.String())
}

func TestImportMissingModuleRaises(t *testing.T) {
	_, err := run(t, "import nope\n")
	require.Error(t, err)
}

func TestClosureSurvivesGCWhileItsOwnBodyRuns(t *testing.T) {
	var out strings.Builder
	vm := krk.NewVM(krk.WithStdout(&out), krk.WithGCStress(true))
	_, err := krk.Interpret(vm, strings.Join([]string{
		"def make_adder(x):",
		"    def adder(y):",
		"        return x + y",
		"    return adder",
		"print(make_adder(3)(4))",
		"",
	}, "\n"), "<test>")
	require.NoError(t, err)
	require.Equal(t, "7\n", out.String())
}
