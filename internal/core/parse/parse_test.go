package parse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scopeidx/internal/model"
)

type fakeText map[string][]string

func (f fakeText) Open(path string) ([]string, error) {
	lines, ok := f[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return lines, nil
}

func srcA() fakeText {
	lines := make([]string, 12)
	lines[10] = "static int helper;"
	lines[11] = "int myFunc(void) {"
	return fakeText{filepath.FromSlash("/src/a.c"): lines}
}

func TestParse_Fields(t *testing.T) {
	item, err := Parse("/src/a.c myFunc 12 int myFunc(void) {", Request{
		Kind:    model.KindDefinition,
		Pattern: "myFunc",
		Label:   "proj",
	}, srcA())
	require.NoError(t, err)

	assert.Equal(t, filepath.FromSlash("/src/a.c"), item.Path)
	assert.Equal(t, "myFunc", item.Symbol)
	assert.Equal(t, 11, item.Line)
	assert.Equal(t, "int myFunc(void) {", item.Description)
	assert.Equal(t, "proj", item.Label)
	assert.Equal(t, 4, item.Col)
	assert.Equal(t, 6, item.Length)
}

func TestParse_RelativePathResolvedAgainstRoot(t *testing.T) {
	root := filepath.FromSlash("/src")
	item, err := Parse("a.c myFunc 12 int myFunc(void) {", Request{
		Kind:    model.KindSymbol,
		Pattern: "myFunc",
		Root:    root,
	}, srcA())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.c"), item.Path)
}

func TestParse_CalleeHighlightsSymbolName(t *testing.T) {
	text := fakeText{filepath.FromSlash("/src/a.c"): {"void run() {", "  helper(x);"}}
	item, err := Parse("/src/a.c helper 2 helper(x);", Request{
		Kind:    model.KindCallee,
		Pattern: "run",
	}, text)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Col)
	assert.Equal(t, 6, item.Length)
}

func TestParse_PatternMissingStillEmitsItem(t *testing.T) {
	item, err := Parse("/src/a.c myFunc 12 int myFunc(void) {", Request{
		Kind:    model.KindText,
		Pattern: "absent",
	}, srcA())
	require.NoError(t, err)
	assert.Equal(t, 0, item.Col)
	assert.Equal(t, 0, item.Length)
	assert.Equal(t, 11, item.Line)
}

func TestParse_LineBeyondFileDegrades(t *testing.T) {
	item, err := Parse("/src/a.c myFunc 400 int myFunc(void) {", Request{
		Kind:    model.KindSymbol,
		Pattern: "myFunc",
	}, srcA())
	require.NoError(t, err)
	assert.Equal(t, 399, item.Line)
	assert.Zero(t, item.Col)
	assert.Zero(t, item.Length)
}

func TestParse_RuneColumns(t *testing.T) {
	text := fakeText{filepath.FromSlash("/src/u.c"): {`char *s = "héllo"; greet();`}}
	item, err := Parse("/src/u.c main 1 greet();", Request{Kind: model.KindSymbol, Pattern: "greet"}, text)
	require.NoError(t, err)
	assert.Equal(t, 19, item.Col)
	assert.Equal(t, 5, item.Length)
}

func TestParse_ShortLineIsNoise(t *testing.T) {
	_, err := Parse("ab\r\n", Request{}, srcA())
	assert.ErrorIs(t, err, ErrNoise)

	_, err = Parse("", Request{}, srcA())
	assert.ErrorIs(t, err, ErrNoise)
}

func TestParse_TooFewSeparators(t *testing.T) {
	_, err := Parse("/src/a.c myFunc 12", Request{}, srcA())
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "/src/a.c myFunc 12", perr.Line)
}

func TestParse_NonNumericLine(t *testing.T) {
	_, err := Parse("/src/a.c myFunc twelve int myFunc(void) {", Request{}, srcA())
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.NotNil(t, perr.Cause)
}

func TestParse_TabSeparators(t *testing.T) {
	item, err := Parse("/src/a.c\tmyFunc\t12\tint myFunc(void) {", Request{Kind: model.KindSymbol, Pattern: "myFunc"}, srcA())
	require.NoError(t, err)
	assert.Equal(t, 11, item.Line)
	assert.Equal(t, "int myFunc(void) {", item.Description)
}

func TestParse_UnopenableFile(t *testing.T) {
	_, err := Parse("/src/missing.c myFunc 12 int myFunc(void) {", Request{}, srcA())
	var oerr *OpenError
	require.True(t, errors.As(err, &oerr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// Embedded whitespace in file names is a known limitation of the format:
// the first space ends the path field.
func TestParse_WhitespaceInPathMisparses(t *testing.T) {
	_, err := Parse("/src/my file.c myFunc 12 int myFunc(void) {", Request{}, srcA())
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}
