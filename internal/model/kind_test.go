package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryKindFlags(t *testing.T) {
	want := map[QueryKind]string{
		KindSymbol:     "-0",
		KindDefinition: "-1",
		KindCallee:     "-2",
		KindCaller:     "-3",
		KindText:       "-4",
		KindEgrep:      "-5",
		KindFile:       "-6",
		KindInclude:    "-7",
		KindSet:        "-8",
	}
	for k, flag := range want {
		assert.Equal(t, flag, k.Flag(), "kind %s", k)
	}
	assert.Len(t, Kinds(), len(want))
	assert.Equal(t, "", QueryKind("nope").Flag())
}

func TestParseQueryKind(t *testing.T) {
	k, err := ParseQueryKind("  Callee ")
	require.NoError(t, err)
	assert.Equal(t, KindCallee, k)

	_, err = ParseQueryKind("assign")
	assert.Error(t, err)
}

func TestItemHighlightEnd(t *testing.T) {
	it := Item{Col: 4, Length: 6}
	assert.Equal(t, 10, it.HighlightEnd())
}
