package model

import (
	"fmt"
	"strings"
)

// QueryKind selects which lookup the external tool performs.
type QueryKind string

const (
	KindSymbol     QueryKind = "symbol"
	KindDefinition QueryKind = "definition"
	KindCallee     QueryKind = "callee"
	KindCaller     QueryKind = "caller"
	KindText       QueryKind = "text"
	KindEgrep      QueryKind = "egrep"
	KindFile       QueryKind = "file"
	KindInclude    QueryKind = "include"
	KindSet        QueryKind = "set"
)

var kindFlags = map[QueryKind]string{
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

// Kinds lists every query kind in flag order.
func Kinds() []QueryKind {
	return []QueryKind{
		KindSymbol,
		KindDefinition,
		KindCallee,
		KindCaller,
		KindText,
		KindEgrep,
		KindFile,
		KindInclude,
		KindSet,
	}
}

// Flag returns the tool option for k, or "" for an unknown kind.
func (k QueryKind) Flag() string {
	return kindFlags[k]
}

func (k QueryKind) Valid() bool {
	_, ok := kindFlags[k]
	return ok
}

func ParseQueryKind(s string) (QueryKind, error) {
	k := QueryKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown query kind %q", s)
	}
	return k, nil
}
