package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestOutputTable(t *testing.T) {
	tbl := newTable(col("Outcome"), numCol("Records"))
	tbl.add("transferred", 12)
	tbl.add("skipped")
	out := tbl.render()

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 6, "top, header, rule, two rows, bottom:\n%s", out)
	assert.Contains(t, lines[1], "Outcome", "headers keep their case")
	assert.Contains(t, out, "transferred")
	assert.True(t, strings.HasSuffix(strings.TrimRight(lines[3], "│ "), "12"), "counts align right: %q", lines[3])
}

func TestOutputTable_Footer(t *testing.T) {
	tbl := newTable(col("Outcome"), numCol("Records"))
	tbl.add("transferred", 1)
	tbl.total("catalog rows", 1)
	out := tbl.render()

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 7, "top, header, rule, row, rule, footer, bottom:\n%s", out)
	assert.Contains(t, lines[5], "catalog rows")
}

func TestOutputTable_WrapsLongPaths(t *testing.T) {
	long := "/music/" + strings.Repeat("Long Album Name ", 8) + "track.flac"
	tbl := newTable(numCol("#"), wrapCol("Path"))
	tbl.add(1, long)
	out := tbl.render()

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), wrapWidth+12, "line too wide: %q", line)
	}
	assert.Contains(t, out, "track.flac")
}

func TestOutputTable_ExtraCellsDropped(t *testing.T) {
	tbl := newTable(col("A"))
	tbl.add("x", "y")
	assert.NotContains(t, tbl.render(), "y")
}

func TestOutputTable_NoColumns(t *testing.T) {
	assert.Empty(t, newTable().render())
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARN":    "WARN",
		"error":   "ERROR",
		"info":    "INFO",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), in)
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0f8fad5b", shortID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.Equal(t, "abc", shortID("abc"))
}
