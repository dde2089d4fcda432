package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, "NAME", "SHARE")
	table.Row("Amal", "60%")
	table.Row("Basim")
	table.Row("Extra", "40%", "ignored")
	require.NoError(t, table.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "----")
	assert.Contains(t, lines[2], "Amal")
	assert.Contains(t, lines[2], "60%")
	assert.Equal(t, "Basim", strings.TrimSpace(lines[3]))
	assert.NotContains(t, lines[4], "ignored")
}
