package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressBar(t *testing.T) {
	var buf bytes.Buffer

	assert.Nil(t, NewProgressBar(&buf, 0, "Importing"))

	bar := NewProgressBar(&buf, 3, "Importing")
	require.NotNil(t, bar)

	progress := ProgressFunc(bar)
	progress(1)
	progress(3)
	assert.True(t, bar.IsFinished())
	assert.Contains(t, buf.String(), "Importing")
}

func TestProgressFunc_NilBar(t *testing.T) {
	assert.NotPanics(t, func() { ProgressFunc(nil)(5) })
}
