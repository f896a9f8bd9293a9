package cmd

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guimove/fairprice/pkg/version"
)

func TestWriteVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVersion(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "fairprice "+version.Version)
	assert.Contains(t, out, "commit:  "+version.Commit)
	assert.Contains(t, out, runtime.Version())
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestWriteVersion_Short(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVersion(&buf, true))
	assert.Equal(t, version.Version+"\n", buf.String())
}
