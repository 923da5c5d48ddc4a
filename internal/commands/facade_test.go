package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdErrNilPassesThrough(t *testing.T) {
	assert.NoError(t, cmdErr(nil))
}

func TestCmdErrHidesOriginalMessageButIsUnwrappable(t *testing.T) {
	original := errors.New("boom")
	wrapped := cmdErr(original)

	require.Error(t, wrapped)
	assert.Equal(t, "error already printed", wrapped.Error())

	var pe printedError
	require.ErrorAs(t, wrapped, &pe)
	assert.Equal(t, original, pe.err)
}
