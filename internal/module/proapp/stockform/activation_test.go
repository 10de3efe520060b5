package stockform

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepass/cp-stock/pkg/errors"
)

func TestIngestActivationCodes_OneCodePerLine(t *testing.T) {
	preview, err := IngestActivationCodes("ABH\nJHB")

	require.NoError(t, err)
	assert.Equal(t, []string{"ABH", "JHB"}, preview.Codes)
	assert.Equal(t, int64(2), preview.Count())
}

func TestIngestActivationCodes_SkipsBlankLinesAndPadding(t *testing.T) {
	preview, err := IngestActivationCodes("  ABH  \r\n\r\nJHB\n\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"ABH", "JHB"}, preview.Codes)
}

func TestIngestActivationCodes_RefusesEmptyFile(t *testing.T) {
	_, err := IngestActivationCodes("\n  \n")

	require.Error(t, err)
	ae := errors.Destruct(err)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatusCode)
}
