package stockform

import (
	"net/http"
	"strings"

	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/status"
)

// ActivationCodePreview is a parsed but not yet confirmed code upload. The
// row is only mutated once the operator confirms it.
type ActivationCodePreview struct {
	Codes []string
}

func (p ActivationCodePreview) Count() int64 {
	return int64(len(p.Codes))
}

// IngestActivationCodes parses an uploaded code file, one code per line.
// Blank lines are discarded; a file yielding no code at all is refused.
func IngestActivationCodes(fileContents string) (ActivationCodePreview, error) {
	lines := strings.Split(strings.ReplaceAll(fileContents, "\r\n", "\n"), "\n")

	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}

	if len(codes) == 0 {
		return ActivationCodePreview{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "the activation code file is empty or invalid")
	}

	return ActivationCodePreview{Codes: codes}, nil
}
