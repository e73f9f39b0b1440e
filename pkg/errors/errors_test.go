package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeInvalidParam:        http.StatusBadRequest,
		CodeIdeaNotFound:        http.StatusNotFound,
		CodeGenerationInFlight:  http.StatusConflict,
		CodeSerializationFailed: http.StatusUnprocessableEntity,
		CodeGenerationFailed:    http.StatusBadGateway,
		CodeUnknown:             http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").HTTPStatus, "code %s", code)
	}
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	e := ErrInvalidParam.WithDetail("domain")
	assert.Equal(t, "domain", e.Detail)
	assert.Empty(t, ErrInvalidParam.Detail)
}

func TestAsAppErrorUnwrapsChains(t *testing.T) {
	base := ErrIdeaNotFound.WithError(stderrors.New("position 4"))
	wrapped := fmt.Errorf("load: %w", base)

	assert.True(t, IsAppError(wrapped))
	assert.Equal(t, CodeIdeaNotFound, AsAppError(wrapped).Code)
	assert.Equal(t, CodeUnknown, AsAppError(stderrors.New("plain")).Code)
}
