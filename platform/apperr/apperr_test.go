package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:      http.StatusNotFound,
		KindValidation:    http.StatusBadRequest,
		KindConflict:      http.StatusConflict,
		KindForbidden:     http.StatusForbidden,
		KindUnauthorized:  http.StatusUnauthorized,
		KindInternal:      http.StatusInternalServerError,
		KindUnprocessable: http.StatusUnprocessableEntity,
		KindTooLarge:      http.StatusRequestEntityTooLarge,
		KindUpstream:      http.StatusBadGateway,
		KindUnknown:       http.StatusBadRequest,
	}
	for kind, status := range cases {
		assert.Equal(t, status, New(kind, "x").HTTPStatus(), "kind %d", kind)
	}
}

func TestGetKindLooksThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load issue: %w", NotFound("issue not found"))

	assert.Equal(t, KindNotFound, GetKind(err))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, KindUnknown, GetKind(fmt.Errorf("plain")))
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Upstream("address lookup service unavailable", cause)

	assert.Equal(t, KindUpstream, GetKind(fmt.Errorf("reverse: %w", err)))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestErrorString(t *testing.T) {
	err := Validation("bad status").WithOp("issues.Update")
	assert.Equal(t, "issues.Update: bad status", err.Error())
	assert.Equal(t, "bad status", Validation("bad status").Error())
}
