package errorx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(cause, CodeDBError, "create contact %s", "+15550001")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDBError, GetCode(err))
	assert.Equal(t, "create contact +15550001: connection refused", err.Error())
}

func TestGetCodeForeignError(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("boom")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(CodeNotFound, "missing")))
	assert.True(t, IsNotFound(errors.New("record not found")))
	assert.False(t, IsNotFound(New(CodeDBError, "db down")))
	assert.False(t, IsNotFound(nil))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(CodeDeliveryError, "rejected")
	outer := Wrap(inner, CodeServerBusy, "send failed")

	assert.True(t, IsCode(outer, CodeDeliveryError))
	assert.True(t, IsCode(outer, CodeServerBusy))
	assert.False(t, IsCode(outer, CodeNotFound))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		CodeSuccess:       http.StatusOK,
		CodeInvalidParam:  http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeNotFound:      http.StatusNotFound,
		CodeDeliveryError: http.StatusBadGateway,
		CodeDBError:       http.StatusInternalServerError,
		CodeServerBusy:    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %d", code)
	}
}
