package errreport

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledWithoutToken(t *testing.T) {
	Init(Config{Environment: "test"})
	assert.False(t, Enabled())

	// no-ops while disabled
	Error(httptest.NewRequest("GET", "/", nil), errors.New("boom"), nil)
	Critical(httptest.NewRequest("GET", "/", nil), errors.New("panic"))
	Close()
}
