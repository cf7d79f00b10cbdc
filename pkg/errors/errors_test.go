package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCodeWalksChain(t *testing.T) {
	inner := WrapWithCode(ErrInvalidInput, CodeInvalidURL, "bad url")
	outer := WrapWithCode(fmt.Errorf("fetch: %w", inner), CodeAnalysisFailed, "analysis failed")

	assert.Equal(t, CodeAnalysisFailed, GetCode(outer))
	assert.True(t, HasCode(outer, CodeInvalidURL))
	assert.False(t, HasCode(outer, CodeTimeout))
	assert.True(t, IsInvalidInput(outer))
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(ErrTimeout, "model call")
	assert.Equal(t, "model call: timeout", err.Error())
	assert.Equal(t, "model call", GetMessage(err))
	assert.Nil(t, Wrap(nil, "noop"))
}
