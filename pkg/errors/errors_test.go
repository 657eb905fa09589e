package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessError_Unwrap(t *testing.T) {
	err := WrapPlanNoUnavailable()

	assert.True(t, errors.Is(err, ErrPlanNoUnavailable))
	assert.Equal(t, ErrCodePlanNoUnavailable, Code(err))
	assert.Contains(t, err.Error(), ErrCodePlanNoUnavailable)
}

func TestWrapDatabaseError_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("create installment: %w", WrapDatabaseError(cause))

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrCodeDatabaseError, Code(err))
}

func TestCode_NonBusinessError(t *testing.T) {
	assert.Equal(t, "", Code(errors.New("plain")))
	assert.Equal(t, "", Code(nil))
}
