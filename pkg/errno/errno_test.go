package errno

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"nil", nil, OK.Code},
		{"值类型", ErrInvalidStartIndex, ErrInvalidStartIndex.Code},
		{"指针类型", &ErrBind, ErrBind.Code},
		{"包装后的值", fmt.Errorf("scan: %w", ErrInvalidSecurityLevel), ErrInvalidSecurityLevel.Code},
		{"普通错误", errors.New("boom"), InternalServerError.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := Decode(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestErrnoIs(t *testing.T) {
	wrapped := fmt.Errorf("scan: %w", ErrInvalidStartIndex)
	assert.True(t, errors.Is(wrapped, ErrInvalidStartIndex))
	assert.False(t, errors.Is(wrapped, ErrInvalidSecurityLevel))
}
