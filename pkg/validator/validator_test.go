package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hashesRequest struct {
	Hashes []string `binding:"required,min=1,dive,tryte_hash"`
}

func TestTryteHash(t *testing.T) {
	Init()
	Init()

	ok := hashesRequest{Hashes: []string{strings.Repeat("A", 81), strings.Repeat("9", 81)}}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))

	bad := hashesRequest{Hashes: []string{strings.Repeat("A", 81), "abc"}}
	err := binding.Validator.ValidateStruct(&bad)
	require.Error(t, err)
	assert.Contains(t, GetErrorMsg(err), "81 位 tryte")

	err = binding.Validator.ValidateStruct(&hashesRequest{})
	require.Error(t, err)
	assert.Contains(t, GetErrorMsg(err), "不能为空")
}

func TestGetErrorMsg_Other(t *testing.T) {
	assert.Equal(t, "请求参数错误", GetErrorMsg(errors.New("boom")))
}
