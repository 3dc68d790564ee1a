package utils

import (
	"strconv"

	"ChatRoom/consts"

	"google.golang.org/grpc/status"
)

// ExtractErrorCode 提取业务错误码
// service 层约定：status message 为业务码字符串。非 status 错误一律视为服务器内部错误。
func ExtractErrorCode(err error) int32 {
	if err == nil {
		return consts.CodeSuccess
	}

	if st, ok := status.FromError(err); ok {
		if bizCode, parseErr := strconv.Atoi(st.Message()); parseErr == nil {
			return int32(bizCode)
		}
	}
	return consts.CodeInternalError
}
