package consts

// 通用错误码
const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeMethodNotAllowed = 10004 // 请求方法不允许
	CodeTooManyRequests  = 10005 // 请求过于频繁
	CodeBodyTooLarge     = 10006 // 请求体过大
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   = 20001 // 未登录（缺少凭证）
	CodeInvalidToken   = 20002 // 凭证无效或已过期
	CodeTokenExpired   = 20003 // Token 已过期
	CodePermissionDeny = 20004 // 权限不足
)

// 用户模块错误 (11xxx)
const (
	CodeUserNotFound      = 11001 // 用户不存在
	CodeUserAlreadyExist  = 11002 // 用户已存在
	CodePasswordError     = 11003 // 密码错误
	CodeVerifyCodeError   = 11006 // 验证码错误
	CodeVerifyCodeExpire  = 11007 // 验证码已过期
	CodeAvatarUploadError = 11008 // 头像上传失败
)

// 好友模块错误 (12xxx)
const (
	CodeAlreadyFriend        = 12001 // 已经是好友
	CodeFriendRequestSent    = 12002 // 好友申请已发送
	CodeNotFriend            = 12003 // 不存在该好友关系
	CodeFriendRequestMissing = 12004 // 没有可同意的好友申请
	CodeFriendTargetNotFound = 12005 // 要添加的用户不存在
	CodeCannotAddSelf        = 12006 // 不能添加自己为好友
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      = 30001 // 服务器内部错误
	CodeServiceUnavailable = 30002 // 服务暂不可用
	CodeTimeoutError       = 30003 // 请求处理超时
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeMethodNotAllowed: "请求方法不允许",
	CodeTooManyRequests:  "请求过于频繁",
	CodeBodyTooLarge:     "请求体过大",

	// 认证错误
	CodeUnauthorized:   "用户未登录",
	CodeInvalidToken:   "token 失效，请重新登录",
	CodeTokenExpired:   "Token 已过期",
	CodePermissionDeny: "权限不足",

	// 用户模块
	CodeUserNotFound:      "用户不存在",
	CodeUserAlreadyExist:  "用户已存在",
	CodePasswordError:     "密码错误",
	CodeVerifyCodeError:   "验证码不正确",
	CodeVerifyCodeExpire:  "验证码已失效",
	CodeAvatarUploadError: "头像上传失败",

	// 好友模块
	CodeAlreadyFriend:        "该好友已经添加过",
	CodeFriendRequestSent:    "好友申请已发送",
	CodeNotFriend:            "不存在该好友关系",
	CodeFriendRequestMissing: "好友申请不存在",
	CodeFriendTargetNotFound: "要添加的 username 不存在",
	CodeCannotAddSelf:        "不能添加自己为好友",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
	CodeTimeoutError:       "请求处理超时",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsNonServerError 判断是否为客户端可见的业务错误（非 3xxxx）
// 服务端错误需要记录日志并统一返回 CodeInternalError
func IsNonServerError(code int32) bool {
	return code > 0 && code < 30000
}
