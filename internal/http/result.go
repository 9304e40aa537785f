package httpapi

// Result 统一响应包裹，日历前端按 code 分支处理
// - code: 2000 成功；4000 参数错误；4090 预订冲突；-1 其他错误
// - type: 'success' | 'error' | 'warning'
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess    = 2000
	ResultBadRequest = 4000
	// ResultConflict 冲突时 message 按行列出全部冲突日，前端原样展示
	ResultConflict = 4090
	ResultError    = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(code int, message string) Result[any] {
	return Result[any]{Code: code, Type: "error", Message: message, Result: nil}
}
