package handler

import "errors"

// ErrInvalidRequest 请求参数不合法, 路由层映射为400
var ErrInvalidRequest = errors.New("invalid request")
