package binance

import (
	"encoding/json"
	"fmt"
	"strings"

	"marketpull/internal/pkg/text"

	"github.com/adshao/go-binance/v2/common"
)

// maxErrorBody 限制错误信息中保留的响应体长度。
const maxErrorBody = 512

// RequestError 表示请求未拿到任何 HTTP 响应（DNS、连接、超时、读 body 失败）。
type RequestError struct {
	Endpoint Endpoint
	URL      string
	Err      error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("binance %s: request failed: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusError 表示交易所返回了非 2xx 状态码。
// 响应体是 {"code":..,"msg":..} 时 API 非空。
type StatusError struct {
	Endpoint   Endpoint
	StatusCode int
	Body       string
	API        *common.APIError
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.API != nil {
		return fmt.Sprintf("binance %s: status %d: code=%d msg=%s", e.Endpoint, e.StatusCode, e.API.Code, e.API.Message)
	}
	return fmt.Sprintf("binance %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Unwrap exposes the decoded exchange error so errors.As works on *common.APIError.
func (e *StatusError) Unwrap() error {
	if e == nil || e.API == nil {
		return nil
	}
	return e.API
}

func newStatusError(ep Endpoint, status int, body []byte) *StatusError {
	se := &StatusError{
		Endpoint:   ep,
		StatusCode: status,
		Body:       text.Truncate(strings.TrimSpace(string(body)), maxErrorBody),
	}
	var apiErr common.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Code != 0 || apiErr.Message != "") {
		se.API = &apiErr
	}
	return se
}
