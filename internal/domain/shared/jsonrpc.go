package shared

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// JSONRPCVersion is the version of JSON-RPC to use
const JSONRPCVersion = "2.0"

// ErrorCode represents a JSON-RPC error code
type ErrorCode int

// Standard JSON-RPC error codes
const (
	ParseError     ErrorCode = -32700
	InvalidRequest ErrorCode = -32600
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603
)

// ErrMalformedRequest is returned by ParseRequest for bodies that are not a
// JSON-RPC request object.
var ErrMalformedRequest = errors.New("malformed JSON-RPC request")

// JSONRPCRequest represents a JSON-RPC request. A nil ID marks a notification.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r *JSONRPCRequest) IsNotification() bool {
	return r.ID == nil
}

// DecodeParams unmarshals the request params into v. Absent or null params
// leave v untouched.
func (r *JSONRPCRequest) DecodeParams(v interface{}) error {
	if !hasParams(r.Params) {
		return nil
	}
	return json.Unmarshal(r.Params, v)
}

// ParamsMap returns the params as a generic object, empty when absent.
func (r *JSONRPCRequest) ParamsMap() map[string]interface{} {
	params := map[string]interface{}{}
	if hasParams(r.Params) {
		_ = json.Unmarshal(r.Params, &params)
	}
	return params
}

type rawRequest struct {
	JSONRPC *string         `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  *string         `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// ParseRequest decodes a single JSON-RPC request. Numeric ids are kept as
// json.Number so they are echoed back unchanged.
func ParseRequest(data []byte) (*JSONRPCRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawRequest
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(ErrMalformedRequest, err.Error())
	}
	if raw.Method == nil {
		return nil, errors.Wrap(ErrMalformedRequest, "missing method")
	}
	if raw.JSONRPC != nil && *raw.JSONRPC != JSONRPCVersion {
		return nil, errors.Wrapf(ErrMalformedRequest, "unsupported jsonrpc version %q", *raw.JSONRPC)
	}
	switch raw.ID.(type) {
	case nil, string, json.Number:
	default:
		return nil, errors.Wrap(ErrMalformedRequest, "id must be a string, number or null")
	}
	if hasParams(raw.Params) && bytes.TrimSpace(raw.Params)[0] != '{' {
		return nil, errors.Wrap(ErrMalformedRequest, "params must be an object")
	}

	return &JSONRPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      raw.ID,
		Method:  *raw.Method,
		Params:  raw.Params,
	}, nil
}

func hasParams(params json.RawMessage) bool {
	trimmed := bytes.TrimSpace(params)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// NewResponse creates a success response for the given request id.
func NewResponse(id interface{}, result interface{}) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse creates an error response for the given request id. An
// empty message falls back to the standard message for the code.
func NewErrorResponse(id interface{}, code ErrorCode, message string, data interface{}) *JSONRPCResponse {
	if message == "" {
		message = ErrorMessage(code)
	}
	return &JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &JSONRPCError{
			Code:    int(code),
			Message: message,
			Data:    data,
		},
	}
}

// JSONRPCNotification represents a server-to-client JSON-RPC notification
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// NewNotification creates a notification message.
func NewNotification(method string, params interface{}) *JSONRPCNotification {
	return &JSONRPCNotification{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
	}
}

// JSONRPCError represents a JSON-RPC error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorMessage returns a standard error message for a given error code
func ErrorMessage(code ErrorCode) string {
	switch code {
	case ParseError:
		return "Parse error"
	case InvalidRequest:
		return "Invalid request"
	case MethodNotFound:
		return "Method not found"
	case InvalidParams:
		return "Invalid params"
	case InternalError:
		return "Internal error"
	default:
		return "Unknown error"
	}
}
