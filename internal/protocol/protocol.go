// Package protocol implements the wire format spoken over client
// connections: one JSON object per line, newline-terminated. JSON string
// escaping guarantees the payload itself never contains a raw newline,
// so no length prefix is needed. Frame size is unbounded; memory is
// limited only by available resources, which is a known limitation.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes carried in response envelopes.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnknownAction = "UNKNOWN_ACTION"
	CodeBadJSON       = "BAD_JSON"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeServerError   = "SERVER_ERROR"
)

// ErrMalformed is returned by Decode when a frame is not a well-formed
// JSON object.
var ErrMalformed = errors.New("malformed message")

// Request is one client frame: an action name plus its payload. Data is
// kept raw so the dispatcher can decode it into the action's own shape.
type Request struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Response is one server frame.
type Response struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a machine-readable code and a human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OKResponse wraps data in a success envelope.
func OKResponse(data interface{}) Response {
	return Response{OK: true, Data: data}
}

// ErrResponse builds a failure envelope.
func ErrResponse(code, message string) Response {
	return Response{OK: false, Error: &ErrorBody{Code: code, Message: message}}
}

// Encode serializes v as a single newline-terminated frame.
func Encode(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Decode parses one frame (with or without its trailing newline) into a
// Request. A frame that is not a JSON object fails with ErrMalformed.
func Decode(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return req, nil
}
