package message

import "encoding/json"

// Standard JSON-RPC 2.0 error codes.
const (
	// ParseError indicates invalid JSON was received.
	ParseError = -32700

	// InvalidRequest indicates the JSON is not a valid Request object.
	InvalidRequest = -32600

	// MethodNotFound indicates the method does not exist.
	MethodNotFound = -32601

	// InvalidParams indicates invalid method parameters.
	InvalidParams = -32602

	// InternalError indicates an internal JSON-RPC error.
	InternalError = -32603
)

// Workspace backend error codes (-32001 to -32050).
const (
	WorkspaceNotFound      = -32001
	WorkspaceAlreadyExists = -32002
	WorkspaceRemoveFailed  = -32003
	PathNotDirectory       = -32010
	GitCloneFailed         = -32020
	SessionUnavailable     = -32030
)

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a new JSON-RPC error.
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// ErrorCodeName returns a human-readable name for an error code.
func ErrorCodeName(code int) string {
	switch code {
	case ParseError:
		return "ParseError"
	case InvalidRequest:
		return "InvalidRequest"
	case MethodNotFound:
		return "MethodNotFound"
	case InvalidParams:
		return "InvalidParams"
	case InternalError:
		return "InternalError"
	case WorkspaceNotFound:
		return "WorkspaceNotFound"
	case WorkspaceAlreadyExists:
		return "WorkspaceAlreadyExists"
	case WorkspaceRemoveFailed:
		return "WorkspaceRemoveFailed"
	case PathNotDirectory:
		return "PathNotDirectory"
	case GitCloneFailed:
		return "GitCloneFailed"
	case SessionUnavailable:
		return "SessionUnavailable"
	default:
		return "UnknownError"
	}
}
