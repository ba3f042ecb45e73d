package internal

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrSourceNotFound = errors.New("source not found")
	ErrDecode         = errors.New("source decode error")
	ErrEncode         = errors.New("output encode error")
	ErrPublish        = errors.New("output publish error")
	ErrUnknownFilter  = errors.New("unknown resample filter")
)

// ErrorKind names the failure class of err, "" for nil and "Unknown" when err
// carries none of the package sentinels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceNotFound):
		return "SourceNotFound"
	case errors.Is(err, ErrDecode):
		return "DecodeError"
	case errors.Is(err, ErrEncode):
		return "EncodeError"
	case errors.Is(err, ErrPublish):
		return "PublishError"
	case errors.Is(err, ErrUnknownFilter):
		return "UnknownFilter"
	case errors.Is(err, ErrInvalidRequest):
		return "InvalidRequest"
	}
	return "Unknown"
}
