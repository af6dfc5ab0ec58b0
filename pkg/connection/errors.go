package connection

import (
	"errors"
	"fmt"

	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// Connection errors.
var (
	ErrNotConnected     = errors.New("not connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrRetriesExhausted = errors.New("connection retries exhausted")
)

// ResponseError is returned by SendAndGetResponse when the platform
// answers with a critical result code. It carries the full response.
type ResponseError struct {
	Code     wire.MessageCode
	Response *wire.Frame
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("platform responded %s", e.Code)
}

// IsResponseCode reports whether err is a ResponseError carrying the
// given message code.
func IsResponseCode(err error, code wire.MessageCode) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.Code == code
}
