package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno
// 被 %w 包装过的 Errno 也能识别
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var ptr *Errno
	if errors.As(err, &ptr) {
		return ptr.Code, err.Error()
	}
	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, err.Error()
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
	ErrInvalidArgument  = Errno{Code: 10005, Message: "Invalid argument"}
)

// Business Errors (20000+)
var (
	ErrInvalidStartIndex    = Errno{Code: 20201, Message: "Start index must not be negative"}
	ErrInvalidSecurityLevel = Errno{Code: 20202, Message: "Security level must be between 1 and 3"}
	ErrInvalidHash          = Errno{Code: 20203, Message: "Invalid transaction hash"}
	ErrInvalidRange         = Errno{Code: 20204, Message: "Stop index must be greater than start index and span at most 1000 addresses"}
	ErrLedgerUnavailable    = Errno{Code: 20301, Message: "Ledger node unavailable"}
	ErrStoreNotConfigured   = Errno{Code: 20401, Message: "Address store is not configured"}
	ErrSyncInProgress       = Errno{Code: 20402, Message: "Another sync is running for this seed"}
)
