// api/errors/access_errors.go
package errors

import "errors"

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrMalformedRule     = errors.New("malformed rule data")
	ErrDatabaseOperation = errors.New("database operation failed")
)
