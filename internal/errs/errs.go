package errs

import "fmt"

// Error kinds surfaced by the chat core. Handlers map these to HTTP status
// codes; everything else is treated as an internal error.
var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrForbidden       = fmt.Errorf("forbidden")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidState    = fmt.Errorf("invalid state")
)
