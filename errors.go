package bridge

import (
	"errors"
)

var (
	// NotFound signals that no route matched the request.
	// It leads to a "404 Not Found" response.
	NotFound = errors.New("Not found")
)
