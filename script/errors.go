package script

import "errors"

var errNotInitialized = errors.New("lua engine not initialized")
