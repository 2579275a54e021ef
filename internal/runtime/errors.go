package runtime

import "errors"

// ErrDatasetCapacity indicates every open dataset slot is in use.
var ErrDatasetCapacity = errors.New("runtime: open dataset limit reached")
