package monitor

import "errors"

var errNoStore = errors.New("storage not configured")
