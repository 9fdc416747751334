package audit

import "errors"

var ErrTraceIncomplete = errors.New("trace requires a type and an entity")
