package doctypes

import "errors"

var ErrNotFound = errors.New("doc type not found")
