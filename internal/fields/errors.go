package fields

import "errors"

var (
	ErrAreaNotFound    = errors.New("area not found")
	ErrProductNotFound = errors.New("product not found")
)
