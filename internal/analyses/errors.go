package analyses

import "errors"

var (
	ErrNotFound   = errors.New("analysis not found")
	ErrLoadFailed = errors.New("failed to load analyses")
	ErrSaveFailed = errors.New("failed to save analysis")
)
