package common

import "fmt"

var (
	ErrInvalidDate               = fmt.Errorf("invalid calendar date")
	ErrEmptyBody                 = fmt.Errorf("empty response body")
	ErrNotAnImage                = fmt.Errorf("response is not an image")
	ErrUnknownSite               = fmt.Errorf("unknown site code")
	ErrUnknownImageType          = fmt.Errorf("unknown image type code")
	ErrFetchRunHasAlreadyStarted = fmt.Errorf("fetch run has already started")
)
