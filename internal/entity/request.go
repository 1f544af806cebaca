package entity

import (
	"fmt"
	"net/url"
	"time"
)

const (
	timeParamLayout = "200601021504"
	fileNameLayout  = "2006-01-02T15"
)

// Job describes one whole run: which site and product to pull, for which
// hours, and where the images go.
type Job struct {
	Site      string
	ImageType string
	Range     Range
	Directory string
}

// Request identifies a single archive image: one site, one product, one hour.
type Request struct {
	Site      string
	ImageType string
	Timestamp time.Time
}

// Query returns the archive query parameters for this request.
func (r Request) Query() url.Values {
	values := url.Values{}
	values.Set("time", r.Timestamp.Format(timeParamLayout))
	values.Set("site", r.Site)
	values.Set("image_type", r.ImageType)

	return values
}

// FileName returns the deterministic output file name. Site, image type and
// the full timestamp are all encoded so that runs with different parameters
// can share one directory without collisions.
func (r Request) FileName() string {
	return fmt.Sprintf("%s_%s_%s-00.gif", r.Site, r.ImageType, r.Timestamp.Format(fileNameLayout))
}

func (r Request) String() string {
	return fmt.Sprintf("%s/%s@%s", r.Site, r.ImageType, r.Timestamp.Format(fileNameLayout))
}
