package catalog

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/jgivc/radarfetch/internal/common"
	"github.com/jgivc/radarfetch/internal/config"
)

// Codes known to the archive as of this writing. The config file can extend
// both lists without a rebuild.
var (
	defaultSites = []string{
		// Individual stations.
		"CASBI", "CASCM", "CASFT", "CASGO", "CASKR",
		"CASLC", "CASLA", "CASBV", "CASVD", "CASSF",
		// Regional aggregates.
		"NAT", "PYR", "PNR", "ONT", "QUE", "ATL",
	}

	defaultImageTypes = []string{
		"PRECIPET_RAIN_WEATHEROFFICE",
		"PRECIPET_SNOW_WEATHEROFFICE",
	}
)

type Catalog struct {
	sites        map[string]struct{}
	imageTypes   map[string]struct{}
	allowUnknown bool

	log *slog.Logger
}

func New(cfg *config.CatalogConfig, log *slog.Logger) *Catalog {
	c := &Catalog{
		sites:        make(map[string]struct{}),
		imageTypes:   make(map[string]struct{}),
		allowUnknown: cfg.AllowUnknown,
		log:          log.With(slog.String("item", "Catalog")),
	}

	for _, site := range defaultSites {
		c.sites[site] = struct{}{}
	}
	for _, imageType := range defaultImageTypes {
		c.imageTypes[imageType] = struct{}{}
	}

	for _, site := range cfg.Sites {
		c.sites[site] = struct{}{}
	}
	for _, imageType := range cfg.ImageTypes {
		c.imageTypes[imageType] = struct{}{}
	}

	return c
}

// ValidateSite rejects a site code the catalog does not know, so a typo
// fails before the first network call instead of producing a directory of
// empty responses.
func (c *Catalog) ValidateSite(code string) error {
	if code == "" {
		return fmt.Errorf("site code must not be empty")
	}

	if _, exists := c.sites[code]; !exists {
		if c.allowUnknown {
			c.log.Warn("Site code is not in the catalog, trying anyway", slog.String("site", code))

			return nil
		}

		return fmt.Errorf("%w: %s", common.ErrUnknownSite, code)
	}

	return nil
}

func (c *Catalog) ValidateImageType(code string) error {
	if code == "" {
		return fmt.Errorf("image type code must not be empty")
	}

	if _, exists := c.imageTypes[code]; !exists {
		if c.allowUnknown {
			c.log.Warn("Image type code is not in the catalog, trying anyway", slog.String("image_type", code))

			return nil
		}

		return fmt.Errorf("%w: %s", common.ErrUnknownImageType, code)
	}

	return nil
}

// Sites lists the known site codes, sorted, for help and error output.
func (c *Catalog) Sites() []string {
	return sortedKeys(c.sites)
}

func (c *Catalog) ImageTypes() []string {
	return sortedKeys(c.imageTypes)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
