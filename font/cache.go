package font

import (
	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/internal/logging"
)

// Loader reads the raw bytes of a font part
type Loader func(uri string) ([]byte, error)

// Cache memoises font metrics by URI. Fonts are loaded lazily on first
// request. A font that cannot be read or parsed is cached as estimated
// metrics; the failure is logged and never returned.
//
// Cache is not safe for concurrent use.
type Cache struct {
	load   Loader
	logger logrus.FieldLogger
	fonts  map[string]Metrics
}

// NewCache creates a font cache backed by load
func NewCache(load Loader, logger logrus.FieldLogger) *Cache {
	return &Cache{
		load:   load,
		logger: logging.OrDiscard(logger),
		fonts:  make(map[string]Metrics),
	}
}

// Get returns the metrics for uri. An empty uri yields estimated metrics.
func (c *Cache) Get(uri string) Metrics {
	if uri == "" {
		return Fallback()
	}
	if m, ok := c.fonts[uri]; ok {
		return m
	}

	m := c.resolve(uri)
	c.fonts[uri] = m
	return m
}

// Len returns the number of cached fonts
func (c *Cache) Len() int {
	return len(c.fonts)
}

func (c *Cache) resolve(uri string) Metrics {
	log := c.logger.WithField("font", uri)

	if c.load == nil {
		return Fallback()
	}
	data, err := c.load(uri)
	if err != nil {
		log.WithError(err).Warn("font load failed, using estimated metrics")
		return Fallback()
	}

	if IsObfuscated(uri) {
		data, err = Deobfuscate(data, uri)
		if err != nil {
			log.WithError(err).Warn("font deobfuscation failed, using estimated metrics")
			return Fallback()
		}
	}

	tt, err := Parse(data)
	if err != nil {
		log.WithError(err).Warn("font parse failed, using estimated metrics")
		return Fallback()
	}
	log.WithField("family", tt.Family()).Debug("font loaded")
	return tt
}
