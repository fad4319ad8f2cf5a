package reflow

import "github.com/sirupsen/logrus"

// ExtractOptions holds the configuration of an Extractor
type ExtractOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	config Config
	logger logrus.FieldLogger
}

// defaultOptions returns the default extraction options
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:  nil, // nil means all pages
		config: DefaultConfig(),
	}
}

// clone creates a deep copy of ExtractOptions
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := ExtractOptions{
		config: o.config,
		logger: o.logger,
	}
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}
