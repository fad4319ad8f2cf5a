package reflow

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal problem met while processing a document, such as a
// page that could not be loaded
type Warning struct {
	// Page is the 1-indexed page the warning concerns, 0 for the document
	Page    int
	Message string
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s", w.Page, w.Message)
	}
	return w.Message
}

// FormatWarnings joins warnings one per line
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
