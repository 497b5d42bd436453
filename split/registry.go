package split

import (
	"strings"

	darkvec "github.com/darkvec/darkvec"
)

// Splitter turns raw text into chunks ready for enrichment.
type Splitter interface {
	Split(text string) []darkvec.Chunk
}

// ForExtension returns the splitter registered for a file extension.
// The mapping is a static switch so that adding a file type is a
// compile-time-visible change. Unknown extensions fail fast with
// *darkvec.ErrUnsupportedFileType.
func ForExtension(ext string, opts ...Option) (Splitter, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "md", "markdown":
		return NewMarkdown(opts...)
	default:
		return nil, &darkvec.ErrUnsupportedFileType{Ext: ext}
	}
}
