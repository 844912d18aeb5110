package thumbnail

import (
	"bytes"
	"regexp"
)

var (
	scriptTagPattern = regexp.MustCompile(`(?is)<\s*script[\s>]`)
	eventAttrPattern = regexp.MustCompile(`(?is)<[^>]*\son[a-z]+\s*=`)
	foreignObjectTag = regexp.MustCompile(`(?is)<\s*foreignObject[\s>]`)
)

// servable reports whether bytes read back from the cache still look like a
// card we rendered. Anything else is re-rendered instead of served.
func servable(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("<svg ")) {
		return false
	}
	return !scriptTagPattern.Match(data) &&
		!eventAttrPattern.Match(data) &&
		!foreignObjectTag.Match(data)
}
