package clipboard

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shodgson/prosemirror-numbering/schema/list"
)

// Policy sanitizes pasted HTML. It keeps what user generated content may
// hold, plus the attributes of the block markup rendered by this module.
var Policy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	contentTypeRegexp := regexp.MustCompile(`^[A-Za-z]+$`)
	numberRegexp := regexp.MustCompile(`^\d+$`)
	numCharRegexp := regexp.MustCompile(`^[0-9A-Za-z]+$`)
	classRegexp := regexp.MustCompile(`^[\w\- ]+$`)

	Policy.AllowAttrs(list.AttrContentType).Matching(contentTypeRegexp).OnElements("div")
	Policy.AllowAttrs(list.AttrIndex, list.AttrLevel).Matching(numberRegexp).OnElements("div")
	Policy.AllowAttrs(list.AttrNumChar).Matching(numCharRegexp).OnElements("div")
	Policy.AllowAttrs("class").Matching(classRegexp).OnElements("div", "p")
	Policy.AllowAttrs("start").Matching(numberRegexp).OnElements("ol")
}
