package enfilade

import (
	"golang.org/x/text/cases"
)

// foldName normalizes a Library declaration name for case-insensitive
// lookup (§6's Library name table). It uses x/text/cases rather than
// strings.ToLower for the same reason the teacher's own identifier
// folding eventually wants it: a Unicode-aware case fold, not an ASCII
// one, for the one name table this package exposes to a user.
var foldCaser = cases.Fold()

func foldName(name string) string {
	return foldCaser.String(name)
}
