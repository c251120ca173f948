package extract

import (
	"github.com/leapstack-labs/tablook/internal/rawdoc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// Workbook reads the workbook identity from its repository location.
// It returns nil when the document carries no identity.
func Workbook(root *rawdoc.Node) *core.Workbook {
	loc := root.Child("repository-location")
	id := loc.AttrOr("id", "")
	if id == "" {
		return nil
	}
	return &core.Workbook{ID: id, Name: id}
}
