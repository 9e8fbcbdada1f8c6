package checkpoint

import "github.com/google/uuid"

// NewMarker generates an opaque checkpoint marker. Node runtime code
// never interprets a marker's contents — it only compares markers for
// equality across a barrier — so any globally-unique value works; a
// UUID is what the driving program (flowctl) uses to kick one off.
func NewMarker() string {
	return uuid.NewString()
}
