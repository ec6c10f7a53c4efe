package models

// StoredAsset describes an object living in the external asset store. Once a
// descriptor is returned to a caller it is owned by that caller, typically
// attached to a product record.
type StoredAsset struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Format   string `json:"format"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
}
