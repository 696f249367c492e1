package model

// Location is a study-space branch. The init endpoint provisions a
// single default row; subscriptions reference it for display on the
// verify screen.
type Location struct {
	ID      uint64 `json:"id"`      // locations.id
	Name    string `json:"name"`    // locations.name
	Address string `json:"address"` // locations.address
}
