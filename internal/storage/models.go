package storage

// WatchedEntry is one movie the user has rated. The JSON field names are
// the on-disk format of the watched snapshot and must stay stable.
type WatchedEntry struct {
	ID             string  `json:"imdbID"`
	Title          string  `json:"title"`
	Year           string  `json:"year"`
	PosterURL      string  `json:"poster"`
	ExternalRating float64 `json:"imdbRating"`
	RuntimeMinutes int     `json:"runtime"`
	UserRating     float64 `json:"userRating"`
}

// WatchedKey is the store key holding the serialized watched list.
const WatchedKey = "watched"
