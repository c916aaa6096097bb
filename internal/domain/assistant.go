package domain

// ChatSource is a grounding reference attached to an assistant reply.
type ChatSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ChatReply is an assistant chat response, possibly served from cache.
type ChatReply struct {
	Response string       `json:"response"`
	Sources  []ChatSource `json:"sources,omitempty"`
	Cached   bool         `json:"cached"`
}

// GeneratedImage is an assistant image response, possibly served from cache.
type GeneratedImage struct {
	Data   string `json:"data"` // base64-encoded image payload
	Cached bool   `json:"cached"`
}
