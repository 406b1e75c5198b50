package models

// Requests for assistant HTTP endpoints. Defined in domain for consistency and reuse.

type AssistantQueryRequest struct {
	Query   string        `json:"query" validate:"required,min=1,max=2000"`
	Context *ChatContext  `json:"context,omitempty"`
	Options *QueryOptions `json:"options,omitempty"`
}

type AssistantStreamRequest struct {
	Query string `query:"q" json:"q" validate:"required,min=1,max=2000"`
}
