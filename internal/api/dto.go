// Package api holds the request and response DTOs of the HTTP surface.
package api

import "github.com/morb-dev/morbsite/internal/domain"

// Request DTOs

type CreateMessageRequest struct {
	Content  string  `json:"content" validate:"required"`
	Username *string `json:"username,omitempty"`
	ParentId *string `json:"parentId,omitempty"`
}

type ReactionRequest struct {
	Reaction string `json:"reaction" validate:"required"`
}

type CreateMemeRequest struct {
	ImageData   string  `json:"imageData" validate:"required"`
	Title       *string `json:"title,omitempty"`
	CreatorName *string `json:"creatorName,omitempty"`
}

// Response DTOs

type MessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	HasMore    bool             `json:"hasMore"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

type CreateMessageResponse struct {
	Message domain.Message `json:"message"`
}

type MessageResponse struct {
	Message domain.Message `json:"message"`
}

type ReactionResponse struct {
	MessageId string                `json:"messageId"`
	Reactions domain.ReactionCounts `json:"reactions"`
}

type DeleteMessageResponse struct {
	Success bool           `json:"success"`
	Message domain.Message `json:"message"`
}

type MemesResponse struct {
	Memes []domain.Meme `json:"memes"`
}

type CreateMemeResponse struct {
	Meme domain.Meme `json:"meme"`
}

type TokenStatsResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the uniform error body; Code is drawn from a fixed set.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
