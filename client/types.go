// Package client is the Go SDK for the CivicPulse platform. It wraps the
// REST API and the realtime channel, and provides the two stateful building
// blocks consumers embed in their UIs: the ConversationSynchronizer, which
// keeps a live ordered message log for one conversation, and the query cache
// Coordinator, which turns fast-changing filter state into cached,
// invalidation-aware server queries.
package client

import "time"

// Message is one immutable entry in a conversation log.
type Message struct {
	ID               string    `json:"id"`
	ConversationType string    `json:"conversationType"`
	ConversationID   string    `json:"conversationId"`
	Author           string    `json:"author"`
	Text             string    `json:"text"`
	Attachments      []string  `json:"attachments"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Poll is a civic poll as served by the admin API.
type Poll struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PollList is one page of polls plus pagination totals.
type PollList struct {
	Polls      []Poll `json:"polls"`
	TotalPolls int    `json:"totalPolls"`
	TotalPages int    `json:"totalPages"`
}

// PollListQuery carries the parameters of a paginated poll listing.
// Page is 1-indexed.
type PollListQuery struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	SortBy    string
	SortOrder string
}

// PollInput is the payload for creating or updating a poll.
type PollInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Envelope is the outbound message payload transmitted over the channel.
type Envelope struct {
	ConversationType string   `json:"conversationType"`
	ConversationID   string   `json:"conversationId"`
	Author           string   `json:"author"`
	Text             string   `json:"text"`
	Attachments      []string `json:"attachments,omitempty"`
}
