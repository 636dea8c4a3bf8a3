package domain

import "time"

// Chat is a two-party conversation thread. Participant order is fixed at
// creation; unread counters are tracked per side.
type Chat struct {
	ChatID string `json:"_id" dynamodbav:"chat_id"`

	ParticipantAID    string `json:"participantAId" dynamodbav:"participant_a_id"`
	ParticipantAModel string `json:"participantAModel" dynamodbav:"participant_a_model"`
	ParticipantAName  string `json:"participantAName" dynamodbav:"participant_a_name"`
	ParticipantBID    string `json:"participantBId" dynamodbav:"participant_b_id"`
	ParticipantBModel string `json:"participantBModel" dynamodbav:"participant_b_model"`
	ParticipantBName  string `json:"participantBName" dynamodbav:"participant_b_name"`

	LastMessageText string     `json:"-" dynamodbav:"last_message_text"`
	LastMessageAt   *time.Time `json:"-" dynamodbav:"last_message_at"`
	UnreadA         int        `json:"-" dynamodbav:"unread_a"`
	UnreadB         int        `json:"-" dynamodbav:"unread_b"`

	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"-" dynamodbav:"updated_at"`
}

// OtherSide returns the name of the participant opposite to userID.
func (c *Chat) OtherSide(userID string) string {
	if c.ParticipantAID == userID {
		return c.ParticipantBName
	}
	return c.ParticipantAName
}

// UnreadFor returns the unread counter belonging to userID's side.
func (c *Chat) UnreadFor(userID string) int {
	if c.ParticipantAID == userID {
		return c.UnreadA
	}
	return c.UnreadB
}

// HasParticipant reports whether userID is one of the two sides.
func (c *Chat) HasParticipant(userID string) bool {
	return c.ParticipantAID == userID || c.ParticipantBID == userID
}

// MessagePreview is the last-message teaser shown in the chat list.
type MessagePreview struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatSummary is one row of the chat list for a given user.
type ChatSummary struct {
	ChatID      string          `json:"_id"`
	OtherName   string          `json:"otherName"`
	LastMessage *MessagePreview `json:"lastMessage,omitempty"`
	UnreadCount int             `json:"unreadCount"`
}

// Message is a single chat message. The wire shape (`_id`, `chat`, `sender`,
// `senderModel`) mirrors what the chat view consumes.
type Message struct {
	MessageID   string    `json:"_id" dynamodbav:"message_id"`
	ChatID      string    `json:"chat" dynamodbav:"chat_id"`
	Sender      string    `json:"sender" dynamodbav:"sender_id"`
	SenderModel string    `json:"senderModel" dynamodbav:"sender_model"`
	Text        string    `json:"text" dynamodbav:"text"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
}

type CreateChatRequest struct {
	UserID     string `json:"userId" validate:"required"`
	UserModel  string `json:"userModel" validate:"required"`
	OtherID    string `json:"otherId" validate:"required"`
	OtherModel string `json:"otherModel" validate:"required"`
}

type SendMessageRequest struct {
	SenderID    string `json:"senderId" validate:"required"`
	SenderModel string `json:"senderModel" validate:"required"`
	Text        string `json:"text" validate:"required"`
}
