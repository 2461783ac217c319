package models

import "time"

// Message is one direct message between two users.
// Text is stored encrypted (AES+base64 in TextEnc) when an encryption key is
// configured, plaintext in Text otherwise. Rows are immutable after insert;
// conversation order is insertion order (the auto-increment ID).
type Message struct {
	ID         uint   `gorm:"primaryKey"`
	SenderID   uint   `gorm:"index:idx_msg_pair;not null"`
	ReceiverID uint   `gorm:"index:idx_msg_pair;not null"`
	Text       string `gorm:"type:text"`
	TextEnc    string `gorm:"type:text"` // AES-GCM ciphertext, base64
	ImageURL   string `gorm:"size:512"`
	CreatedAt  time.Time
}

// MessageView is the wire shape shared by the REST responses and the
// realtime newMessage event.
type MessageView struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
