package domain

import "time"

// InboundMessage is one chat event as delivered by the transport gateway:
// a sender id and a raw text body, nothing structured.
type InboundMessage struct {
	SenderID   string
	Body       string
	ReceivedAt time.Time
}

// OutboundMessage is one reply addressed back to the sender. Either Text is
// set, or Image carries a chart attachment.
type OutboundMessage struct {
	ID    string
	To    string
	Text  string
	Image *ImageAttachment
}

// ImageAttachment is a rendered chart payload ready to be sent as a photo.
type ImageAttachment struct {
	MIME string
	Data []byte
}

// MessageLogEntry is one row of the append-only inbound audit trail. The core
// only ever writes it.
type MessageLogEntry struct {
	SenderID string
	Body     string
	Date     Date
	Time     Clock
}
