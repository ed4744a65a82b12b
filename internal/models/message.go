package models

// Message kinds. The relay never inspects these; they only matter to
// clients rendering the message.
const (
	MessageText  = "text"
	MessageImage = "image"
	MessageFile  = "file"
)

// Message is a single chat message. The ID is client-generated and acts as
// the merge key across the independent copies of a room held by the server
// and each client, so merging the same message twice must never duplicate
// it. Messages are immutable once created.
type Message struct {
	// ID is the unique identifier, assigned by the sending client
	ID string `json:"id"`

	// Text is the message body, or a short caption for file messages
	Text string `json:"text"`

	// Sender is the user ID of the author
	Sender string `json:"sender"`

	// Timestamp is epoch milliseconds at send time; merged message lists
	// are sorted ascending by this field
	Timestamp int64 `json:"timestamp"`

	// Type is one of text, image or file
	Type string `json:"type"`

	// FileURL carries the attachment for image/file messages,
	// typically a data URI
	FileURL string `json:"fileUrl,omitempty"`

	// FileName is the original attachment file name
	FileName string `json:"fileName,omitempty"`

	// Read marks whether the receiving side has seen the message
	Read bool `json:"read"`
}
