package mailbox

// messageList is a partial Gmail messages.list response
type messageList struct {
	Messages []messageRef `json:"messages"`
}

// messageRef identifies one message in a list response
type messageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// message is a partial Gmail messages.get response with the fields we use
type message struct {
	ID      string      `json:"id"`
	Payload messagePart `json:"payload"`
}

// messagePart is one node of the MIME tree
type messagePart struct {
	Filename string        `json:"filename"`
	MimeType string        `json:"mimeType"`
	Body     partBody      `json:"body"`
	Parts    []messagePart `json:"parts"`
}

// partBody carries either inline data or an attachment pointer
type partBody struct {
	AttachmentID string `json:"attachmentId"`
	Size         int    `json:"size"`
	Data         string `json:"data"`
}

// attachmentBody is a Gmail messages.attachments.get response
type attachmentBody struct {
	Size int    `json:"size"`
	Data string `json:"data"`
}

// Attachment is a report file pulled from the mailbox
type Attachment struct {
	MessageID string
	Filename  string
	Data      []byte
}
