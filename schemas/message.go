package schemas

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentPartType tags the variant held by a ContentPart.
type ContentPartType string

const (
	ContentPartText  ContentPartType = "text"
	ContentPartImage ContentPartType = "image"
	ContentPartFile  ContentPartType = "file"
)

// ContentPart is one tagged entry of a multi-part Message.Parts. Exactly one
// of Text, Image or File is populated, selected by Type.
type ContentPart struct {
	Type  ContentPartType `json:"type"`
	Text  string          `json:"text,omitempty"`
	Image *ImagePart      `json:"image,omitempty"`
	File  *FilePart       `json:"file,omitempty"`
}

// ImagePart carries an inline base64-encoded image.
type ImagePart struct {
	MediaType string `json:"mediaType"`
	Data      string `json:"data"`
}

// FilePart references a remote file (e.g. Gemini's fileUri/mimeType upload).
type FilePart struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
}

// Message is one turn of the canonical, provider-agnostic conversation.
// Content is either a plain string (Text != nil) or a list of tagged parts
// (Parts != nil); exactly one is set.
type Message struct {
	Role  Role          `json:"role"`
	Text  *string       `json:"text,omitempty"`
	Parts []ContentPart `json:"parts,omitempty"`
}

// NewTextMessage builds a single-string-content message, the common case.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Text: &text}
}

// IsMultimodal reports whether the message carries an image or file part.
func (m Message) IsMultimodal() bool {
	for _, p := range m.Parts {
		if p.Type == ContentPartImage || p.Type == ContentPartFile {
			return true
		}
	}
	return false
}

// PlainText flattens the message down to its text content, discarding any
// image/file parts. Used by guard evaluation (spec requires image/file parts
// be stripped before any guard sees the payload) and by providers that only
// understand plain-string content.
func (m Message) PlainText() string {
	if m.Text != nil {
		return *m.Text
	}
	out := ""
	for _, p := range m.Parts {
		if p.Type != ContentPartText {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// ContainsMultimodal reports whether any message in the slice carries an
// image or file part.
func ContainsMultimodal(messages []Message) bool {
	for _, m := range messages {
		if m.IsMultimodal() {
			return true
		}
	}
	return false
}

// FilterByRole returns only the messages with the given role, in order.
func FilterByRole(messages []Message, role Role) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}
