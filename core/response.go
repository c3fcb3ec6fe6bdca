package core

// Channel limits shared by every Response shape. The transport maps responses
// onto its native widgets; these ceilings match the narrowest supported
// channel so rendering never fails downstream.
const (
	// MaxBodyLength caps the message body in runes.
	MaxBodyLength = 4096
	// MaxOptions caps quick-reply buttons per Choice response.
	MaxOptions = 3
	// MaxListRows caps total rows across all sections of a List response.
	MaxListRows = 10
	// MaxLabelLength caps option titles and list row titles in runes.
	MaxLabelLength = 24
	// MaxDescriptionLength caps list row descriptions in runes.
	MaxDescriptionLength = 72
)

// ResponseKind discriminates the three outbound shapes.
type ResponseKind string

const (
	// ResponseText is a plain text message.
	ResponseText ResponseKind = "text"
	// ResponseChoice is a text body with up to MaxOptions quick replies.
	ResponseChoice ResponseKind = "choice"
	// ResponseList is a text body with a one-level section list.
	ResponseList ResponseKind = "list"
)

// Option is one quick-reply button. ID round-trips untouched through the
// transport and comes back as InboundEvent.ChoiceID.
type Option struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListRow is one selectable row of a List response. ID round-trips like
// Option.ID.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows under an optional header.
type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

// Response is the channel-agnostic outbound value produced by every
// dispatch. It is pure data with no side effects; the transport collaborator
// maps it to its native representation.
type Response struct {
	Kind ResponseKind `json:"kind"`
	Body string       `json:"body"`

	// Options is populated for ResponseChoice (≤ MaxOptions).
	Options []Option `json:"options,omitempty"`

	// ButtonLabel and Sections are populated for ResponseList
	// (≤ MaxListRows rows in total).
	ButtonLabel string        `json:"button_label,omitempty"`
	Sections    []ListSection `json:"sections,omitempty"`
}

// RowCount returns the total number of rows across all sections.
func (r Response) RowCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Rows)
	}
	return n
}
