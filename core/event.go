package core

// EventKind discriminates the payload variants of an inbound event.
type EventKind string

const (
	// EventText is a free-form text message.
	EventText EventKind = "text"
	// EventChoice is a discrete selection (button tap or list row pick).
	EventChoice EventKind = "choice"
	// EventAudio is a voice note referenced by an opaque media handle.
	EventAudio EventKind = "audio"
)

// InboundEvent is one stateless webhook delivery from the message transport.
// Exactly one of Text, ChoiceID or AudioRef is meaningful, discriminated by
// Kind; the transport collaborator fills it in before handing the event over.
type InboundEvent struct {
	SenderIdentity string    `json:"sender_identity"`
	Kind           EventKind `json:"kind"`
	Text           string    `json:"text,omitempty"`
	ChoiceID       string    `json:"choice_id,omitempty"`
	AudioRef       string    `json:"audio_ref,omitempty"`
}
