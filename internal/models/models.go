package models

// Role tags a conversation turn with its speaker, matching the wire
// format of the completion API.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation. Immutable once created.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Action is what the classifier decided an inbound message asks for.
type Action int

const (
	// ActionNone means the message is ignored.
	ActionNone Action = iota
	// ActionComplete means a completion request should be dispatched
	// with the decision's prompt.
	ActionComplete
	ActionHelp
	ActionStats
	ActionClear
	ActionPersonality
	ActionModel
	ActionAdmin
)

// Decision is the classifier's verdict for one inbound event.
// Transient; it lives for the duration of the dispatch.
type Decision struct {
	Action Action
	Prompt string
	Args   []string
	// Roast marks a completion prompt that came from a roast request,
	// so the profile roast counter can be bumped alongside.
	Roast bool
}

// Respond reports whether the decision calls for a generated reply.
// An empty prompt suppresses the reply even when a rule matched.
func (d Decision) Respond() bool {
	return d.Action == ActionComplete && d.Prompt != ""
}

// Event is the gateway-independent view of an inbound chat message.
type Event struct {
	AuthorID   int64
	AuthorName string
	Text       string
	Mentioned  bool
	ReplyToBot bool
}
