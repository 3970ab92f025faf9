package models

// Role tags a turn with its speaker.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DefaultMood is the mood a profile starts with.
const DefaultMood = "neutral"

// Profile is the small fact-sheet kept per user
type Profile struct {
	Name              string   `json:"name,omitempty"`
	Interests         []string `json:"interests"`
	Mood              string   `json:"mood"`
	ConversationCount int      `json:"conversation_count"`
}

// NewProfile returns the default-shaped profile used for unknown users.
func NewProfile() Profile {
	return Profile{
		Interests: []string{},
		Mood:      DefaultMood,
	}
}

// Clone returns a deep copy so callers never share the interests slice.
func (p Profile) Clone() Profile {
	out := p
	out.Interests = append([]string{}, p.Interests...)
	return out
}

// HasInterest reports whether label is already in the interest set.
func (p Profile) HasInterest(label string) bool {
	for _, i := range p.Interests {
		if i == label {
			return true
		}
	}
	return false
}

// ProfileUpdate carries the fields to overwrite. Nil fields are left alone.
// Interests, when set, replaces the whole set; AddInterests is then merged
// into it, skipping labels already present.
type ProfileUpdate struct {
	Name         *string
	Interests    []string
	AddInterests []string
	Mood         *string
}

// Stats is a read-only snapshot of a user's session.
type Stats struct {
	ConversationCount int      `json:"conversation_count"`
	Name              string   `json:"name,omitempty"`
	Interests         []string `json:"interests"`
	HistoryLength     int      `json:"history_length"`
}

// Inbound message kinds accepted by the dispatch layer.
const (
	KindText    = "text"
	KindCommand = "command"
	KindMedia   = "media"
	KindOther   = "other"
)

// Dispatch commands.
const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandAbout = "about"
	CommandClear = "clear"
	CommandStats = "stats"
)

// ChatRequest is what the chat transport receives.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Kind    string `json:"kind,omitempty"`
	Text    string `json:"text,omitempty"`
	Command string `json:"command,omitempty"`
}

// ChatResponse is what the chat transport sends back.
type ChatResponse struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	Reply     string `json:"reply"`
	Degraded  bool   `json:"degraded,omitempty"`
	Stats     *Stats `json:"stats,omitempty"`
}
