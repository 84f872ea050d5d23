package store

import "time"

// Round is a time-boxed phase of a hackathon with its own deadline.
// IsActive is derived: the sweep's lifecycle pass may overwrite it, and
// organizers can set it directly through the CRUD surface.
type Round struct {
	ID          string     `json:"id"`
	HackathonID string     `json:"hackathonId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsActive    bool       `json:"isActive"`
	HideScores  bool       `json:"hideScores"`
}

// Hackathon owns a set of rounds and belongs to one organization.
type Hackathon struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId"`
}

// Team is the unit of risk assessment.
type Team struct {
	ID             string   `json:"id"`
	HackathonID    string   `json:"hackathonId"`
	OrganizationID string   `json:"organizationId"`
	Name           string   `json:"name"`
	MemberIDs      []string `json:"memberIds"`
	MentorID       *string  `json:"mentorId,omitempty"`
}

// Submission is a team's entry for a round. At most one per (team, round).
type Submission struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	RoundID   string    `json:"roundId"`
	Link      *string   `json:"link,omitempty"`
	FileURL   *string   `json:"fileUrl,omitempty"`
	Score     float64   `json:"score"`
	Feedback  *string   `json:"feedback,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasContent reports whether the submission carries an actual deliverable
// (non-empty link or file reference).
func (s *Submission) HasContent() bool {
	if s == nil {
		return false
	}
	if s.Link != nil && *s.Link != "" {
		return true
	}
	return s.FileURL != nil && *s.FileURL != ""
}

// Organization is the tenant scope for teams and live channels.
type Organization struct {
	ID   string
	Name string
}

// User is an authenticated identity.
type User struct {
	ID             string
	Name           string
	OrganizationID string
	Role           string
}

// SenderKind distinguishes user-authored messages from system ones.
type SenderKind int

const (
	SenderUser SenderKind = iota
	SenderSystem
)

// Sender is a tagged variant so callers cannot forget the system case.
type Sender struct {
	Kind   SenderKind `json:"kind"`
	UserID string     `json:"userId,omitempty"`
}

// UserSender returns a sender for a user-authored message.
func UserSender(userID string) Sender {
	return Sender{Kind: SenderUser, UserID: userID}
}

// SystemSender returns the sender used for generated reminders.
func SystemSender() Sender {
	return Sender{Kind: SenderSystem}
}

// Message is a team-scoped chat message. Reminder messages use the system
// sender and are the durable artifact of a sweep or manual trigger.
type Message struct {
	ID             string    `json:"id"`
	TeamID         string    `json:"teamId"`
	OrganizationID string    `json:"organizationId"`
	Sender         Sender    `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}
