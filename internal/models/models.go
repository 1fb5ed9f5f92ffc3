package models

import (
	"time"
)

// WorkflowPhase is the manuscript's current stage in the review lifecycle.
type WorkflowPhase string

const (
	PhaseSubmitted        WorkflowPhase = "SUBMITTED"
	PhaseUnderReview      WorkflowPhase = "UNDER_REVIEW"
	PhaseDeliberation     WorkflowPhase = "DELIBERATION"
	PhaseAuthorResponding WorkflowPhase = "AUTHOR_RESPONDING"
	PhaseReleased         WorkflowPhase = "RELEASED"
	PhasePublished        WorkflowPhase = "PUBLISHED"
)

// AssignmentStatus tracks the lifecycle of a review assignment.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "PENDING"
	AssignmentAccepted   AssignmentStatus = "ACCEPTED"
	AssignmentDeclined   AssignmentStatus = "DECLINED"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentCompleted  AssignmentStatus = "COMPLETED"
)

// MessagePrivacy restricts which viewer roles may see a message.
type MessagePrivacy string

const (
	PrivacyPublic        MessagePrivacy = "PUBLIC"
	PrivacyAuthorVisible MessagePrivacy = "AUTHOR_VISIBLE"
	PrivacyReviewerOnly  MessagePrivacy = "REVIEWER_ONLY"
	PrivacyEditorOnly    MessagePrivacy = "EDITOR_ONLY"
	PrivacyAdminOnly     MessagePrivacy = "ADMIN_ONLY"
)

// DisclosureMode is the value a workflow policy knob can take.
type DisclosureMode string

const (
	DisclosureRealtime       DisclosureMode = "realtime"
	DisclosureOnRelease      DisclosureMode = "on_release"
	DisclosureNever          DisclosureMode = "never"
	DisclosureAlways         DisclosureMode = "always"
	DisclosureAfterAllSubmit DisclosureMode = "after_all_submit"
)

// GlobalRole is an organization-wide role carried on the user account,
// independent of any particular manuscript.
type GlobalRole string

const (
	GlobalRoleAdmin         GlobalRole = "ADMIN"
	GlobalRoleEditorInChief GlobalRole = "EDITOR_IN_CHIEF"
	GlobalRoleActionEditor  GlobalRole = "ACTION_EDITOR"
)

// User represents a platform account
type User struct {
	ID           string      `json:"id" db:"id"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"`
	Username     string      `json:"username" db:"username"`
	Name         string      `json:"name" db:"name"`
	GlobalRole   *GlobalRole `json:"global_role,omitempty" db:"global_role"`
	IsBot        bool        `json:"is_bot" db:"is_bot"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// Journal represents one journal hosted on the platform
type Journal struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WorkflowConfig is a journal's disclosure policy. A journal without one runs
// in simple mode: message privacy levels apply flatly and author identities
// are never masked.
type WorkflowConfig struct {
	AuthorSeesReviews           DisclosureMode `json:"author_sees_reviews" yaml:"author_sees_reviews" db:"author_sees_reviews"`
	AuthorSeesReviewerIdentity  DisclosureMode `json:"author_sees_reviewer_identity" yaml:"author_sees_reviewer_identity" db:"author_sees_reviewer_identity"`
	ReviewersSeeEachOther       DisclosureMode `json:"reviewers_see_each_other" yaml:"reviewers_see_each_other" db:"reviewers_see_each_other"`
	ReviewersSeeAuthorResponses DisclosureMode `json:"reviewers_see_author_responses" yaml:"reviewers_see_author_responses" db:"reviewers_see_author_responses"`
	ReviewersSeeAuthorIdentity  DisclosureMode `json:"reviewers_see_author_identity" yaml:"reviewers_see_author_identity" db:"reviewers_see_author_identity"`
}

// Manuscript represents a submission under review
type Manuscript struct {
	ID            string        `json:"id" db:"id"`
	JournalID     string        `json:"journal_id" db:"journal_id"`
	Title         string        `json:"title" db:"title"`
	WorkflowPhase WorkflowPhase `json:"workflow_phase" db:"workflow_phase"`
	WorkflowRound int           `json:"workflow_round" db:"workflow_round"`
	SubmittedBy   string        `json:"submitted_by" db:"submitted_by"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// ManuscriptAuthor links a user to a manuscript as a listed author
type ManuscriptAuthor struct {
	ManuscriptID string    `json:"manuscript_id" db:"manuscript_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Position     int       `json:"position" db:"position"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ReviewAssignment links a reviewer to a manuscript. At most one assignment
// exists per (manuscript, reviewer) pair.
type ReviewAssignment struct {
	ID           string           `json:"id" db:"id"`
	ManuscriptID string           `json:"manuscript_id" db:"manuscript_id"`
	ReviewerID   string           `json:"reviewer_id" db:"reviewer_id"`
	Status       AssignmentStatus `json:"status" db:"status"`
	AssignedAt   time.Time        `json:"assigned_at" db:"assigned_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// Conversation groups discussion messages attached to a manuscript
type Conversation struct {
	ID           string    `json:"id" db:"id"`
	ManuscriptID string    `json:"manuscript_id" db:"manuscript_id"`
	Subject      string    `json:"subject" db:"subject"`
	CreatedBy    string    `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Message is a single discussion entry within a conversation
type Message struct {
	ID             string         `json:"id" db:"id"`
	ConversationID string         `json:"conversation_id" db:"conversation_id"`
	AuthorID       string         `json:"author_id" db:"author_id"`
	Privacy        MessagePrivacy `json:"privacy" db:"privacy"`
	Body           string         `json:"body" db:"body"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// AuditLog records security-relevant editorial actions, such as policy
// changes and reviewer index invalidations
type AuditLog struct {
	ID        string    `json:"id" db:"id"`
	UserID    *string   `json:"user_id,omitempty" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details" db:"details"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuthorView is the identity record rendered to a viewer for a message
// author: either the real identity or a stable pseudonym. OriginalID is
// retained for editor/admin-side tooling and is never serialized.
type AuthorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	IsBot    bool   `json:"is_bot"`
	IsMasked bool   `json:"is_masked"`

	OriginalID string `json:"-"`
}

// RenderedMessage is a message as shown to one specific viewer: the message
// content paired with the (possibly masked) author identity.
type RenderedMessage struct {
	Message
	Author AuthorView `json:"author"`
}

// ConversationWithMessages bundles a conversation with the messages the
// viewer is entitled to see
type ConversationWithMessages struct {
	Conversation
	Messages []RenderedMessage `json:"messages"`
}
