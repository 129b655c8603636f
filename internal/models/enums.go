package models

import "strings"

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "Open"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
)

// Terminal reports whether no further transition may leave s.
func (s ProjectStatus) Terminal() bool {
	switch s {
	case ProjectCompleted, ProjectCancelled:
		return true
	case ProjectOpen, ProjectInProgress:
		return false
	default:
		return false
	}
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

// Role identifies one of the two parties of a project.
type Role string

const (
	RoleLearner Role = "learner"
	RoleMentor  Role = "mentor"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleLearner:
		return RoleLearner, true
	case RoleMentor:
		return RoleMentor, true
	default:
		return "", false
	}
}

// Counterparty returns the other side of the project.
func (r Role) Counterparty() Role {
	switch r {
	case RoleLearner:
		return RoleMentor
	case RoleMentor:
		return RoleLearner
	default:
		return ""
	}
}

type RequestType string

const (
	RequestComplete RequestType = "complete"
	RequestCancel   RequestType = "cancel"
)

func ParseRequestType(s string) (RequestType, bool) {
	switch RequestType(strings.ToLower(strings.TrimSpace(s))) {
	case RequestComplete:
		return RequestComplete, true
	case RequestCancel:
		return RequestCancel, true
	default:
		return "", false
	}
}

// FinalStatus is the project status an approved request of this type leads to.
func (t RequestType) FinalStatus() ProjectStatus {
	switch t {
	case RequestComplete:
		return ProjectCompleted
	case RequestCancel:
		return ProjectCancelled
	default:
		return ""
	}
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ParseDecision(s string) (Decision, bool) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionApprove:
		return DecisionApprove, true
	case DecisionReject:
		return DecisionReject, true
	default:
		return "", false
	}
}

type RoomStatus string

const (
	RoomOpen   RoomStatus = "open"
	RoomClosed RoomStatus = "close"
)

type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageImage MessageKind = "image"
)
