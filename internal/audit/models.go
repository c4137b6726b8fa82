package audit

import "time"

// Event is emitted from domain logic to capture key account-security actions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	AccountID string
	Action    Action
	Reason    string
}

type Action string

const (
	ActionUserRegistered         Action = "user_registered"
	ActionLoginSucceeded         Action = "login_succeeded"
	ActionLoginFailed            Action = "login_failed"
	ActionAccountLocked          Action = "account_locked"
	ActionTokenRefreshed         Action = "token_refreshed"
	ActionLogout                 Action = "logout"
	ActionPasswordChanged        Action = "password_changed"
	ActionPasswordResetRequested Action = "password_reset_requested"
	ActionPasswordResetCompleted Action = "password_reset_completed"
)
