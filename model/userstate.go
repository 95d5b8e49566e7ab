package model

// Phase is the wizard's position relative to the form as a whole.
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseActive               Phase = "active"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
)

// UserSession is a user's cursor into the catalog. Cursor is nil unless the
// phase is PhaseActive.
type UserSession struct {
	UserID int64
	Phase  Phase
	Cursor *FieldSpec
}

// IdleSession returns the session of a user with no form in progress.
func IdleSession(userID int64) UserSession {
	return UserSession{UserID: userID, Phase: PhaseIdle}
}

// ActiveSession returns a session awaiting an answer for field.
func ActiveSession(userID int64, field FieldSpec) UserSession {
	return UserSession{UserID: userID, Phase: PhaseActive, Cursor: &field}
}

// AwaitingConfirmation returns a session whose form is complete.
func AwaitingConfirmation(userID int64) UserSession {
	return UserSession{UserID: userID, Phase: PhaseAwaitingConfirmation}
}
