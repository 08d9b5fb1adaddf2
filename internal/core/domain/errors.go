package domain

import "errors"

var (
	ErrBallotNotFound     = errors.New("ballot not found")
	ErrOptionNotFound     = errors.New("option not found")
	ErrBallotClosed       = errors.New("ballot is not open for voting")
	ErrInvalidOption      = errors.New("invalid option for this ballot")
	ErrAttendanceRequired = errors.New("attendance is required to vote on this ballot")
	ErrAlreadyVoted       = errors.New("user has already voted")

	ErrInvalidBallotInput  = errors.New("invalid ballot input")
	ErrInvalidSessionInput = errors.New("invalid session input")
	ErrSessionNotFound     = errors.New("session not found")
	ErrNoActiveSession     = errors.New("no active session")

	ErrInvalidUserInput       = errors.New("invalid user input")
	ErrUserNotFound           = errors.New("user not found")
	ErrUsernameTaken          = errors.New("username already taken")
	ErrEmailTaken             = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrSignInUnavailable      = errors.New("sign-in method not configured")
	ErrWeakPassword           = errors.New("password must have at least 8 characters and differ from the current one")
	ErrPasswordChangeRequired = errors.New("password change required")

	ErrInternal = errors.New("internal server error")
)
