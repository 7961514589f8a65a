package validator

import (
	"net/mail"
	"strings"
	"time"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateCreateUser(email, displayName string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		errs.Add("display_name", "Display name is required")
	} else if len(displayName) > 100 {
		errs.Add("display_name", "Display name is too long")
	}

	return errs
}

func ValidatePublicChannel(name string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Channel name is required")
	} else if len(name) < 2 {
		errs.Add("name", "Channel name must be at least 2 characters")
	} else if len(name) > 100 {
		errs.Add("name", "Channel name is too long")
	}

	return errs
}

func ValidatePrivateChannel(participantCount int) ValidationErrors {
	errs := make(ValidationErrors)

	if participantCount == 0 {
		errs.Add("participant_ids", "At least one participant is required")
	}

	return errs
}

func ValidateMessage(content string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(content) == "" {
		errs.Add("content", "Message content is required")
	} else if len(content) > 4000 {
		errs.Add("content", "Message content is too long")
	}

	return errs
}

// ValidateTimestamp rejects client-reported timestamps from the future
// before they reach presence or read-marker updates.
func ValidateTimestamp(field string, ts, now time.Time) ValidationErrors {
	errs := make(ValidationErrors)

	if ts.After(now) {
		errs.Add(field, "Timestamp cannot be in the future")
	}

	return errs
}
