package validation

import (
	"net/mail"
	"strings"

	"qnotes/pkg/api"
)

// MinPasswordLength applies to new accounts only
const MinPasswordLength = 8

// Field names used in FieldError.Field
const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldPriority = "priority"
	FieldUsername = "username"
	FieldPassword = "password"
)

// FieldError is one failed rule for one field
type FieldError struct {
	Field   string
	Message string
}

// Errors collects field errors in the order the fields were checked
type Errors []FieldError

// OK reports whether no rule failed
func (e Errors) OK() bool {
	return len(e) == 0
}

// Field returns the first message for name, or "" when that field is valid
func (e Errors) Field(name string) string {
	for _, fe := range e {
		if fe.Field == name {
			return fe.Message
		}
	}
	return ""
}

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns e as an error, or nil when there is nothing to report
func (e Errors) Err() error {
	if e.OK() {
		return nil
	}
	return e
}

func (e *Errors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Note checks the create/edit form
func Note(title, content, priority string) Errors {
	var errs Errors
	if strings.TrimSpace(title) == "" {
		errs.add(FieldTitle, "Title is required")
	}
	if strings.TrimSpace(content) == "" {
		errs.add(FieldContent, "Content is required")
	}
	if strings.TrimSpace(priority) == "" {
		errs.add(FieldPriority, "Priority is required")
	} else if _, err := api.ParsePriority(priority); err != nil {
		errs.add(FieldPriority, "Priority must be one of "+strings.Join(api.PriorityNames(), ", "))
	}
	return errs
}

// Login checks the sign-in form; usernames are email addresses
func Login(username, password string) Errors {
	var errs Errors
	checkUsername(&errs, username)
	if password == "" {
		errs.add(FieldPassword, "Password is required")
	}
	return errs
}

// Register checks the sign-up form
func Register(username, password string) Errors {
	var errs Errors
	checkUsername(&errs, username)
	switch {
	case password == "":
		errs.add(FieldPassword, "Password is required")
	case len([]rune(password)) < MinPasswordLength:
		errs.add(FieldPassword, "Password must be at least 8 characters")
	}
	return errs
}

func checkUsername(errs *Errors, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		errs.add(FieldUsername, "Email is required")
		return
	}
	if !validEmail(username) {
		errs.add(FieldUsername, "Please enter a valid email")
	}
}

// validEmail accepts a bare address only, not "Name <addr>"
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1
}
