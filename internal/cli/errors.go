package cli

import (
	"errors"
	"fmt"
)

var (
	errNotSignedIn    = errors.New("not signed in; run `dayplan login`")
	errSessionExpired = errors.New("session expired; run `dayplan login` again")
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type invalidError struct {
	field  string
	reason string
}

func (e invalidError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.field, e.reason)
}

func errInvalid(field, reason string) error {
	return invalidError{field: field, reason: reason}
}
