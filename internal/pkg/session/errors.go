package session

import "github.com/pkg/errors"

var ErrSessionNotFound = errors.New("session not found")
var ErrSessionIDsExhausted = errors.New("no free session id")
