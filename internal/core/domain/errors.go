package domain

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNetworkFailure = errors.New("authentication service unreachable")
var ErrMalformedResponse = errors.New("malformed authentication response")
var ErrStorageFailure = errors.New("credential storage failure")
var ErrNoActiveSession = errors.New("no active session")
var ErrSessionBusy = errors.New("another session operation is in flight")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrTokenRevoked = errors.New("token has been revoked")
