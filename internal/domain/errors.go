package domain

import "errors"

// ErrorKind classifies a workflow failure so the entry point can pick an exit code.
type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindConfigNotFound  ErrorKind = "CONFIG_NOT_FOUND"
	KindConfigMalformed ErrorKind = "CONFIG_MALFORMED"
	KindAuthentication  ErrorKind = "AUTHENTICATION"
	KindRemoteCall      ErrorKind = "REMOTE_CALL"
	KindInputClosed     ErrorKind = "INPUT_CLOSED"
	KindUnknown         ErrorKind = "UNKNOWN"
)

var (
	ErrConfigNotFound  = errors.New("configuration file not found")
	ErrConfigMalformed = errors.New("invalid configuration file format")
	ErrAuthentication  = errors.New("authentication with the hosting API failed")
	ErrRemoteCall      = errors.New("hosting API call failed")
	ErrInputClosed     = errors.New("input closed before a value was entered")
)

// kindsBySentinel is checked in order; the first match wins.
var kindsBySentinel = []struct {
	sentinel error
	kind     ErrorKind
}{
	{ErrConfigNotFound, KindConfigNotFound},
	{ErrConfigMalformed, KindConfigMalformed},
	{ErrAuthentication, KindAuthentication},
	{ErrInputClosed, KindInputClosed},
	{ErrRemoteCall, KindRemoteCall},
}

// KindOf returns the kind of err by walking its wrap chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range kindsBySentinel {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

// ExitCode maps an error kind to a process exit status.
func ExitCode(kind ErrorKind) int {
	switch kind {
	case KindNone:
		return 0
	case KindConfigNotFound:
		return 2
	case KindConfigMalformed:
		return 3
	case KindAuthentication:
		return 4
	case KindRemoteCall:
		return 5
	case KindInputClosed:
		return 6
	default:
		return 1
	}
}
