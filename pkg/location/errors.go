package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure. The set is closed; anything not produced by this
// module classifies as KindUnknown.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindProviderDisabled
	KindResultTooOld
	KindNoLastResult
	KindIgnorable
	KindTimeout
	KindPermissionDenied
	KindSettingsDeclined
	KindCancelled
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindProviderDisabled: "provider_disabled",
	KindResultTooOld:     "result_too_old",
	KindNoLastResult:     "no_last_result",
	KindIgnorable:        "ignorable",
	KindTimeout:          "timeout",
	KindPermissionDenied: "permission_denied",
	KindSettingsDeclined: "settings_declined",
	KindCancelled:        "cancelled",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown error kind %q", s)
}

// Error is the error type produced by the engine.
type Error struct {
	Kind     Kind
	Provider string
	// Position is the offending fix for KindResultTooOld.
	Position *Position
	// Denied lists the permissions refused for KindPermissionDenied.
	Denied []string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindProviderDisabled:
		return fmt.Sprintf("the %s provider is disabled", e.Provider)
	case KindResultTooOld:
		return fmt.Sprintf("the %s location is too old", e.Provider)
	case KindNoLastResult:
		return fmt.Sprintf("the %s provider has no last location", e.Provider)
	case KindTimeout:
		return fmt.Sprintf("the %s provider did not report in time", e.Provider)
	case KindPermissionDenied:
		return fmt.Sprintf("user denied permissions: %v", e.Denied)
	case KindSettingsDeclined:
		return "user did not enable location settings"
	case KindIgnorable:
		if e.Err != nil {
			return "ignored: " + e.Err.Error()
		}
		return "ignored"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ProviderDisabled(provider string) error {
	return &Error{Kind: KindProviderDisabled, Provider: provider}
}

func ResultTooOld(p Position) error {
	return &Error{Kind: KindResultTooOld, Provider: p.Provider, Position: &p}
}

func NoLastResult(provider string) error {
	return &Error{Kind: KindNoLastResult, Provider: provider}
}

func Timeout(provider string) error {
	return &Error{Kind: KindTimeout, Provider: provider}
}

func PermissionDenied(denied []string) error {
	return &Error{Kind: KindPermissionDenied, Denied: denied}
}

func SettingsDeclined() error {
	return &Error{Kind: KindSettingsDeclined}
}

// Ignorable marks err as intentionally suppressed.
func Ignorable(err error) error {
	return &Error{Kind: KindIgnorable, Err: err}
}

// KindOf classifies err. Context errors are KindCancelled.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindUnknown
}

// IsKind reports whether err classifies as k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// KindSet is an explicit set of kinds. The empty set matches every error.
type KindSet struct {
	kinds map[Kind]struct{}
}

func Kinds(kinds ...Kind) KindSet {
	s := KindSet{kinds: make(map[Kind]struct{}, len(kinds))}
	for _, k := range kinds {
		s.kinds[k] = struct{}{}
	}
	return s
}

func (s KindSet) IsEmpty() bool {
	return len(s.kinds) == 0
}

func (s KindSet) Has(k Kind) bool {
	_, ok := s.kinds[k]
	return ok
}

// Matches reports whether err is a member of the set.
func (s KindSet) Matches(err error) bool {
	if err == nil {
		return false
	}
	if s.IsEmpty() {
		return true
	}
	return s.Has(KindOf(err))
}
