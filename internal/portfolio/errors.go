package portfolio

import "errors"

// ErrForbidden is returned when a folio belongs to another investor.
var ErrForbidden = errors.New("folio does not belong to investor")

// RuleError is a business-rule rejection. Handlers report it as a bad request.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func reject(msg string) error {
	return &RuleError{Message: msg}
}

// IsRuleError reports whether err is a business-rule rejection.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
