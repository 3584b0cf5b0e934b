package manifest

import (
	"errors"
	"fmt"
)

// ErrTemplateMalformed indicates that a manifest template set cannot safely
// be rendered: the unit's Deployment is missing or misnamed, or the expected
// image placeholder is absent and substituting the resolved reference would
// silently deploy whatever stale image the template happens to carry.
type ErrTemplateMalformed struct {
	Dir    string
	Reason string
}

func IsTemplateMalformedErr(target error) bool {
	var err *ErrTemplateMalformed
	return errors.As(target, &err)
}

func NewTemplateMalformedErr(dir, reason string) error {
	return &ErrTemplateMalformed{Dir: dir, Reason: reason}
}

func (e *ErrTemplateMalformed) Error() string {
	return fmt.Sprintf("malformed manifest templates in %s: %s", e.Dir, e.Reason)
}
