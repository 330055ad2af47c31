package application

import (
	"fmt"
	"strings"

	"github.com/makarovada/legal-time/internal/access"
)

// checkAccess consults the policy table and reports a refusal as ErrForbidden.
func checkAccess(principal Principal, op access.Operation, owned bool) error {
	if err := access.Check(principal.Role, op, owned); err != nil {
		reason := strings.TrimPrefix(err.Error(), access.ErrForbidden.Error()+": ")
		return fmt.Errorf("%w: %s", ErrForbidden, reason)
	}
	return nil
}
