package switcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/claude_accounts/internal/account"
)

// Errors returned by Find.
var (
	ErrNoMatch   = errors.New("no account matches")
	ErrAmbiguous = errors.New("query matches several accounts")
)

// Find resolves a user-supplied query to one record. It tries, in order:
// exact label, "account/organization" key, account UUID, email, and finally
// a unique account UUID prefix.
func Find(records []*account.Record, query string) (*account.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrNoMatch)
	}

	matchers := []func(*account.Record) bool{
		func(r *account.Record) bool { return r.Label() == query },
		func(r *account.Record) bool { return r.Identity().WellFormed() && r.Identity().Key() == query },
		func(r *account.Record) bool { return r.Identity().AccountUUID == query },
		func(r *account.Record) bool { return strings.EqualFold(r.Email(), query) },
		func(r *account.Record) bool { return strings.HasPrefix(r.Identity().AccountUUID, query) },
	}

	for _, match := range matchers {
		var found []*account.Record
		for _, r := range records {
			if r.Identity().WellFormed() && match(r) {
				found = append(found, r)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return nil, fmt.Errorf("%w: %q matches %d accounts, use account/organization", ErrAmbiguous, query, len(found))
		}
	}
	return nil, fmt.Errorf("%w %q", ErrNoMatch, query)
}
