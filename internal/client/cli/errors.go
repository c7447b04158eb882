package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/expertconnect/internal/client/objectstore"
	"github.com/dmitrijs2005/expertconnect/internal/client/room"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errLoginRequired  = errors.New("login required")
	errRetry          = errors.New("session refreshed, run the command again")
)

type usageError struct {
	usage string
}

func (e *usageError) Error() string {
	return "usage: " + e.usage
}

// describeError turns a command failure into the lines shown to the user.
func describeError(err error) []string {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		if len(verr.Fields) == 0 {
			return []string{"Error: " + verr.Error()}
		}
		fields := make([]string, 0, len(verr.Fields))
		for f := range verr.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		var lines []string
		for _, f := range fields {
			for _, msg := range verr.Fields[f] {
				lines = append(lines, fmt.Sprintf("  %s: %s", f, msg))
			}
		}
		return lines
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		return []string{uerr.Error()}
	}

	var perr *room.PreconditionError
	if errors.As(err, &perr) {
		return []string{perr.Reason}
	}

	switch {
	case errors.Is(err, errUnknownCommand):
		return []string{err.Error() + " (type 'help' for commands)"}
	case errors.Is(err, errLoginRequired):
		return []string{"Please log in first."}
	case errors.Is(err, errNotOffered):
		return []string{"That action is not available for this meeting right now."}
	case errors.Is(err, errRetry):
		return []string{"Session refreshed, run the command again."}
	case errors.Is(err, common.ErrInvalidCredentials):
		return []string{"Invalid username or password."}
	case errors.Is(err, common.ErrAuthentication):
		return []string{"Your session has expired, please log in again."}
	case errors.Is(err, common.ErrInsufficientCredits):
		return []string{"Insufficient credits. Use 'buy' to purchase more."}
	case errors.Is(err, common.ErrNetwork):
		return []string{"Network problem, try again."}
	case errors.Is(err, common.ErrAuthorization):
		return []string{"You are not allowed to do that."}
	case errors.Is(err, common.ErrNotFound):
		return []string{"Not found."}
	case errors.Is(err, common.ErrServer):
		return []string{"The server failed, try again later."}
	case errors.Is(err, objectstore.ErrDisabled):
		return []string{"Avatar uploads are not configured."}
	case errors.Is(err, context.Canceled):
		return nil
	}
	return []string{"Error: " + err.Error()}
}
