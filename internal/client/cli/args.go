package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/common"
)

// inputTime is how dates are typed at the prompt, in local time.
const inputTime = "2006-01-02 15:04"

// idArg parses args[0] as a positive id, or returns the command's usage.
func idArg(cmd string, args []string) (int, error) {
	if len(args) == 0 {
		return 0, usage(cmd)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, usage(cmd)
	}
	return id, nil
}

func fieldError(field, msg string) error {
	return (&common.ValidationError{}).Add(field, msg)
}

func parseInt(field, s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fieldError(field, "must be a whole number")
	}
	return n, nil
}

func parseLocalTime(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(inputTime, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fieldError(field, "use the format "+inputTime)
	}
	return t, nil
}

// optional returns nil for blank input, so partial updates skip the field.
func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
