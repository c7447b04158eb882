package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/common"
)

// APIError is a non-2xx response. It unwraps to the taxonomy sentinel for
// its status, so errors.Is(err, common.ErrNotFound) and friends work.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Fields) > 0 {
		msg = strings.TrimSpace(msg + " " + e.Validation().Error())
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return common.ErrAuthentication
	case e.Status == http.StatusForbidden:
		return common.ErrAuthorization
	case e.Status == http.StatusNotFound:
		return common.ErrNotFound
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return e.Validation()
	case e.Status >= 500:
		return common.ErrServer
	default:
		return nil
	}
}

// Validation converts the field messages to a *common.ValidationError.
func (e *APIError) Validation() *common.ValidationError {
	return &common.ValidationError{Message: e.Message, Fields: e.Fields}
}

// newAPIError parses a DRF-style error body: {"detail": "..."},
// {"field": ["msg"]}, {"field": "msg"} or {"non_field_errors": [...]}.
// Anything else is kept as a raw message.
func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Status: status, Method: method, Path: path}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var list []string
		if json.Unmarshal(body, &list) == nil {
			e.Message = strings.Join(list, " ")
		} else if status < 500 {
			e.Message = strings.TrimSpace(string(body))
		}
		return e
	}

	var general []string
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		msgs := messages(obj[name])
		if len(msgs) == 0 {
			continue
		}
		switch name {
		case "detail", "error", "message", "non_field_errors":
			general = append(general, msgs...)
		default:
			if e.Fields == nil {
				e.Fields = make(map[string][]string)
			}
			e.Fields[name] = msgs
		}
	}
	e.Message = strings.Join(general, " ")
	return e
}

func messages(raw json.RawMessage) []string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return []string{s}
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		var out []string
		for _, item := range list {
			out = append(out, messages(item)...)
		}
		return out
	}

	// nested serializer errors, e.g. {"skills": {"0": ["..."]}}
	var nested map[string]json.RawMessage
	if json.Unmarshal(raw, &nested) == nil {
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			for _, m := range messages(nested[k]) {
				out = append(out, k+": "+m)
			}
		}
		return out
	}
	return nil
}
