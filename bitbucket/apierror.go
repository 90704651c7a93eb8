package bitbucket

import (
	"fmt"
	"net/http"
	"strings"
)

// errorEnvelope is the 2.0 error body:
// {"type":"error","error":{"message":..,"fields":..,"detail":..,"id":..}}
type errorEnvelope struct {
	Type  string      `json:"type"`
	Error *errorEntry `json:"error"`
}

type errorEntry struct {
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields"`
	Detail  any            `json:"detail"`
	ID      string         `json:"id"`
}

// keyedError is the older {"key":..,"message":..,"arguments":..} body
type keyedError struct {
	Key       string         `json:"key"`
	Message   string         `json:"message"`
	Arguments map[string]any `json:"arguments"`
}

// parseAPIError builds the error for a non-2xx response. It never returns nil.
func parseAPIError(codec *Codec, status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       string(body),
	}

	var envelope errorEnvelope
	if err := codec.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Message = envelope.Error.Message
		apiErr.Fields = normalizeFields(envelope.Error.Fields)
		apiErr.Detail = stringify(envelope.Error.Detail)
		apiErr.ID = envelope.Error.ID
		if apiErr.Message == "" {
			apiErr.Message = statusLine(status)
		}
		return apiErr
	}

	var keyed keyedError
	if err := codec.Unmarshal(body, &keyed); err == nil && (keyed.Message != "" || keyed.Key != "") {
		apiErr.Message = keyed.Message
		apiErr.Key = keyed.Key
		apiErr.Arguments = keyed.Arguments
		if apiErr.Message == "" {
			apiErr.Message = keyed.Key
		}
		return apiErr
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Message = text
	} else {
		apiErr.Message = statusLine(status)
	}
	return apiErr
}

func statusLine(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprintf("%d", status)
}

// normalizeFields accepts both "field": "msg" and "field": ["msg", ...]
func normalizeFields(raw map[string]any) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	fields := make(map[string][]string, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				fields[name] = append(fields[name], stringify(item))
			}
		default:
			fields[name] = []string{stringify(v)}
		}
	}
	return fields
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
