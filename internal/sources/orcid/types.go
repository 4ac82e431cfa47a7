package orcid

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is an ORCID field that arrives either as a bare string or number or
// as an object carrying a "value" key. Anything else decodes as empty.
type Value string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*v = Value(s)
		}
	case '{':
		var obj struct {
			Value *Value `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err == nil && obj.Value != nil {
			*v = *obj.Value
		}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*v = Value(n.String())
		}
	}
	return nil
}

// String returns the value.
func (v Value) String() string {
	return string(v)
}

// List decodes a JSON array, a single element or null into a slice.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		for _, raw := range items {
			var item T
			if json.Unmarshal(raw, &item) == nil {
				*l = append(*l, item)
			}
		}
		return nil
	}
	var item T
	if json.Unmarshal(data, &item) == nil {
		*l = List[T]{item}
	}
	return nil
}

// named wraps an object with a "name" field.
type named struct {
	Name Value `json:"name"`
}

// completionDate holds either {year:{value}} or {value}.
type completionDate struct {
	Year  Value `json:"year"`
	Value Value `json:"value"`
}

type externalIdentifier struct {
	Value Value `json:"external-identifier-value"`
}

type externalIdentifiers struct {
	Identifiers List[externalIdentifier] `json:"external-identifier"`
}

// Summary is one peer-review-summary record.
type Summary struct {
	PutCode              Value                `json:"put-code"`
	CompletionDate       *completionDate      `json:"completion-date"`
	SubjectContainerName Value                `json:"subject-container-name"`
	SubjectName          Value                `json:"subject-name"`
	ReviewGroupType      Value                `json:"review-group-type"`
	ReviewerOrg          *named               `json:"reviewer-org"`
	Organization         *named               `json:"organization"`
	ReviewerRole         Value                `json:"reviewer-role"`
	ReviewType           Value                `json:"review-type"`
	URL                  Value                `json:"url"`
	SubjectURL           Value                `json:"subject-url"`
	GroupID              Value                `json:"group-id"`
	ExternalIdentifiers  *externalIdentifiers `json:"external-identifiers"`
}

// Group is one peer-review-group.
type Group struct {
	GroupID      Value         `json:"group-id"`
	ReviewerOrg  *named        `json:"reviewer-org"`
	Organization *named        `json:"organization"`
	Summaries    List[Summary] `json:"peer-review-summary"`
}

// PeerReviews is the body of GET /{orcid}/peer-reviews.
type PeerReviews struct {
	Groups List[Group] `json:"peer-review-group"`
}

// upstreamMessage is the error body the registry returns on failure.
type upstreamMessage struct {
	UserMessage      string `json:"user-message"`
	UserMessageAlt   string `json:"userMessage"`
	DeveloperMessage string `json:"developer-message"`
	DeveloperAlt     string `json:"developerMessage"`
}

func (m upstreamMessage) text() string {
	for _, s := range []string{m.UserMessageAlt, m.UserMessage, m.DeveloperAlt, m.DeveloperMessage} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func nameOf(n *named) string {
	if n == nil {
		return ""
	}
	return n.Name.String()
}
