package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxContentBytes bounds the markup accepted for parsing.
const MaxContentBytes = 64 << 10

// MaxTopicLength bounds a topic in runes.
const MaxTopicLength = 200

// ValidateContent validates concept-map markup before parsing.
//
// The parser itself accepts anything; these checks protect the server and
// the session stores:
//   - Content cannot be empty or whitespace only
//   - Maximum size of 64 KiB
//   - No null bytes
//   - Must be valid UTF-8
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return New(ErrCodeInvalidInput, "content cannot be empty")
	}

	if len(content) > MaxContentBytes {
		return New(ErrCodeContentTooLarge, "content too large (%d bytes, max %d)", len(content), MaxContentBytes)
	}

	if strings.Contains(content, "\x00") {
		return New(ErrCodeInvalidInput, "content contains null bytes")
	}

	if !utf8.ValidString(content) {
		return New(ErrCodeInvalidInput, "content is not valid UTF-8")
	}

	return nil
}

// ValidateTopic validates an optional topic title. Empty is allowed.
func ValidateTopic(topic string) error {
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		return New(ErrCodeInvalidInput, "topic too long (max %d characters)", MaxTopicLength)
	}

	for _, r := range topic {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "topic contains invalid control characters")
		}
	}

	return nil
}

// ValidateSessionID validates a session id. Ids are UUIDs in canonical form.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSessionID, "session id cannot be empty")
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidSessionID, err, "invalid session id %q", id)
	}

	// uuid.Parse also accepts urn: and braced forms.
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidSessionID, "session id must be in canonical form: %q", id)
	}

	return nil
}
