package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not found", err: NotFound("chatroom not found"), want: KindNotFound},
		{name: "unauthorized", err: Unauthorized("invalid email or password"), want: KindUnauthorized},
		{name: "access denied", err: AccessDenied("access denied"), want: KindAccessDenied},
		{name: "payload too large", err: PayloadTooLarge("file too big"), want: KindPayloadTooLarge},
		{name: "invalid format", err: InvalidFormat("bad request"), want: KindInvalidFormat},
		{name: "storage failure", err: StorageFailure("presign failed", errors.New("timeout")), want: KindStorageFailure},
		{name: "plain error is internal", err: errors.New("boom"), want: KindInternal},
		{name: "nil is internal", err: nil, want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFound("chatroom not found")
	wrapped := fmt.Errorf("delete cascade: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindAccessDenied))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := StorageFailure("failed to delete attachments", cause)

	require.ErrorContains(t, err, "failed to delete attachments")
	require.ErrorContains(t, err, "connection refused")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorWithoutCause(t *testing.T) {
	err := New(KindInvalidFormat, "message needs text or at least one attachment")

	assert.Equal(t, "message needs text or at least one attachment", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
