package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrNoHTMLPart", ErrNoHTMLPart},
		{"ErrUnparsableRanking", ErrUnparsableRanking},
		{"ErrDeliveryNotConfigured", ErrDeliveryNotConfigured},
		{"ErrAuthRequired", ErrAuthRequired},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrorKind_Recoverable(t *testing.T) {
	assert.True(t, KindSourceFetch.Recoverable())
	assert.True(t, KindOracleParse.Recoverable())
	assert.False(t, KindSourceList.Recoverable())
	assert.False(t, KindOracleCall.Recoverable())
	assert.False(t, KindDeliveryTarget.Recoverable())
	assert.False(t, KindPersistence.Recoverable())
}

func TestStageError_WrapsAndIdentifiesStage(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("run: %w", NewStageError("ingest", KindSourceList, cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindSourceList, KindOf(err))
	assert.Equal(t, "run: ingest (source_list): boom", err.Error())

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ingest", se.Stage)
}

func TestStageError_WithState(t *testing.T) {
	err := &StageError{Stage: "deliver", Kind: KindDeliveryTarget, State: StateRootPosted, Err: errors.New("x")}
	assert.Equal(t, "deliver (delivery_target, reached ROOT_POSTED): x", err.Error())
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestDestinationError(t *testing.T) {
	known := &DestinationError{Code: "not_in_channel", Hint: "invite the bot"}
	assert.True(t, known.Remediable())
	assert.Contains(t, known.Error(), "not_in_channel")
	assert.Contains(t, known.Error(), "invite the bot")

	unknown := &DestinationError{Code: "msg_too_long"}
	assert.False(t, unknown.Remediable())
	assert.Equal(t, "destination rejected post: msg_too_long", unknown.Error())
}
