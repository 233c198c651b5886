package solana

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorKey(t *testing.T) {
	assert.Equal(t, InstructionErrorInvalidArgument, ErrorKey(ErrInvalidArgument))
	assert.Equal(t, InstructionErrorMissingRequiredSignature, ErrorKey(errors.Wrap(ErrMissingRequiredSignature, "admin")))
	assert.Equal(t, InstructionErrorCustom, ErrorKey(CustomError(3)))
	assert.Equal(t, InstructionErrorGenericError, ErrorKey(errors.New("connection reset")))
	assert.Equal(t, InstructionErrorGenericError, ErrorKey(nil))

	wrapped := InstructionError{Index: 2, Err: ErrIncorrectProgramID}
	assert.Equal(t, InstructionErrorIncorrectProgramID, ErrorKey(wrapped))
	assert.True(t, errors.Is(wrapped, ErrIncorrectProgramID))
	assert.Equal(t, "Error processing Instruction 2: IncorrectProgramId", wrapped.Error())
}

func TestCustomErrorCode(t *testing.T) {
	code, ok := CustomErrorCode(InstructionError{Index: 0, Err: CustomError(16)})
	assert.True(t, ok)
	assert.Equal(t, CustomError(16), code)
	assert.Equal(t, "custom program error: 10", code.Error())

	_, ok = CustomErrorCode(ErrInvalidArgument)
	assert.False(t, ok)
}
