package solana

import (
	"fmt"

	"github.com/pkg/errors"
)

// InstructionErrorKey is the string key of a builtin instruction error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError              InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorAccountDataTooSmall       InstructionErrorKey = "AccountDataTooSmall"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID        InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorReadonlyDataModified      InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
	InstructionErrorUnsupportedProgramID      InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorMissingAccount            InstructionErrorKey = "MissingAccount"
	InstructionErrorInvalidSeeds              InstructionErrorKey = "InvalidSeeds"
)

// ProgramError is a builtin error returned by a program while processing an
// instruction.
type ProgramError InstructionErrorKey

func (e ProgramError) Error() string {
	return string(e)
}

// Key returns the instruction error key for the error.
func (e ProgramError) Key() InstructionErrorKey {
	return InstructionErrorKey(e)
}

var (
	ErrInvalidArgument           = ProgramError(InstructionErrorInvalidArgument)
	ErrInvalidInstructionData    = ProgramError(InstructionErrorInvalidInstructionData)
	ErrInvalidAccountData        = ProgramError(InstructionErrorInvalidAccountData)
	ErrAccountDataTooSmall       = ProgramError(InstructionErrorAccountDataTooSmall)
	ErrInsufficientFunds         = ProgramError(InstructionErrorInsufficientFunds)
	ErrIncorrectProgramID        = ProgramError(InstructionErrorIncorrectProgramID)
	ErrMissingRequiredSignature  = ProgramError(InstructionErrorMissingRequiredSignature)
	ErrAccountAlreadyInitialized = ProgramError(InstructionErrorAccountAlreadyInitialized)
	ErrUninitializedAccount      = ProgramError(InstructionErrorUninitializedAccount)
	ErrNotEnoughAccountKeys      = ProgramError(InstructionErrorNotEnoughAccountKeys)
	ErrReadonlyDataModified      = ProgramError(InstructionErrorReadonlyDataModified)
	ErrUnsupportedProgramID      = ProgramError(InstructionErrorUnsupportedProgramID)
	ErrMissingAccount            = ProgramError(InstructionErrorMissingAccount)
	ErrInvalidSeeds              = ProgramError(InstructionErrorInvalidSeeds)
)

// CustomError is the numerical error returned by a non-system program.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %x", int(c))
}

// InstructionError indicates an instruction returned an error in a transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) Unwrap() error {
	return i.Err
}

// ErrorKey classifies an error returned from instruction processing. Errors
// that did not originate from a program map to InstructionErrorGenericError.
func ErrorKey(err error) InstructionErrorKey {
	var programErr ProgramError
	if errors.As(err, &programErr) {
		return programErr.Key()
	}

	var customErr CustomError
	if errors.As(err, &customErr) {
		return InstructionErrorCustom
	}

	return InstructionErrorGenericError
}

// CustomErrorCode extracts the custom program error code, if any.
func CustomErrorCode(err error) (CustomError, bool) {
	var customErr CustomError
	if errors.As(err, &customErr) {
		return customErr, true
	}
	return 0, false
}
