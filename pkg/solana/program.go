package solana

import (
	"crypto/ed25519"
)

// Invoker issues cross-program invocations on behalf of the program that is
// currently executing.
type Invoker interface {
	// InvokeSigned executes the instruction against the provided accounts.
	// Every entry in signerSeeds derives a program address of the calling
	// program, and that address is treated as having signed the instruction.
	InvokeSigned(instruction Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error
}

// Processor executes instructions addressed to a single program.
type Processor interface {
	Process(invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error
}

// ProcessorFunc adapts a function to a Processor.
type ProcessorFunc func(invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error

// Process implements Processor.Process
func (f ProcessorFunc) Process(invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	return f(invoker, programID, accounts, data)
}
