// Package types defines the contracts shared by the fillgen assembler,
// generators, and execution helpers. The root package is intended to be
// dot-imported by probe-building code so this package carries the exported
// interfaces instead.
package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
)

// A Bytecoder returns raw EVM bytecode. If the returned bytecode is the
// concatenation of multiple Bytecoder outputs, the type MUST also implement
// BytecodeHolder.
type Bytecoder interface {
	Bytecode() ([]byte, error)
}

// A BytecodeHolder is a concatenation of Bytecoders.
type BytecodeHolder interface {
	Bytecoder
	Bytecoders() []Bytecoder
}

// An OpCode is a single opcode that emits exactly its own byte when compiled.
type OpCode vm.OpCode

// Bytecode returns the opcode as a single byte.
func (o OpCode) Bytecode() ([]byte, error) {
	return []byte{byte(o)}, nil
}

// String returns the opcode's mnemonic, as reported by go-ethereum.
func (o OpCode) String() string {
	return vm.OpCode(o).String()
}

// A StackPusher returns [1,32] bytes to be pushed to the stack.
type StackPusher interface {
	ToPush() []byte
}

// BytecoderFromStackPusher returns a Bytecoder that calls s.ToPush() and
// prepends the smallest PUSH<N> opcode able to carry the returned bytes.
// Leading zero bytes are stripped. An all-zero buffer compiles to PUSH1 0x00,
// not PUSH0, so that the result is valid on every fork; use the PUSH0
// mnemonic directly when the Shanghai opcode itself is wanted.
func BytecoderFromStackPusher(s StackPusher) Bytecoder {
	return pusher{s}
}

type pusher struct {
	StackPusher
}

func (p pusher) Bytecode() ([]byte, error) {
	buf := p.ToPush()
	n := len(buf)
	if n == 0 || n > 32 {
		return nil, fmt.Errorf("len(%T.ToPush()) == %d must be in [1,32]", p.StackPusher, n)
	}

	size := n
	for _, b := range buf {
		if b != 0 {
			break
		}
		size--
	}
	if size == 0 {
		return []byte{byte(vm.PUSH1), 0}, nil
	}

	return append(
		// PUSH0 to PUSH32 are contiguous, so we can perform arithmetic on them.
		[]byte{byte(vm.PUSH0 + vm.OpCode(size))},
		buf[n-size:]...,
	), nil
}
