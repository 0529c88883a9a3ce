package fillgen

import "fmt"

// SetDepth is a sentinel value that signals to Code.Compile() that it must
// overwrite its internal counter reflecting the current stack depth.
//
// For each opcode it encounters, Compile() adjusts a value that reflects its
// belief about the stack depth, using the vmspec table. This is a crude
// mechanism that only works for non-JUMPing code, so the programmer MUST
// signal the actual depth after every JUMPDEST.
type SetDepth uint

// Bytecode always returns an error.
func (d SetDepth) Bytecode() ([]byte, error) {
	return nil, fmt.Errorf("call to %T.Bytecode()", d)
}

// ExpectDepth is a sentinel value that signals to Code.Compile() that it must
// assert the expected stack depth, returning an error if incorrect. The
// expectation is with respect to Compile()'s accounting and has nothing to do
// with concrete (runtime) depths.
type ExpectDepth uint

// Bytecode always returns an error.
func (d ExpectDepth) Bytecode() ([]byte, error) {
	return nil, fmt.Errorf("call to %T.Bytecode()", d)
}
