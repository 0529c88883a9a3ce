package fillgen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/google/go-cmp/cmp"

	"github.com/solidifylabs/fillgen/types"
)

func TestCompile(t *testing.T) {
	type test struct {
		name string
		code Code
		want []byte
	}

	tests := []test{
		{
			name: "Fn reverses to natural argument order",
			code: Code{Fn(SSTORE, PUSH(0), PUSH(1))},
			want: []byte{
				byte(vm.PUSH1), 0x01,
				byte(vm.PUSH1), 0x00,
				byte(vm.SSTORE),
			},
		},
		{
			name: "nested Fn",
			code: Code{Fn(MSTORE, PUSH(0), Fn(ADD, PUSH(2), PUSH(3)))},
			want: []byte{
				byte(vm.PUSH1), 0x03,
				byte(vm.PUSH1), 0x02,
				byte(vm.ADD),
				byte(vm.PUSH1), 0x00,
				byte(vm.MSTORE),
			},
		},
		{
			name: "PUSH width inferred from value",
			code: Code{PUSH(uint64(0x1234)), PUSH(0), SetDepth(0)},
			want: []byte{
				byte(vm.PUSH2), 0x12, 0x34,
				byte(vm.PUSH1), 0x00,
			},
		},
		{
			name: "zero pushes as PUSH1 so code stays valid on all forks",
			code: Code{PUSH(0), SetDepth(0)},
			want: []byte{byte(vm.PUSH1), 0x00},
		},
		{
			name: "forward jump to labelled JUMPDEST",
			code: Code{
				Fn(JUMP, PUSH("end")),
				JUMPDEST("end"), SetDepth(0),
				STOP,
			},
			want: []byte{
				byte(vm.PUSH1), 0x03,
				byte(vm.JUMP),
				byte(vm.JUMPDEST),
				byte(vm.STOP),
			},
		},
		{
			name: "label push widens past the one-byte boundary",
			code: Code{
				Fn(JUMP, PUSH("end")),
				Raw(bytes.Repeat([]byte{byte(vm.JUMPDEST)}, 300)),
				JUMPDEST("end"), SetDepth(0),
				STOP,
			},
			want: append(
				append(
					[]byte{byte(vm.PUSH2), 0x01, 0x30, byte(vm.JUMP)},
					bytes.Repeat([]byte{byte(vm.JUMPDEST)}, 300)...,
				),
				byte(vm.JUMPDEST), byte(vm.STOP),
			),
		},
		{
			name: "Label marks an offset without emitting bytes",
			code: Code{
				PUSH(Label("data")), POP, SetDepth(0),
				STOP,
				Label("data"),
			},
			want: []byte{
				byte(vm.PUSH1), 0x04,
				byte(vm.POP),
				byte(vm.STOP),
			},
		},
		{
			name: "Raw bypasses stack accounting",
			code: Code{Raw{byte(vm.ADD), 0xfa, 0xfb}},
			want: []byte{byte(vm.ADD), 0xfa, 0xfb},
		},
		{
			name: "SetDepth allows unreachable-code accounting",
			code: Code{
				Fn(JUMPI, PUSH("skip"), PUSH(1)),
				INVALID,
				JUMPDEST("skip"), SetDepth(0),
				STOP,
			},
			want: []byte{
				byte(vm.PUSH1), 0x01,
				byte(vm.PUSH1), 0x06,
				byte(vm.JUMPI),
				byte(vm.INVALID),
				byte(vm.JUMPDEST),
				byte(vm.STOP),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.code.Compile()
			if err != nil {
				t.Fatalf("%T.Compile() error %v", tt.code, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("%T.Compile() diff (-want +got):\n%s", tt.code, diff)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	type test struct {
		name        string
		code        Code
		errContains string
	}

	tests := []test{
		{
			name:        "stack underflow",
			code:        Code{ADD},
			errContains: "requires 2 stack values",
		},
		{
			name:        "JUMPDEST without SetDepth",
			code:        Code{JUMPDEST("x"), STOP},
			errContains: "must be followed by",
		},
		{
			name:        "duplicate label",
			code:        Code{Label("x"), Label("x")},
			errContains: `duplicate label "x"`,
		},
		{
			name:        "undefined label",
			code:        Code{Fn(JUMP, PUSH("nowhere"))},
			errContains: `undefined label "nowhere"`,
		},
		{
			name:        "ExpectDepth mismatch",
			code:        Code{PUSH(1), ExpectDepth(2)},
			errContains: "stack depth 1 when expecting 2",
		},
		{
			name:        "invalid byte from Bytecode",
			code:        Code{Raw{byte(vm.PUSH1), 0x01}, SetDepth(1), types.OpCode(0x0c)},
			errContains: "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.code.Compile()
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("%T.Compile() error %v; want containing %q", tt.code, err, tt.errContains)
			}
		})
	}
}
