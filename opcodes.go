package fillgen

import (
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/solidifylabs/fillgen/types"
)

// Aliases of all regular vm.OpCode constants that don't have "special"
// replacements (JUMPDEST is a labelled type and PUSH1–PUSH32 are inferred by
// PUSH). Their stack requirements live in the vmspec table.
const (
	STOP           = types.OpCode(vm.STOP)
	ADD            = types.OpCode(vm.ADD)
	MUL            = types.OpCode(vm.MUL)
	SUB            = types.OpCode(vm.SUB)
	DIV            = types.OpCode(vm.DIV)
	SDIV           = types.OpCode(vm.SDIV)
	MOD            = types.OpCode(vm.MOD)
	SMOD           = types.OpCode(vm.SMOD)
	ADDMOD         = types.OpCode(vm.ADDMOD)
	MULMOD         = types.OpCode(vm.MULMOD)
	EXP            = types.OpCode(vm.EXP)
	SIGNEXTEND     = types.OpCode(vm.SIGNEXTEND)
	LT             = types.OpCode(vm.LT)
	GT             = types.OpCode(vm.GT)
	SLT            = types.OpCode(vm.SLT)
	SGT            = types.OpCode(vm.SGT)
	EQ             = types.OpCode(vm.EQ)
	ISZERO         = types.OpCode(vm.ISZERO)
	AND            = types.OpCode(vm.AND)
	OR             = types.OpCode(vm.OR)
	XOR            = types.OpCode(vm.XOR)
	NOT            = types.OpCode(vm.NOT)
	BYTE           = types.OpCode(vm.BYTE)
	SHL            = types.OpCode(vm.SHL)
	SHR            = types.OpCode(vm.SHR)
	SAR            = types.OpCode(vm.SAR)
	KECCAK256      = types.OpCode(vm.KECCAK256)
	ADDRESS        = types.OpCode(vm.ADDRESS)
	BALANCE        = types.OpCode(vm.BALANCE)
	ORIGIN         = types.OpCode(vm.ORIGIN)
	CALLER         = types.OpCode(vm.CALLER)
	CALLVALUE      = types.OpCode(vm.CALLVALUE)
	CALLDATALOAD   = types.OpCode(vm.CALLDATALOAD)
	CALLDATASIZE   = types.OpCode(vm.CALLDATASIZE)
	CALLDATACOPY   = types.OpCode(vm.CALLDATACOPY)
	CODESIZE       = types.OpCode(vm.CODESIZE)
	CODECOPY       = types.OpCode(vm.CODECOPY)
	GASPRICE       = types.OpCode(vm.GASPRICE)
	EXTCODESIZE    = types.OpCode(vm.EXTCODESIZE)
	EXTCODECOPY    = types.OpCode(vm.EXTCODECOPY)
	RETURNDATASIZE = types.OpCode(vm.RETURNDATASIZE)
	RETURNDATACOPY = types.OpCode(vm.RETURNDATACOPY)
	EXTCODEHASH    = types.OpCode(vm.EXTCODEHASH)
	BLOCKHASH      = types.OpCode(vm.BLOCKHASH)
	COINBASE       = types.OpCode(vm.COINBASE)
	TIMESTAMP      = types.OpCode(vm.TIMESTAMP)
	NUMBER         = types.OpCode(vm.NUMBER)
	DIFFICULTY     = types.OpCode(vm.DIFFICULTY)
	GASLIMIT       = types.OpCode(vm.GASLIMIT)
	CHAINID        = types.OpCode(vm.CHAINID)
	SELFBALANCE    = types.OpCode(vm.SELFBALANCE)
	BASEFEE        = types.OpCode(vm.BASEFEE)
	BLOBHASH       = types.OpCode(vm.BLOBHASH)
	BLOBBASEFEE    = types.OpCode(vm.BLOBBASEFEE)
	POP            = types.OpCode(vm.POP)
	MLOAD          = types.OpCode(vm.MLOAD)
	MSTORE         = types.OpCode(vm.MSTORE)
	MSTORE8        = types.OpCode(vm.MSTORE8)
	SLOAD          = types.OpCode(vm.SLOAD)
	SSTORE         = types.OpCode(vm.SSTORE)
	JUMP           = types.OpCode(vm.JUMP)
	JUMPI          = types.OpCode(vm.JUMPI)
	PC             = types.OpCode(vm.PC)
	MSIZE          = types.OpCode(vm.MSIZE)
	GAS            = types.OpCode(vm.GAS)
	TLOAD          = types.OpCode(vm.TLOAD)
	TSTORE         = types.OpCode(vm.TSTORE)
	MCOPY          = types.OpCode(vm.MCOPY)
	PUSH0          = types.OpCode(vm.PUSH0)
	DUP1           = types.OpCode(vm.DUP1)
	DUP2           = types.OpCode(vm.DUP2)
	DUP3           = types.OpCode(vm.DUP3)
	DUP4           = types.OpCode(vm.DUP4)
	DUP5           = types.OpCode(vm.DUP5)
	DUP6           = types.OpCode(vm.DUP6)
	DUP7           = types.OpCode(vm.DUP7)
	DUP8           = types.OpCode(vm.DUP8)
	DUP9           = types.OpCode(vm.DUP9)
	DUP10          = types.OpCode(vm.DUP10)
	DUP11          = types.OpCode(vm.DUP11)
	DUP12          = types.OpCode(vm.DUP12)
	DUP13          = types.OpCode(vm.DUP13)
	DUP14          = types.OpCode(vm.DUP14)
	DUP15          = types.OpCode(vm.DUP15)
	DUP16          = types.OpCode(vm.DUP16)
	SWAP1          = types.OpCode(vm.SWAP1)
	SWAP2          = types.OpCode(vm.SWAP2)
	SWAP3          = types.OpCode(vm.SWAP3)
	SWAP4          = types.OpCode(vm.SWAP4)
	SWAP5          = types.OpCode(vm.SWAP5)
	SWAP6          = types.OpCode(vm.SWAP6)
	SWAP7          = types.OpCode(vm.SWAP7)
	SWAP8          = types.OpCode(vm.SWAP8)
	SWAP9          = types.OpCode(vm.SWAP9)
	SWAP10         = types.OpCode(vm.SWAP10)
	SWAP11         = types.OpCode(vm.SWAP11)
	SWAP12         = types.OpCode(vm.SWAP12)
	SWAP13         = types.OpCode(vm.SWAP13)
	SWAP14         = types.OpCode(vm.SWAP14)
	SWAP15         = types.OpCode(vm.SWAP15)
	SWAP16         = types.OpCode(vm.SWAP16)
	LOG0           = types.OpCode(vm.LOG0)
	LOG1           = types.OpCode(vm.LOG1)
	LOG2           = types.OpCode(vm.LOG2)
	LOG3           = types.OpCode(vm.LOG3)
	LOG4           = types.OpCode(vm.LOG4)
	CREATE         = types.OpCode(vm.CREATE)
	CALL           = types.OpCode(vm.CALL)
	CALLCODE       = types.OpCode(vm.CALLCODE)
	RETURN         = types.OpCode(vm.RETURN)
	DELEGATECALL   = types.OpCode(vm.DELEGATECALL)
	CREATE2        = types.OpCode(vm.CREATE2)
	STATICCALL     = types.OpCode(vm.STATICCALL)
	REVERT         = types.OpCode(vm.REVERT)
	INVALID        = types.OpCode(vm.INVALID)
	SELFDESTRUCT   = types.OpCode(vm.SELFDESTRUCT)
)
