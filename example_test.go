package fillgen

import (
	"fmt"
	"log"
	"math/big"
)

func Example_storeAndReturn() {
	code := Code{
		// Fn() reverses its arguments so they read in natural order.
		Fn(MSTORE, PUSH(0), Fn(ADD, PUSH(1), PUSH(2))),
		Fn(RETURN, PUSH(0), PUSH(32)),
	}

	compiled, err := code.Compile()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%#x\n", compiled)

	out, err := code.Run(nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(new(big.Int).SetBytes(out))

	// Output:
	// 0x600260010160005260206000f3
	// 3
}

func Example_jump() {
	code := Code{
		Fn(JUMP, PUSH("target")), // the compiler resolves the JUMPDEST's offset
		INVALID,
		JUMPDEST("target"), SetDepth(0),
		Fn(MSTORE, PUSH(0), PUSH(uint64(0xbeef))),
		Fn(RETURN, PUSH(30), PUSH(2)),
	}

	out, err := code.Run(nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%#x\n", out)

	// Output:
	// 0xbeef
}
