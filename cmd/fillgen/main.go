// The fillgen command generates YAML state-test fillers for EVM opcodes.
package main

import "github.com/solidifylabs/fillgen/fillgencli"

func main() {
	fillgencli.Run()
}
