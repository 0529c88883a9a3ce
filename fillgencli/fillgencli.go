// Package fillgencli provides the CLI for generating state-test fillers
// with fillgen.
package fillgencli

import (
	"fmt"
	"log"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/solidifylabs/fillgen"
	"github.com/solidifylabs/fillgen/filler"
	"github.com/solidifylabs/fillgen/runopts"
	"github.com/solidifylabs/fillgen/vmspec"
)

// Run runs the CLI. It should be called from a main.main() function and
// will parse command-line arguments and flags to perform available
// commands. For usage, invoke the binary without any arguments.
func Run() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var forkName string

	forkFlag := func(c *cobra.Command) {
		c.Flags().StringVarP(&forkName, "fork", "f", vmspec.LatestFork.String(), "Instruction set to target")
	}
	fork := func() (vmspec.Fork, error) {
		return vmspec.ForkByName(forkName)
	}

	var withEIPs bool

	forks := &cobra.Command{
		Use:   "forks",
		Short: "List known network upgrades and their EIP checklists",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range vmspec.Forks() {
				fmt.Println(f)
				if !withEIPs {
					continue
				}
				for _, e := range f.EIPs() {
					fmt.Printf("  EIP-%-5d %s\n", e.Number, e.Title)
				}
			}
			return nil
		},
	}
	forks.Flags().BoolVarP(&withEIPs, "eips", "e", false, "Include each upgrade's EIP inclusion list")

	opcodes := &cobra.Command{
		Use:   "opcodes",
		Short: "Print the opcode reference table for a fork",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fork()
			if err != nil {
				return err
			}
			for _, s := range vmspec.AllAt(f) {
				fmt.Printf("%#02x %-14s pop %d push %d  %-11s %s\n", byte(s.Op), s.Name, s.Pop, s.Push, s.Category, s.Fork)
			}
			return nil
		},
	}
	forkFlag(opcodes)

	var outDir string

	fill := &cobra.Command{
		Use:   "fill",
		Short: "Generate an opcode filler per instruction of a fork",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fork()
			if err != nil {
				return err
			}
			report, err := fillgen.FillOpcodes(cmd.Context(), outDir, f)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}

	underflow := &cobra.Command{
		Use:   "underflow",
		Short: "Generate a stack-underflow filler per popping instruction of a fork",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fork()
			if err != nil {
				return err
			}
			report, err := fillgen.FillUnderflows(cmd.Context(), outDir, f)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}

	for _, c := range []*cobra.Command{fill, underflow} {
		forkFlag(c)
		c.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write fillers into")
	}

	exec := &cobra.Command{
		Use:   "exec <mnemonic>",
		Short: "Compile an opcode's probe, execute it and print the captured storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := specByName(args[0])
			if err != nil {
				return err
			}
			code, err := fillgen.ProbeFor(s)
			if err != nil {
				return err
			}
			compiled, err := code.Compile()
			if err != nil {
				return err
			}
			fmt.Printf("code: %#x\n", compiled)

			sdb := runopts.CaptureStateDB()
			out, err := code.Run(fillgen.ProbeCallData(), sdb)
			if err != nil {
				return err
			}
			fmt.Printf("return: %#x\n", out)
			for slot := uint64(0); slot < 4; slot++ {
				v := sdb.Val.GetState(filler.ProbeAddress, common.BigToHash(new(big.Int).SetUint64(slot)))
				if slot == 0 || v != (common.Hash{}) {
					fmt.Printf("storage %s: %s\n", filler.SlotHex(slot), filler.WordHex(v))
				}
			}
			return nil
		},
	}

	debug := &cobra.Command{
		Use:   "debug <mnemonic>",
		Short: "Compile an opcode's probe and step through it in a terminal debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := specByName(args[0])
			if err != nil {
				return err
			}
			code, err := fillgen.ProbeFor(s)
			if err != nil {
				return err
			}
			return code.RunTerminalDebugger(fillgen.ProbeCallData())
		},
	}

	cmd := &cobra.Command{
		Short: "FILLGEN generator of EVM opcode state-test fillers",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.AddCommand(
		forks,
		opcodes,
		fill,
		underflow,
		exec,
		debug,
	)
	return cmd.Execute()
}

func specByName(name string) (vmspec.Spec, error) {
	s, ok := vmspec.ByName(strings.ToUpper(name))
	if !ok {
		return vmspec.Spec{}, fmt.Errorf("unknown opcode %q", name)
	}
	return s, nil
}

func printReport(r *fillgen.BatchReport) {
	for _, f := range r.Written {
		fmt.Println(f)
	}
	if len(r.Skipped) == 0 {
		return
	}
	names := make([]string, 0, len(r.Skipped))
	for n := range r.Skipped {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("skipped %s: %s\n", n, r.Skipped[n])
	}
}
