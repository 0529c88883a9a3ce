package evmdebug

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// RunTerminalUI starts an interactive terminal debugger driving d: space
// steps one opcode, End fast-forwards, and q or Escape quit once execution
// has ended. The disassembly of compiled is shown alongside the stack and
// memory of the single supported call frame; callData must be the calldata
// passed to the execution.
//
// The Debugger only observes execution through a vm.EVMLogger, so the final
// return buffer comes from the results callback, which must block until
// d.Done() reports true and then return what the execution returned.
func (d *Debugger) RunTerminalUI(callData, compiled []byte, results func() ([]byte, error)) error {
	t := &termDBG{
		Debugger: d,
		results:  results,
	}
	t.initComponents()
	t.initApp()
	t.populateCallData(callData)
	t.populateCode(compiled)
	return t.app.Run()
}

type termDBG struct {
	*Debugger
	app *tview.Application

	stack, memory    *tview.List
	callData, result *tview.TextView

	code         *tview.List
	pcToCodeItem map[uint64]int

	results func() ([]byte, error)
}

func (*termDBG) styleBox(b *tview.Box, title string) *tview.Box {
	return b.SetBorder(true).
		SetTitle(title).
		SetTitleAlign(tview.AlignLeft)
}

func (t *termDBG) initComponents() {
	const codeTitle = "Code"
	for title, l := range map[string]**tview.List{
		"Stack":   &t.stack,
		"Memory":  &t.memory,
		codeTitle: &t.code,
	} {
		*l = tview.NewList()
		(*l).ShowSecondaryText(false).
			SetSelectedFocusOnly(title != codeTitle)
		t.styleBox((*l).Box, title)
	}

	t.code.SetChangedFunc(func(int, string, string, rune) {
		t.onStep()
	})

	for title, v := range map[string]**tview.TextView{
		"calldata": &t.callData,
		"Result":   &t.result,
	} {
		*v = tview.NewTextView()
		t.styleBox((*v).Box, title)
	}
}

func (t *termDBG) initApp() {
	t.app = tview.NewApplication().SetRoot(t.createLayout(), true)
	t.app.SetInputCapture(t.inputCapture)
}

func (t *termDBG) createLayout() tview.Primitive {
	// Absolute dimensions account for the 2-cell borders.
	const (
		hStack = 2 + 16
		wStack = 2 + 5 + 64 // 4-digit decimal label and a space
		wMem   = 2 + 3 + 64 // 2-digit hex offset and a space
	)
	middle := tview.NewFlex().
		AddItem(t.code, 0, 1, false).
		AddItem(t.stack, wStack, 0, false).
		AddItem(t.memory, wMem, 0, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.callData, 0, 1, false).
		AddItem(middle, hStack, 0, false).
		AddItem(t.result, 0, 1, false)

	t.styleBox(root.Box, "FILLGEN").SetTitleAlign(tview.AlignCenter)

	return root
}

func (t *termDBG) populateCallData(cd []byte) {
	t.callData.SetText(fmt.Sprintf("%x", cd))
}

func (t *termDBG) populateCode(compiled []byte) {
	t.pcToCodeItem = make(map[uint64]int)

	var skip int
	for i, o := range compiled {
		if skip > 0 {
			skip--
			continue
		}

		var text string
		switch op := vm.OpCode(o); {
		case op == vm.PUSH0:
			text = op.String()

		case op.IsPush():
			skip += int(op - vm.PUSH0)
			text = fmt.Sprintf("%s %#x", op.String(), compiled[i+1:i+1+skip])

		default:
			text = op.String()
		}

		t.pcToCodeItem[uint64(i)] = t.code.GetItemCount()
		t.code.AddItem(text, "", 0, nil)
	}

	t.code.AddItem("--- END ---", "", 0, nil)
}

func (t *termDBG) highlightPC() {
	t.code.SetCurrentItem(t.pcToCodeItem[t.State().PC] + 1)
}

// onStep is triggered by t.code's ChangedFunc.
func (t *termDBG) onStep() {
	if !t.Done() {
		return
	}
	t.result.SetText(t.resultToDisplay())
}

func (t *termDBG) resultToDisplay() string {
	out, err := t.results()
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	return fmt.Sprintf("%x", out)
}

func (t *termDBG) inputCapture(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		t.app.Stop()
		return ev

	case tcell.KeyEnd:
		t.FastForward()
		t.highlightPC()

	case tcell.KeyEscape:
		if t.Done() {
			t.app.Stop()
		}
	}

	switch ev.Rune() {
	case ' ':
		if !t.Done() {
			t.Step()
			t.highlightPC()
		}

	case 'q':
		if t.Done() {
			t.app.Stop()
		}
	}

	if t.State().Context != nil {
		t.populateStack()
		t.populateMemory()
	}

	return nil
}

func (t *termDBG) populateStack() {
	stack := t.State().Context.Stack.Data()

	t.stack.Clear()
	for i, n := 0, len(stack); i < n; i++ {
		item := t.State().StackBack(i)
		buf := item.Bytes()
		if item.IsZero() {
			buf = []byte{0}
		}
		t.stack.AddItem(fmt.Sprintf("%4d %64x", len(stack)-i, buf), "", 0, nil)
	}

	// Pad with empty lines so real values sit at the bottom.
	for t.stack.GetItemCount() < 16 {
		t.stack.InsertItem(0, "", "", 0, nil)
	}
}

func (t *termDBG) populateMemory() {
	mem := t.State().Context.Memory.Data()

	t.memory.Clear()
	for i := 0; i < len(mem); i += 32 {
		end := i + 32
		if end > len(mem) {
			end = len(mem)
		}
		t.memory.AddItem(fmt.Sprintf("%02x %x", i, mem[i:end]), "", 0, nil)
	}
}
