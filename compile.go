package fillgen

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/solidifylabs/fillgen/types"
	"github.com/solidifylabs/fillgen/vmspec"
)

// A site is a labelled byte index in the compiled code. Its offset isn't
// known until the widths of all preceding label pushes are settled, so sites
// are shared by pointer between the fragment that defines them and the
// fragments that push them.
type site struct {
	name    string
	dest    bool // a JUMPDEST opcode occupies the site
	defined bool
	known   bool // offset has been computed at least once
	offset  int
}

// A fragment is a buffer of literal bytecode followed by either a labelled
// site or a push of a site's offset. A pushed offset changes width when its
// site crosses the 256-byte boundary, which moves later sites, hence the
// fixpoint in program.resolve().
type fragment struct {
	buf  bytes.Buffer
	site *site // the fragment ends at a labelled site
	ref  *site // the fragment ends at a push of this site's offset
	wide bool  // ref encoded as two bytes
}

// pushWidth returns the number of bytes the fragment's push occupies,
// including the PUSH opcode itself.
func (f *fragment) pushWidth() int {
	if f.ref == nil {
		return 0
	}
	if f.wide {
		return 3
	}
	return 2
}

type program struct {
	frags []*fragment
	sites map[string]*site
}

func newProgram() *program {
	return &program{
		frags: []*fragment{new(fragment)},
		sites: make(map[string]*site),
	}
}

// buffer returns the bytecode buffer currently being appended to.
func (p *program) buffer() *bytes.Buffer {
	return &p.frags[len(p.frags)-1].buf
}

func (p *program) intern(name string) *site {
	if s, ok := p.sites[name]; ok {
		return s
	}
	s := &site{name: name}
	p.sites[name] = s
	return s
}

// define seals the current fragment at a labelled site. Labels and JUMPDESTs
// share a namespace.
func (p *program) define(name string, dest bool) error {
	s := p.intern(name)
	if s.defined {
		return fmt.Errorf("duplicate label %q", name)
	}
	s.defined = true
	s.dest = dest

	p.frags[len(p.frags)-1].site = s
	p.frags = append(p.frags, new(fragment))
	return nil
}

// pushSite seals the current fragment at a push of the named site's offset.
// The site need not be defined yet.
func (p *program) pushSite(name string) {
	p.frags[len(p.frags)-1].ref = p.intern(name)
	p.frags = append(p.frags, new(fragment))
}

// resolve computes every site's offset by relaxation: pushes start one byte
// wide and widen to two when the referenced offset reaches 256, which shifts
// later sites, so passes repeat until a full pass changes nothing. Widths
// only ever grow and offsets settle once widths do, guaranteeing termination.
func (p *program) resolve() error {
	for _, f := range p.frags {
		if f.ref != nil && !f.ref.defined {
			return fmt.Errorf("PUSH of undefined label %q", f.ref.name)
		}
	}

	for {
		changed := false
		pc := 0
		for _, f := range p.frags {
			pc += f.buf.Len()

			if f.site != nil {
				if !f.site.known || f.site.offset != pc {
					f.site.offset, f.site.known = pc, true
					changed = true
				}
				if f.site.dest {
					pc++ // the vm.JUMPDEST byte
				}
				continue
			}

			if !f.wide && f.ref != nil && f.ref.known && f.ref.offset >= 256 {
				f.wide, changed = true, true
			}
			pc += f.pushWidth()
		}

		if !changed {
			return nil
		}
	}
}

// emit concatenates the fragments with concrete site offsets. It MUST NOT be
// called before resolve().
func (p *program) emit() ([]byte, error) {
	code := new(bytes.Buffer)
	for _, f := range p.frags {
		code.Write(f.buf.Bytes())

		if f.site != nil {
			if f.site.dest {
				code.WriteByte(byte(vm.JUMPDEST))
			}
			continue
		}
		if f.ref == nil {
			continue
		}

		per := 1
		if f.wide {
			per = 2
		}
		if f.ref.offset>>(8*per) != 0 {
			return nil, fmt.Errorf("label %q offset %d overflows %d byte(s)", f.ref.name, f.ref.offset, per)
		}
		// Unlike constant pushes, label pushes keep their reserved width so
		// offsets stay put.
		code.WriteByte(byte(vm.PUSH0) + byte(per))
		if per == 2 {
			code.WriteByte(byte(f.ref.offset >> 8))
		}
		code.WriteByte(byte(f.ref.offset))
	}
	return code.Bytes(), nil
}

// flatten returns a Code slice that only contains Bytecoders but no
// BytecodeHolders, the latter being recursively converted into their
// constituent Bytecoders.
func (c Code) flatten() Code {
	out := make(Code, 0, len(c))
	for _, bc := range c {
		switch bc := bc.(type) {
		case types.BytecodeHolder:
			out = append(out, Code(bc.Bytecoders()).flatten()...)
		default:
			out = append(out, bc)
		}
	}
	return out
}

// Compile returns the assembled bytecode with all special opcodes
// interpreted: labels resolved, PUSH widths inferred, and stack depth
// accounted for against the vmspec table.
func (c Code) Compile() ([]byte, error) {
	flat := c.flatten()
	prog := newProgram()

	var (
		depth        uint
		requireDepth bool
	)

	for i, raw := range flat {
		posErr := func(format string, a ...any) error {
			format = "%T[%d]: " + format
			a = append([]any{c, i}, a...)
			return fmt.Errorf(format, a...)
		}

		switch op := raw.(type) {
		case SetDepth:
			depth = uint(op)
			requireDepth = false
			continue

		case ExpectDepth:
			if got, want := depth, uint(op); got != want {
				return nil, posErr("stack depth %d when expecting %d", got, want)
			}
			continue
		}

		if requireDepth {
			return nil, posErr("%T must be followed by %T", JUMPDEST(""), SetDepth(0))
		}

		switch op := raw.(type) {
		case JUMPDEST:
			if err := prog.define(string(op), true); err != nil {
				return nil, posErr("%v", err)
			}
			requireDepth = true

		case Label:
			if err := prog.define(string(op), false); err != nil {
				return nil, posErr("%v", err)
			}

		case pushLabel:
			prog.pushSite(string(op))
			depth++

		case Raw:
			code, _ := op.Bytecode() // always returns nil error
			prog.buffer().Write(code)

		default:
			code, err := raw.Bytecode()
			if err != nil {
				return nil, err
			}

			for i, n := 0, len(code); i < n; i++ {
				o := vm.OpCode(code[i])
				pop, push, ok := vmspec.StackDelta(o)
				if !ok {
					return nil, posErr("invalid %T(%v) as byte [%d] returned by Bytecode()", o, o, i)
				}
				if depth < pop {
					return nil, posErr("Bytecode()[%d] = %v requires %d stack values with depth %d", i, o, pop, depth)
				}
				depth = depth - pop + push

				if o.IsPush() {
					i += int(o - vm.PUSH0)
				}
			}

			prog.buffer().Write(code)
		}
	}

	if err := prog.resolve(); err != nil {
		return nil, err
	}
	return prog.emit()
}
