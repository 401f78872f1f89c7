// Package builder assembles modules bottom-up. Every op is checked the
// moment it is appended and the first structural error is sticky, so an
// invalid module can never be returned from Build.
package builder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"

	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/strtab"
	"jeff/internal/types"
	"jeff/internal/validate"
)

// DefaultTool is recorded in Module.Tool unless overridden.
const DefaultTool = "jeff-go"

// ErrBuilt is the sticky error of a builder whose module was returned.
var ErrBuilt = errors.New("builder: module already built")

type slot struct {
	name    string
	defined bool
	reserve bool // forward reference awaiting a body
}

// ModuleBuilder collects functions, strings and module metadata.
type ModuleBuilder struct {
	mod   *ir.Module
	slots []slot
	names map[string]ir.FuncID
	err   error
}

func NewModule() *ModuleBuilder {
	return &ModuleBuilder{
		mod: &ir.Module{
			Version: ir.CurrentVersion,
			Tool:    DefaultTool,
			Strings: strtab.New(nil),
		},
		names: make(map[string]ir.FuncID),
	}
}

// Err returns the sticky construction error, if any.
func (b *ModuleBuilder) Err() error { return b.err }

func (b *ModuleBuilder) fail(e *diag.Error) error {
	if b.err == nil {
		b.err = e
	}
	return b.err
}

// SetTool records the producing tool and its version.
func (b *ModuleBuilder) SetTool(name, version string) {
	if b.err != nil {
		return
	}
	b.mod.Tool, b.mod.ToolVersion = name, version
}

// Intern returns the string table index of s, adding it when absent.
func (b *ModuleBuilder) Intern(s string) strtab.ID { return b.mod.Strings.Intern(s) }

// Annotate attaches module metadata. It does nothing once the builder
// has failed or built.
func (b *ModuleBuilder) Annotate(name string, value []byte) {
	if b.err != nil {
		return
	}
	b.mod.Meta = append(b.mod.Meta, b.meta(name, value))
}

func (b *ModuleBuilder) meta(name string, value []byte) ir.Meta {
	return ir.Meta{Name: b.Intern(name), Value: append([]byte(nil), value...)}
}

func (b *ModuleBuilder) addSlot(name string, fn ir.Function, s slot) (ir.FuncID, error) {
	if b.err != nil {
		return 0, b.err
	}
	n, err := safecast.Conv[uint32](len(b.mod.Functions))
	if err != nil {
		panic(fmt.Errorf("function table overflow: %w", err))
	}
	id := ir.FuncID(n)
	if first, ok := b.names[name]; ok {
		e := diag.Errorf(diag.StructDuplicateName, diag.FuncLoc(int(id), name),
			"function name %q is already used by function #%d", name, first)
		return 0, b.fail(e.WithNote(diag.FuncLoc(int(first), name), "first defined here"))
	}
	for _, ts := range [][]types.Type{fn.Inputs, fn.Outputs} {
		for _, t := range ts {
			if err := t.Validate(); err != nil {
				return 0, b.fail(diag.Errorf(diag.StructBadType, diag.FuncLoc(int(id), name), "signature of %q: %v", name, err))
			}
		}
	}
	fn.Name = b.Intern(name)
	fn.Kind = ir.FuncDeclaration
	s.name = name
	b.mod.Functions = append(b.mod.Functions, fn)
	b.slots = append(b.slots, s)
	b.names[name] = id
	return id, nil
}

// Declare adds an external function known only by its signature.
func (b *ModuleBuilder) Declare(name string, in, out []types.Type) (ir.FuncID, error) {
	return b.addSlot(name, ir.Function{Inputs: slices.Clone(in), Outputs: slices.Clone(out)}, slot{defined: true})
}

// Reserve allocates an index for a function defined later, so calls to it
// (including recursive ones) can be built first.
func (b *ModuleBuilder) Reserve(name string, in, out []types.Type) (ir.FuncID, error) {
	return b.addSlot(name, ir.Function{Inputs: slices.Clone(in), Outputs: slices.Clone(out)}, slot{reserve: true})
}

// Define reserves a function and starts its body.
func (b *ModuleBuilder) Define(name string, in, out []types.Type) (*FuncBuilder, error) {
	id, err := b.Reserve(name, in, out)
	if err != nil {
		return nil, err
	}
	return b.Body(id)
}

// Body starts the body of a reserved function.
func (b *ModuleBuilder) Body(id ir.FuncID) (*FuncBuilder, error) {
	if b.err != nil {
		return nil, b.err
	}
	if int(id) >= len(b.slots) || !b.slots[id].reserve || b.slots[id].defined {
		return nil, b.fail(diag.Errorf(diag.StructFuncOutOfBounds, diag.ModuleLoc(),
			"function #%d is not a reserved, undefined function", id))
	}
	return newFuncBuilder(b, id), nil
}

// SetEntrypoint marks the program entry function.
func (b *ModuleBuilder) SetEntrypoint(id ir.FuncID) error {
	if b.err != nil {
		return b.err
	}
	if int(id) >= len(b.mod.Functions) {
		return b.fail(diag.Errorf(diag.StructEntrypoint, diag.ModuleLoc(),
			"entrypoint #%d out of bounds, module has %d functions", id, len(b.mod.Functions)))
	}
	b.mod.Entrypoint = id
	return nil
}

// Build finalizes the module and runs the full validator over it. The
// returned module shares no tables with the builder, and every later call
// on the builder fails with ErrBuilt.
func (b *ModuleBuilder) Build() (*ir.Module, error) {
	if b.err != nil {
		return nil, b.err
	}
	for i, s := range b.slots {
		if !s.defined {
			return nil, b.fail(diag.Errorf(diag.StructDeclarationBody, diag.FuncLoc(i, s.name),
				"function %q was reserved but never defined", s.name))
		}
	}
	if len(b.mod.Functions) == 0 {
		return nil, b.fail(diag.Errorf(diag.StructEntrypoint, diag.ModuleLoc(), "module has no functions"))
	}
	opts := validate.DefaultOptions()
	opts.CollectAll, opts.Lints = false, false
	if e := validate.Module(context.Background(), b.mod, opts).First(); e != nil {
		return nil, b.fail(e)
	}
	out := *b.mod
	out.Functions = slices.Clone(b.mod.Functions)
	out.Meta = slices.Clone(b.mod.Meta)
	out.Strings = b.mod.Strings.Clone()
	b.err = ErrBuilt
	return &out, nil
}
