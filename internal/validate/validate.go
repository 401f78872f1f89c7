// Package validate decides whether a decoded or built module is a
// well-formed program. Structural findings reject the module; precondition
// findings are warnings; an unsupported version rejects it outright.
package validate

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"jeff/internal/diag"
	"jeff/internal/ir"
)

// Options tune a validation run. The verdict does not depend on them except
// through the diagnostic limit.
type Options struct {
	Jobs           int  // параллельных функций; 0 = GOMAXPROCS
	CollectAll     bool // false: stop at the first error
	Lints          bool
	MaxDiagnostics int
}

func DefaultOptions() Options {
	return Options{CollectAll: true, Lints: true, MaxDiagnostics: 100}
}

// Check validates m with default options and returns every error joined,
// or nil when m is well-formed.
func Check(m *ir.Module) error {
	opts := DefaultOptions()
	opts.Lints = false
	return Module(context.Background(), m, opts).Err()
}

// Module validates a whole module. Functions are checked in parallel;
// findings come back in function order regardless of scheduling.
func Module(ctx context.Context, m *ir.Module, opts Options) *diag.Bag {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultOptions().MaxDiagnostics
	}
	out := diag.NewBag(opts.MaxDiagnostics)
	if m == nil {
		out.Add(diag.Errorf(diag.StructInfo, diag.ModuleLoc(), "no module"))
		return out
	}

	if !m.Version.Supported() {
		out.Add(diag.Errorf(diag.CompatVersion, diag.ModuleLoc(),
			"module version %s is not supported (supported major version %d)", m.Version, ir.CurrentVersion.Major()))
		return out
	}

	// имена проверяются до любого региона
	if !checkNames(m, out) {
		return out
	}
	if !opts.CollectAll && out.HasErrors() {
		return firstOnly(out)
	}
	checkModuleRefs(m, out)
	if !opts.CollectAll && out.HasErrors() {
		return firstOnly(out)
	}

	bags := make([]*diag.Bag, len(m.Functions))
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range m.Functions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bags[i] = Function(m, i, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		out.Add(diag.Errorf(diag.StructInfo, diag.ModuleLoc(), "validation interrupted: %v", err))
		return out
	}
	for _, b := range bags {
		for _, it := range b.Items() {
			if !out.Add(it) {
				break
			}
		}
	}
	if !opts.CollectAll {
		return firstOnly(out)
	}
	return out
}

// firstOnly keeps warnings and the first error.
func firstOnly(b *diag.Bag) *diag.Bag {
	out := diag.NewBag(b.Cap())
	for _, it := range b.Items() {
		out.Add(it)
		if it.Severity >= diag.SevError {
			break
		}
	}
	return out
}

// checkNames resolves every function name and rejects duplicates. It
// returns false when a duplicate was found.
func checkNames(m *ir.Module, out *diag.Bag) bool {
	seen := make(map[string]int, len(m.Functions))
	unique := true
	for i := range m.Functions {
		name, err := m.Strings.Get(m.Functions[i].Name, "function name")
		if err != nil {
			out.Add(diag.Errorf(diag.StructStringOutOfBounds, diag.FuncLoc(i, ""), "%v", err))
			continue
		}
		if first, ok := seen[name]; ok {
			e := diag.Errorf(diag.StructDuplicateName, diag.FuncLoc(i, name),
				"function name %q is already used by function #%d", name, first)
			out.Add(e.WithNote(diag.FuncLoc(first, name), "first defined here"))
			unique = false
			continue
		}
		seen[name] = i
	}
	return unique
}

// checkModuleRefs covers module-level references: entrypoint and metadata.
func checkModuleRefs(m *ir.Module, out *diag.Bag) {
	if int(m.Entrypoint) >= len(m.Functions) {
		out.Add(diag.Errorf(diag.StructEntrypoint, diag.ModuleLoc(),
			"entrypoint #%d out of bounds, module has %d functions", m.Entrypoint, len(m.Functions)))
	}
	checkMeta(m, m.Meta, diag.ModuleLoc(), "module metadata", func(e *diag.Error) { out.Add(e) })
}

func checkMeta(m *ir.Module, meta []ir.Meta, loc diag.Location, what string, report func(*diag.Error)) {
	for _, md := range meta {
		if _, err := m.Strings.Get(md.Name, what+" name"); err != nil {
			report(diag.Errorf(diag.StructStringOutOfBounds, loc, "%v", err))
		}
	}
}
