// Package diag defines the finding model shared by the builder, the
// validator and the codec.
//
// # Taxonomy
//
//   - Structural – cycles, use-before-def, duplicate definitions, linearity
//     violations, arity/type mismatches, out-of-bounds indices. Any structural
//     error rejects the whole module.
//   - Precondition – caller obligations that cannot be proven statically
//     (zero-step loops, switch selectors without a default). The validator
//     only ever reports these as warnings.
//   - Compatibility – unsupported version tokens.
//
// The kind is derived from the numeric range of the Code (see codes.go), so
// adding a code never needs a separate classification table.
//
// # Locations
//
// Location names the function (index and, when resolvable, its name), the
// region Path from the function body down to the nested region, and the op
// and value indices inside it. Fields that do not apply hold NoIndex.
//
// Error is both the record and an error value: fail-fast construction APIs
// return *Error directly while batch validation collects them in a Bag.
package diag
