// Package writers turns inference results into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (TSV, JSON).
//   - Core packages stay domain-only; writers never leak back into them.
//   - JSON goes through pkg/api (v1) for a stable wire format.
package writers
