// Package gen is the core of the connector generator: it reconciles the
// schema's entity mappings against the fixed catalog of composite types,
// synthesizes derived types for entity names the catalog doesn't know,
// and compiles every mapping into equivalent construction expressions
// for the two target languages (TypeScript and C#).
//
// The pipeline is strictly phased: the derived-type synthesis must see
// the entire property list before any expression is compiled, because
// derived types accumulate fields across properties. NewGraph owns that
// ordering; the individual compilers are pure functions over the frozen
// results.
package gen
