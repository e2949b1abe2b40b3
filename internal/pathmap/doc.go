// Package pathmap rewrites remote cartridge paths embedded in log entries to
// paths relative to the local project, and detects entries that already
// mention a local path.
//
// Three textual shapes are recognised, in this order, for every mapping:
//
//	(name/path)          parenthesised
//	"name/path"          quoted with ', " or ` (same quote on both sides)
//	at name/path         stack frame, path ends at whitespace or ':'
//
// The shapes are a heuristic, not a grammar. Mappings are applied in the order
// given; a mapping whose name prefixes another mapping's rewritten path can
// rewrite that output again.
package pathmap
