// Package funcs provides the built-in function libraries registered with a
// [lang.Registry].
//
// Each library is returned as a [lang.Group] so callers choose which ones a
// registry carries:
//
//	reg := lang.NewRegistry(funcs.Math(), funcs.Strings(), funcs.Collections())
//
// Libraries that depend on an external collaborator take it at construction
// ([Currency]) or read it from a formula argument ([Records]).
//
// # Arguments
//
// Numeric parameters accept Integer and Float values. Parameters documented
// as a sequence accept a List of Strings or a single String; unit entries in
// a List are skipped. Any other argument type fails with
// [lang.ErrTypeMismatch] naming the function and the argument position.
package funcs
