// Package evaluator resolves the intrinsic functions that may appear in a
// property tree: get_input, get_property, get_attribute, concat, token and
// get_operation_output.
//
// Functions are implemented as cty functions built per call so that their
// implementation can close over the node being evaluated. Anything that
// cannot be resolved at transform time fails with ErrInvalidArgument.
package evaluator
