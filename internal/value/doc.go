// Package value implements the property value model of a topology: a closed
// set of variants (Scalar, Complex, List and the deferred Function reference)
// plus the conversions to and from native Go trees.
//
// A nil Value stands for null.
package value
