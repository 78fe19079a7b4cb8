// Package conv provides checked integer conversions for sizes and counts
// read from or written to archive framing.
//
// Lengths decoded from an archive are untrusted. Converting them with a
// plain cast can wrap silently, so decoders go through [Widen], [Add] and
// [Mul] and treat [ErrOverflow] as corruption.
package conv
