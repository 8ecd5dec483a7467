// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mserr

// Lex holds the faults the Script lexer (miniscript/lexer.go) raises while
// turning a raw byte program into a token stream.
var Lex = NewErrorType("miniscript.Lex")

var (
	// ErrEarlyEnd is returned when a push or opcode needs more bytes than
	// remain in the program.
	ErrEarlyEnd = Lex.Code("EarlyEnd")

	// ErrUnknownOpcode is returned for a byte outside the accepted opcode
	// subset.
	ErrUnknownOpcode = Lex.Code("InvalidOpcode")

	// ErrNonMinimalPush is returned when a data push could have used a
	// shorter push opcode for the same bytes.
	ErrNonMinimalPush = Lex.Code("NonMinimalPush")

	// ErrInvalidPush is returned for a push whose contents no accepted
	// template can use: a 33-byte push that is not a valid compressed
	// pubkey, an empty or negative number push, a hash opcode not followed
	// by a push of that hash's width, or a PUSHDATA2/PUSHDATA4 push. A push
	// cut short by the end of the program is ErrEarlyEnd instead.
	ErrInvalidPush = Lex.Code("InvalidPush")

	// ErrNonMinimalNumber is returned when a number token could have been
	// produced by a smaller push or by OP_0/OP_1..OP_16.
	ErrNonMinimalNumber = Lex.Code("NonMinimalNumber")

	// ErrNumberOverflow is returned when a numeric push exceeds the 4-byte
	// range this library's Number token carries.
	ErrNumberOverflow = Lex.Code("NumberOverflow")
)

// Decode holds the faults the token-driven AST decoder raises.
var Decode = NewErrorType("miniscript.Decode")

var (
	// ErrUnexpected is returned when no variant of the expected
	// correctness type matches the token suffix under the cursor.
	ErrUnexpected = Decode.Code("Unexpected")

	// ErrTrailing is returned when a top-level decode leaves unconsumed
	// tokens after a complete fragment was recognized.
	ErrTrailing = Decode.Code("Trailing")

	// ErrParseThreshold is returned when a decoded thresh(k, ...) fragment's
	// k is out of range for its argument count. A decoded multi(k, ...) with
	// k out of range reports NewECheckMultiSig's own error instead.
	ErrParseThreshold = Decode.Code("ParseThreshold")

	// ErrDepthExceeded is returned when recursive descent would exceed the
	// library's recursion guard (see miniscript.MaxDecodeDepth).
	ErrDepthExceeded = Decode.Code("DepthExceeded")
)

// Parse holds the faults raised while reading the textual name(args...)
// expression tree (package expr) and while resolving it to an AST
// (miniscript.FromTree / descriptor.Parse).
var Parse = NewErrorType("miniscript.Parse")

var (
	// ErrUnexpectedChar is returned for a token the grammar does not admit at
	// that position (reused name: parse- and decode-time "unexpected"
	// faults are distinguished by which ErrorType produced them).
	ErrUnexpectedChar = Parse.Code("Unexpected")

	// ErrExpectedChar is returned when a specific character (often ')' or
	// ',') was required and something else was found.
	ErrExpectedChar = Parse.Code("ExpectedChar")

	// ErrMultiColon is returned when a wrapper-cast prefix contains more
	// than one ':'.
	ErrMultiColon = Parse.Code("MultiColon")

	// ErrNonTopLevel is returned when a descriptor-only name (pk, pkh,
	// wpkh, sh, wsh) appears nested inside a Miniscript fragment.
	ErrNonTopLevel = Parse.Code("NonTopLevel")

	// ErrUnprintable is returned for a byte outside printable ASCII
	// [0x20, 0x7F].
	ErrUnprintable = Parse.Code("Unprintable")
)

// Type holds the faults raised while resolving a name/args tree into a
// typed AST node (miniscript.FromTree and its wrapper-cast machinery).
var Type = NewErrorType("miniscript.Type")

var (
	// ErrTypeCheck is returned when an argument's correctness type does
	// not match what the parent template requires.
	ErrTypeCheck = Type.Code("TypeCheck")

	// ErrMissingExt is returned when the fragment at the script root has no
	// form that can be cast to T. E and V fragments at the root are lifted
	// to T automatically; a W fragment there raises ErrAtOutsideOr instead.
	ErrMissingExt = Type.Code("MissingExt")

	// ErrAtOutsideOr is returned when a W fragment (an 'a' or 's' wrapper)
	// is used at the script root, with no parallel composition around it.
	ErrAtOutsideOr = Type.Code("AtOutsideOr")

	// ErrBadDescriptor is returned for a malformed or unrecognized
	// descriptor envelope name/arity.
	ErrBadDescriptor = Type.Code("BadDescriptor")

	// ErrCmsTooManyKeys is returned when multi(k, ...)/CheckMultiSig has
	// more than 20 keys.
	ErrCmsTooManyKeys = Type.Code("CmsTooManyKeys")

	// ErrContextError is returned for any other semantic-bounds
	// violation (k out of range, n out of [1, 2^31) for a timelock, a
	// hash not exactly the expected width).
	ErrContextError = Type.Code("ContextError")
)

// Satisfy holds the faults raised while building a witness stack.
var Satisfy = NewErrorType("miniscript.Satisfy")

var (
	// ErrCouldNotSatisfy is returned when no witness makes the fragment
	// evaluate true under the given oracle.
	ErrCouldNotSatisfy = Satisfy.Code("CouldNotSatisfy")

	// ErrMissingSig is returned only for the unambiguous single-key
	// descriptor envelopes (Pk, Pkh, Wpkh, ShWpkh); inside a Miniscript a
	// missing signature silently dissatisfies the sub-branch instead.
	ErrMissingSig = Satisfy.Code("MissingSig")
)
