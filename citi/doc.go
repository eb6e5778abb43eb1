// Package citi reads and writes CITI files, the line-oriented ASCII
// format used by RF and network-analyzer instruments to record
// complex-valued measurement sweeps alongside instrument metadata.
//
// A file is an ordered sequence of keyword lines:
//
//	CITIFILE A.01.00
//	NAME DATA
//	#this is a comment
//	DEVICE NA VERSION HP8510B.05.00
//	DEVICE NA REGISTER 1
//	VAR FREQ MAG 10
//	DATA S[1,1] RI
//	SEG_LIST_BEGIN
//	SEG 1E+09 4E+09 10
//	SEG_LIST_END
//	BEGIN
//	8.6303E-02,-8.98651E-01
//	...
//	END
//
// # Reading
//
// Parsing is a single forward pass driven by an explicit state machine.
// The version line must come first, NAME follows, then comments, device
// lines and constants, then the independent-variable declaration with
// its values, then the data blocks. Parsing is all-or-nothing: any
// classification, ordering or finalization failure yields an error and
// no Record.
//
//	rec, err := citi.ReadRecord(f)
//
// # Writing
//
// Serialization is deterministic and canonical. Floats render in the
// format's exponent convention (8.6303E-02) using the shortest
// representation that re-parses to the identical float64, so a
// serialize/parse round trip reproduces every sample bit for bit.
// SEG_LIST input re-emits as an explicit VAR_LIST.
//
//	err := citi.WriteRecord(f, rec)
//
// # Errors
//
// All failures are typed and carry an ErrorCode from the shared
// taxonomy; CodeOf maps any error returned by this package (including
// wrapped I/O failures) to its code. Nothing here panics on malformed
// input.
//
// The engine is synchronous and keeps no shared state: distinct Records
// may be parsed, mutated and written concurrently. A single Record is
// not internally locked.
package citi
