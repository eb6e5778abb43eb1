package citi

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"
)

// ErrorCode identifies every failure the engine can report. The values
// are part of the published boundary contract and must not be
// renumbered. Zero is success, all failures are negative. -2 is
// historically unassigned.
type ErrorCode int

const (
	CodeNoError ErrorCode = 0
	CodeUnknown ErrorCode = -1

	CodeNullArgument ErrorCode = -3
	CodeInvalidUTF8  ErrorCode = -4

	// Failures of the underlying byte source or sink, mirroring the
	// standard I/O error kinds.
	CodeFileNotFound          ErrorCode = -5
	CodeFilePermissionDenied  ErrorCode = -6
	CodeFileConnectionRefused ErrorCode = -7
	CodeFileConnectionReset   ErrorCode = -8
	CodeFileConnectionAborted ErrorCode = -9
	CodeFileNotConnected      ErrorCode = -10
	CodeFileAddrInUse         ErrorCode = -11
	CodeFileAddrNotAvailable  ErrorCode = -12
	CodeFileBrokenPipe        ErrorCode = -13
	CodeFileAlreadyExists     ErrorCode = -14
	CodeFileWouldBlock        ErrorCode = -15
	CodeFileInvalidInput      ErrorCode = -16
	CodeFileInvalidData       ErrorCode = -17
	CodeFileTimedOut          ErrorCode = -18
	CodeFileWriteZero         ErrorCode = -19
	CodeFileInterrupted       ErrorCode = -20
	CodeFileUnexpectedEOF     ErrorCode = -21

	// Structural failures classifying a single line.
	CodeParseBadKeyword ErrorCode = -22
	CodeParseBadRegex   ErrorCode = -23
	CodeParseNumber     ErrorCode = -24

	// Semantic failures while building a record from classified lines.
	CodeReadDataArrayOverIndex ErrorCode = -25
	CodeReadVarDefinedTwice    ErrorCode = -26
	CodeReadSingleUseTwice     ErrorCode = -27
	CodeReadOutOfOrderKeyword  ErrorCode = -28
	CodeReadLineError          ErrorCode = -29
	CodeReadIO                 ErrorCode = -30
	CodeReadNoVersion          ErrorCode = -31
	CodeReadNoName             ErrorCode = -32
	CodeReadNoVar              ErrorCode = -33
	CodeReadNoData             ErrorCode = -34
	CodeReadVarAndDataLengths  ErrorCode = -35

	// Write-time validation and sink failures.
	CodeWriteNoVersion    ErrorCode = -36
	CodeWriteNoName       ErrorCode = -37
	CodeWriteNoDataName   ErrorCode = -38
	CodeWriteNoDataFormat ErrorCode = -39
	CodeWriteIO           ErrorCode = -40

	CodeNullByte         ErrorCode = -41
	CodeIndexOutOfBounds ErrorCode = -42
)

// Describe returns the human-readable description of a code.
func (c ErrorCode) Describe() string {
	switch c {
	case CodeNoError:
		return "No error"
	case CodeNullArgument:
		return "Function argument is null"
	case CodeInvalidUTF8:
		return "Invalid UTF-8 character found in string"
	case CodeFileNotFound:
		return "File not found"
	case CodeFilePermissionDenied:
		return "File permission denied"
	case CodeFileConnectionRefused:
		return "File connection refused"
	case CodeFileConnectionReset:
		return "File connection reset"
	case CodeFileConnectionAborted:
		return "File connection aborted"
	case CodeFileNotConnected:
		return "Connection to file failed"
	case CodeFileAddrInUse:
		return "File address is already in use"
	case CodeFileAddrNotAvailable:
		return "File address is not available"
	case CodeFileBrokenPipe:
		return "Connection pipe for file is broken"
	case CodeFileAlreadyExists:
		return "File already exists"
	case CodeFileWouldBlock:
		return "File operation needs to block to complete"
	case CodeFileInvalidInput:
		return "Invalid input for file operation"
	case CodeFileInvalidData:
		return "Invalid data found during file operation"
	case CodeFileTimedOut:
		return "File operation timed out"
	case CodeFileWriteZero:
		return "File operation could not be completed"
	case CodeFileInterrupted:
		return "File operation interrupted"
	case CodeFileUnexpectedEOF:
		return "End of file was reached prematurely"
	case CodeParseBadKeyword:
		return "Keyword is not supported"
	case CodeParseBadRegex:
		return "Keyword arguments have the wrong shape"
	case CodeParseNumber:
		return "Unable to parse number"
	case CodeReadDataArrayOverIndex:
		return "Record read error due to more data than defined in header"
	case CodeReadVarDefinedTwice:
		return "Record read error due to independent variable defined twice"
	case CodeReadSingleUseTwice:
		return "Record read error due to single use keyword defined twice"
	case CodeReadOutOfOrderKeyword:
		return "Record read error due to out of order keyword"
	case CodeReadLineError:
		return "Record read error on line"
	case CodeReadIO:
		return "Record read error due to source I/O"
	case CodeReadNoVersion:
		return "Record read error due to undefined version"
	case CodeReadNoName:
		return "Record read error due to undefined name"
	case CodeReadNoVar:
		return "Record read error due to undefined independent variable"
	case CodeReadNoData:
		return "Record read error due to undefined data arrays"
	case CodeReadVarAndDataLengths:
		return "Record read error due to different lengths for independent variable and data array"
	case CodeWriteNoVersion:
		return "Record write error due to undefined version"
	case CodeWriteNoName:
		return "Record write error due to undefined name"
	case CodeWriteNoDataName:
		return "Record write error due to missing name in one of the data arrays"
	case CodeWriteNoDataFormat:
		return "Record write error due to missing format in one of the data arrays"
	case CodeWriteIO:
		return "Record write error due to sink I/O"
	case CodeNullByte:
		return "An interior null byte was found in string"
	case CodeIndexOutOfBounds:
		return "Index is outside of acceptable bounds"
	default:
		return "Unknown error"
	}
}

// ParseError reports a line that could not be classified: the leading
// token is unknown, the arguments have the wrong shape, or a numeric
// token is not a valid float literal.
type ParseError struct {
	Kind ErrorCode // CodeParseBadKeyword, CodeParseBadRegex or CodeParseNumber
	Line string    // the offending line, trimmed
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case CodeParseNumber:
		return fmt.Sprintf("citi: cannot parse number in %q", e.Line)
	case CodeParseBadRegex:
		return fmt.Sprintf("citi: malformed arguments in %q", e.Line)
	default:
		return fmt.Sprintf("citi: keyword %q is not supported", e.Line)
	}
}

// LineError wraps a failure with the one-based line number it occurred on.
type LineError struct {
	LineNo int
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("citi: line %d: %v", e.LineNo, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// EncodingError reports invalid text in the line stream.
type EncodingError struct {
	Kind ErrorCode // CodeInvalidUTF8 or CodeNullByte
}

func (e *EncodingError) Error() string {
	if e.Kind == CodeNullByte {
		return "citi: embedded null byte in line"
	}
	return "citi: invalid UTF-8 in line"
}

// ReadError reports a semantic failure while building a record:
// ordering and single-use violations, over-indexed data, missing
// required fields at finalization, length disagreement, or a failure
// of the underlying line source.
type ReadError struct {
	Kind    ErrorCode
	Keyword string // canonical text of the offending keyword, when relevant
	Array   int    // data array index for length failures
	Want    int    // expected length
	Got     int    // actual length
	Err     error  // underlying source error for CodeReadIO
}

func (e *ReadError) Error() string {
	switch e.Kind {
	case CodeReadDataArrayOverIndex:
		return "citi: more data than defined in header"
	case CodeReadVarDefinedTwice:
		return "citi: independent variable defined twice"
	case CodeReadSingleUseTwice:
		return fmt.Sprintf("citi: single use keyword %q defined twice", e.Keyword)
	case CodeReadOutOfOrderKeyword:
		return fmt.Sprintf("citi: keyword %q is out of order", e.Keyword)
	case CodeReadIO:
		return fmt.Sprintf("citi: read: %v", e.Err)
	case CodeReadNoVersion:
		return "citi: version is not defined"
	case CodeReadNoName:
		return "citi: name is not defined"
	case CodeReadNoVar:
		return "citi: independent variable is not defined"
	case CodeReadNoData:
		return "citi: no data arrays are defined"
	case CodeReadVarAndDataLengths:
		return fmt.Sprintf("citi: independent variable and data array %d have different lengths (%d != %d)",
			e.Array, e.Want, e.Got)
	default:
		return "citi: read error"
	}
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a write-time validation failure or a sink failure.
type WriteError struct {
	Kind  ErrorCode
	Array int   // data array index for per-array failures
	Err   error // underlying sink error for CodeWriteIO
}

func (e *WriteError) Error() string {
	switch e.Kind {
	case CodeWriteNoVersion:
		return "citi: write: version is empty"
	case CodeWriteNoName:
		return "citi: write: name is empty"
	case CodeWriteNoDataName:
		return fmt.Sprintf("citi: write: data array %d has no name", e.Array)
	case CodeWriteNoDataFormat:
		return fmt.Sprintf("citi: write: data array %d has no format", e.Array)
	case CodeWriteIO:
		return fmt.Sprintf("citi: write: %v", e.Err)
	default:
		return "citi: write error"
	}
}

func (e *WriteError) Unwrap() error { return e.Err }

// IndexError reports an index-based accessor called with an index that
// does not exist. The target is left unmodified.
type IndexError struct {
	What  string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("citi: %s index %d out of bounds (len=%d)", e.What, e.Index, e.Len)
}

// LengthMismatchError reports real and imaginary sequences of different
// lengths handed to AppendDataArray.
type LengthMismatchError struct {
	Real int
	Imag int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("citi: real and imaginary sequences have different lengths (%d != %d)", e.Real, e.Imag)
}

// CodeOf maps any error produced by this package, including wrapped
// source and sink failures, to its ErrorCode. A nil error maps to
// CodeNoError; an unrecognized error maps to CodeUnknown.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeNoError
	}

	var (
		pe *ParseError
		le *LineError
		ee *EncodingError
		re *ReadError
		we *WriteError
		ie *IndexError
		lm *LengthMismatchError
	)
	switch {
	case errors.As(err, &pe):
		return pe.Kind
	case errors.As(err, &ee):
		return ee.Kind
	case errors.As(err, &le):
		return CodeOf(le.Err)
	case errors.As(err, &re):
		if re.Kind == CodeReadIO && re.Err != nil {
			if c := ioCode(re.Err); c != CodeUnknown {
				return c
			}
		}
		return re.Kind
	case errors.As(err, &we):
		if we.Kind == CodeWriteIO && we.Err != nil {
			if c := ioCode(we.Err); c != CodeUnknown {
				return c
			}
		}
		return we.Kind
	case errors.As(err, &ie):
		return CodeIndexOutOfBounds
	case errors.As(err, &lm):
		return CodeReadVarAndDataLengths
	}

	if c := ioCode(err); c != CodeUnknown {
		return c
	}
	return CodeUnknown
}

// ioCode maps standard I/O failures to their file codes.
func ioCode(err error) ErrorCode {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CodeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		return CodeFilePermissionDenied
	case errors.Is(err, fs.ErrExist):
		return CodeFileAlreadyExists
	case errors.Is(err, fs.ErrInvalid):
		return CodeFileInvalidInput
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return CodeFileUnexpectedEOF
	case errors.Is(err, io.ErrShortWrite):
		return CodeFileWriteZero
	case errors.Is(err, syscall.EPIPE):
		return CodeFileBrokenPipe
	case errors.Is(err, syscall.EINTR):
		return CodeFileInterrupted
	case errors.Is(err, syscall.ECONNREFUSED):
		return CodeFileConnectionRefused
	case errors.Is(err, syscall.ECONNRESET):
		return CodeFileConnectionReset
	case errors.Is(err, syscall.ECONNABORTED):
		return CodeFileConnectionAborted
	case errors.Is(err, syscall.ENOTCONN):
		return CodeFileNotConnected
	case errors.Is(err, syscall.EADDRINUSE):
		return CodeFileAddrInUse
	case errors.Is(err, syscall.EADDRNOTAVAIL):
		return CodeFileAddrNotAvailable
	case errors.Is(err, syscall.EAGAIN):
		return CodeFileWouldBlock
	case os.IsTimeout(err):
		return CodeFileTimedOut
	default:
		return CodeUnknown
	}
}
