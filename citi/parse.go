package citi

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// readerState tracks which section of the file the parser is inside.
type readerState uint8

const (
	stateVersion readerState = iota // before the CITIFILE line
	stateHeader                     // between blocks, keyword lines expected
	stateVarList                    // inside VAR_LIST_BEGIN .. VAR_LIST_END
	stateSegList                    // inside SEG_LIST_BEGIN .. SEG_LIST_END
	stateData                       // inside BEGIN .. END
)

// Reader parses one record from a stream. Parsing is all-or-nothing:
// the first classification, ordering or finalization failure aborts
// the read and no partial Record escapes.
type Reader struct {
	sc  *bufio.Scanner
	log *zap.Logger

	rec      *Record
	state    readerState
	lineNo   int
	declared int // VAR length argument
	blockIdx int // data array currently being filled

	hasVersion  bool
	hasName     bool
	varDeclared bool
	varListRead bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLogger attaches a logger for per-line diagnostics. The default
// is a no-op logger.
func WithLogger(log *zap.Logger) ReaderOption {
	return func(r *Reader) { r.log = log }
}

// NewReader returns a Reader consuming from r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	rd := &Reader{
		sc:  bufio.NewScanner(r),
		log: zap.NewNop(),
		rec: NewRecord(),
	}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Read consumes the whole stream and returns the parsed record.
func (r *Reader) Read() (*Record, error) {
	for r.sc.Scan() {
		r.lineNo++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		if err := checkEncoding(line); err != nil {
			return nil, &LineError{LineNo: r.lineNo, Err: err}
		}
		kw, err := ClassifyLine(line)
		if err != nil {
			return nil, &LineError{LineNo: r.lineNo, Err: err}
		}
		if err := r.process(kw); err != nil {
			return nil, &LineError{LineNo: r.lineNo, Err: err}
		}
	}
	if err := r.sc.Err(); err != nil {
		return nil, &ReadError{Kind: CodeReadIO, Err: err}
	}
	if r.state != stateHeader && r.state != stateVersion {
		return nil, &ReadError{Kind: CodeReadIO, Err: io.ErrUnexpectedEOF}
	}
	if err := r.finalize(); err != nil {
		return nil, err
	}
	return r.rec, nil
}

// checkEncoding rejects lines that are not clean UTF-8 text.
func checkEncoding(line string) error {
	if !utf8.ValidString(line) {
		return &EncodingError{Kind: CodeInvalidUTF8}
	}
	if strings.ContainsRune(line, 0) {
		return &EncodingError{Kind: CodeNullByte}
	}
	return nil
}

func (r *Reader) process(kw Keyword) error {
	switch r.state {
	case stateVersion:
		if kw.Kind != KwCITIFile {
			return outOfOrder(kw)
		}
		r.rec.Version = kw.Value
		r.hasVersion = true
		r.state = stateHeader
		r.log.Debug("version read", zap.String("version", kw.Value))
		return nil
	case stateHeader:
		return r.processHeader(kw)
	case stateVarList:
		return r.processVarList(kw)
	case stateSegList:
		return r.processSegList(kw)
	case stateData:
		return r.processData(kw)
	}
	return outOfOrder(kw)
}

func (r *Reader) processHeader(kw Keyword) error {
	switch kw.Kind {
	case KwCITIFile:
		return &ReadError{Kind: CodeReadSingleUseTwice, Keyword: kw.Kind.String()}
	case KwName:
		if r.hasName {
			return &ReadError{Kind: CodeReadSingleUseTwice, Keyword: kw.Kind.String()}
		}
		r.rec.Name = kw.Name
		r.hasName = true
		return nil
	case KwComment:
		if !r.hasName || r.varDeclared {
			return outOfOrder(kw)
		}
		r.rec.AppendComment(kw.Value)
		return nil
	case KwConstant:
		if !r.hasName || r.varDeclared {
			return outOfOrder(kw)
		}
		r.rec.AppendConstant(kw.Name, kw.Value)
		return nil
	case KwDeviceHeader:
		if !r.hasName || r.varDeclared {
			return outOfOrder(kw)
		}
		r.rec.AppendDevice(kw.Name)
		return nil
	case KwDeviceEntry:
		if !r.hasName || r.varDeclared {
			return outOfOrder(kw)
		}
		r.appendDeviceEntry(kw.Name, kw.Value)
		return nil
	case KwVar:
		if !r.hasName {
			return outOfOrder(kw)
		}
		if r.varDeclared {
			return &ReadError{Kind: CodeReadVarDefinedTwice, Keyword: kw.Name}
		}
		r.rec.Var = Var{Name: kw.Name, Format: kw.Format}
		r.declared = kw.Length
		r.varDeclared = true
		r.log.Debug("var declared",
			zap.String("name", kw.Name),
			zap.Int("length", kw.Length))
		return nil
	case KwVarListBegin:
		if !r.varDeclared {
			return outOfOrder(kw)
		}
		if r.varListRead {
			return &ReadError{Kind: CodeReadVarDefinedTwice, Keyword: r.rec.Var.Name}
		}
		r.state = stateVarList
		return nil
	case KwSegListBegin:
		if !r.varDeclared {
			return outOfOrder(kw)
		}
		if r.varListRead {
			return &ReadError{Kind: CodeReadVarDefinedTwice, Keyword: r.rec.Var.Name}
		}
		r.state = stateSegList
		return nil
	case KwData:
		if !r.varDeclared {
			return outOfOrder(kw)
		}
		r.rec.Data = append(r.rec.Data, DataArray{Name: kw.Name, Format: kw.Format})
		return nil
	case KwBegin:
		if r.blockIdx >= len(r.rec.Data) {
			return outOfOrder(kw)
		}
		r.state = stateData
		return nil
	}
	return outOfOrder(kw)
}

// appendDeviceEntry routes an entry line to the open device. An entry
// whose name matches the last device continues it; any other name
// opens a new device implicitly.
func (r *Reader) appendDeviceEntry(name, entry string) {
	n := len(r.rec.Devices)
	if n == 0 || r.rec.Devices[n-1].Name != name {
		n = r.rec.AppendDevice(name) + 1
	}
	r.rec.Devices[n-1].Entries = append(r.rec.Devices[n-1].Entries, entry)
}

func (r *Reader) processVarList(kw Keyword) error {
	switch kw.Kind {
	case KwVarListItem:
		r.rec.Var.Values = append(r.rec.Var.Values, kw.Real)
		return nil
	case KwVarListEnd:
		r.varListRead = true
		r.state = stateHeader
		return nil
	}
	return outOfOrder(kw)
}

func (r *Reader) processSegList(kw Keyword) error {
	switch kw.Kind {
	case KwSegItem:
		r.rec.Var.Seq(kw.Real, kw.Imag, kw.Length)
		return nil
	case KwSegListEnd:
		r.varListRead = true
		r.state = stateHeader
		return nil
	}
	return outOfOrder(kw)
}

func (r *Reader) processData(kw Keyword) error {
	switch kw.Kind {
	case KwDataPair:
		arr := &r.rec.Data[r.blockIdx]
		if exp := r.expectedLength(); exp > 0 && len(arr.Samples) >= exp {
			return &ReadError{Kind: CodeReadDataArrayOverIndex, Array: r.blockIdx}
		}
		arr.AppendSample(kw.Real, kw.Imag)
		return nil
	case KwEnd:
		r.log.Debug("data block closed",
			zap.Int("array", r.blockIdx),
			zap.Int("samples", len(r.rec.Data[r.blockIdx].Samples)))
		r.blockIdx++
		r.state = stateHeader
		return nil
	}
	return outOfOrder(kw)
}

// expectedLength is the sample count every data array must carry: the
// variable's value count when values were read, the declared VAR
// length otherwise.
func (r *Reader) expectedLength() int {
	if n := len(r.rec.Var.Values); n > 0 {
		return n
	}
	return r.declared
}

func outOfOrder(kw Keyword) error {
	return &ReadError{Kind: CodeReadOutOfOrderKeyword, Keyword: kw.Kind.String()}
}

// ReadRecord parses one record from r.
func ReadRecord(r io.Reader, opts ...ReaderOption) (*Record, error) {
	return NewReader(r, opts...).Read()
}

// ParseString parses one record held in memory.
func ParseString(s string, opts ...ReaderOption) (*Record, error) {
	return ReadRecord(strings.NewReader(s), opts...)
}

// ReadFile opens and parses the file at path. Open failures map to
// the file-level error codes via CodeOf.
func ReadFile(path string, opts ...ReaderOption) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Kind: CodeReadIO, Err: err}
	}
	defer f.Close()
	return ReadRecord(f, opts...)
}
