package citi

import (
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// formatFloat renders a value in the format's exponent convention,
// using the shortest representation that re-parses to the identical
// float64.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'E', -1, 64)
}

// Writer serializes records to a sink in canonical form.
type Writer struct {
	w   io.Writer
	log *zap.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriterLogger attaches a logger for per-record diagnostics. The
// default is a no-op logger.
func WithWriterLogger(log *zap.Logger) WriterOption {
	return func(w *Writer) { w.log = log }
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	wr := &Writer{w: w, log: zap.NewNop()}
	for _, opt := range opts {
		opt(wr)
	}
	return wr
}

// Write validates and serializes one record. Validation runs in full
// before the first byte reaches the sink, so a rejected record leaves
// the sink untouched.
func (w *Writer) Write(rec *Record) error {
	if err := checkWritable(rec); err != nil {
		return err
	}
	lines := emitLines(rec)
	w.log.Debug("writing record",
		zap.String("name", rec.Name),
		zap.Int("lines", len(lines)))
	for _, line := range lines {
		if _, err := io.WriteString(w.w, line+"\n"); err != nil {
			return &WriteError{Kind: CodeWriteIO, Err: err}
		}
	}
	return nil
}

// checkWritable rejects records that cannot produce a well-formed
// file: empty version or name, or a data array missing its name or
// format label.
func checkWritable(rec *Record) error {
	if rec.Version == "" {
		return &WriteError{Kind: CodeWriteNoVersion}
	}
	if rec.Name == "" {
		return &WriteError{Kind: CodeWriteNoName}
	}
	for i := range rec.Data {
		if rec.Data[i].Name == "" {
			return &WriteError{Kind: CodeWriteNoDataName, Array: i}
		}
		if rec.Data[i].Format == "" {
			return &WriteError{Kind: CodeWriteNoDataFormat, Array: i}
		}
	}
	return nil
}

// emitLines lays the record out in canonical order: version, name,
// comments, constants, devices, the variable declaration with its
// value list, data declarations, then one block per array.
func emitLines(rec *Record) []string {
	var lines []string
	lines = append(lines, Keyword{Kind: KwCITIFile, Value: rec.Version}.String())
	lines = append(lines, Keyword{Kind: KwName, Name: rec.Name}.String())

	for _, c := range rec.Comments {
		lines = append(lines, Keyword{Kind: KwComment, Value: c}.String())
	}
	for _, c := range rec.Constants {
		lines = append(lines, Keyword{Kind: KwConstant, Name: c.Name, Value: c.Value}.String())
	}
	for i, d := range rec.Devices {
		// A bare header line marks a device with no entries, and
		// splits adjacent devices sharing a name so they re-parse as
		// two devices rather than merging.
		if len(d.Entries) == 0 || (i > 0 && rec.Devices[i-1].Name == d.Name) {
			lines = append(lines, Keyword{Kind: KwDeviceHeader, Name: d.Name}.String())
		}
		for _, e := range d.Entries {
			lines = append(lines, Keyword{Kind: KwDeviceEntry, Name: d.Name, Value: e}.String())
		}
	}

	if rec.Var.Name != "" {
		n := len(rec.Var.Values)
		if n == 0 && len(rec.Data) > 0 {
			n = len(rec.Data[0].Samples)
		}
		lines = append(lines, Keyword{
			Kind:   KwVar,
			Name:   rec.Var.Name,
			Format: rec.Var.Format,
			Length: n,
		}.String())
	}
	if len(rec.Var.Values) > 0 {
		lines = append(lines, Keyword{Kind: KwVarListBegin}.String())
		for _, v := range rec.Var.Values {
			lines = append(lines, Keyword{Kind: KwVarListItem, Real: v}.String())
		}
		lines = append(lines, Keyword{Kind: KwVarListEnd}.String())
	}

	for i := range rec.Data {
		lines = append(lines, Keyword{
			Kind:   KwData,
			Name:   rec.Data[i].Name,
			Format: rec.Data[i].Format,
		}.String())
	}
	for i := range rec.Data {
		lines = append(lines, Keyword{Kind: KwBegin}.String())
		for _, s := range rec.Data[i].Samples {
			lines = append(lines, Keyword{Kind: KwDataPair, Real: real(s), Imag: imag(s)}.String())
		}
		lines = append(lines, Keyword{Kind: KwEnd}.String())
	}
	return lines
}

// WriteRecord serializes rec to w.
func WriteRecord(w io.Writer, rec *Record, opts ...WriterOption) error {
	return NewWriter(w, opts...).Write(rec)
}

// WriteFile serializes rec to a new file at path, replacing any
// existing file. Create failures map to the file-level error codes
// via CodeOf.
func WriteFile(path string, rec *Record, opts ...WriterOption) error {
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Kind: CodeWriteIO, Err: err}
	}
	if err := WriteRecord(f, rec, opts...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &WriteError{Kind: CodeWriteIO, Err: err}
	}
	return nil
}
