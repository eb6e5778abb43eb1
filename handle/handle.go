// Package handle exposes the record engine through opaque integer
// handles, the surface used by foreign-function and scripting
// bindings. Records live in a process-wide registry keyed by handle;
// callers never see a pointer.
//
// Failures are reported in-band: accessors return a zero value plus a
// false ok (or -1 for counts), and the failure's code is parked in a
// one-deep slot read with LastErrorCode. Reading the slot clears it.
// The slot exists only at this boundary; the citi package itself
// reports every failure on the call that caused it.
package handle

import (
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Neumenon/citi/citi"
)

// Handle identifies one registered record. The zero handle is never
// issued and always invalid.
type Handle uint64

var (
	mu       sync.Mutex
	records  = make(map[Handle]*citi.Record)
	nextID   Handle = 1
	lastCode citi.ErrorCode
)

// fail parks a failure code. Caller must hold mu.
func fail(code citi.ErrorCode) {
	lastCode = code
}

// lookup resolves a handle. Caller must hold mu.
func lookup(h Handle) (*citi.Record, bool) {
	rec, ok := records[h]
	if !ok {
		fail(citi.CodeNullArgument)
	}
	return rec, ok
}

// checkString validates an incoming string. Caller must hold mu.
func checkString(s string) bool {
	if !utf8.ValidString(s) {
		fail(citi.CodeInvalidUTF8)
		return false
	}
	if strings.ContainsRune(s, 0) {
		fail(citi.CodeNullByte)
		return false
	}
	return true
}

func register(rec *citi.Record) Handle {
	h := nextID
	nextID++
	records[h] = rec
	return h
}

// LastErrorCode returns the code of the most recent failure and
// clears the slot. It returns CodeNoError when no failure is pending.
func LastErrorCode() citi.ErrorCode {
	mu.Lock()
	defer mu.Unlock()
	c := lastCode
	lastCode = citi.CodeNoError
	return c
}

// DescribeError returns the human-readable description of a code.
func DescribeError(code citi.ErrorCode) string {
	return code.Describe()
}

// Default registers an empty record and returns its handle.
func Default() Handle {
	mu.Lock()
	defer mu.Unlock()
	return register(citi.NewRecord())
}

// Read parses a record from r and registers it. It returns the zero
// handle on failure.
func Read(r io.Reader) Handle {
	rec, err := citi.ReadRecord(r)
	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		fail(citi.CodeOf(err))
		return 0
	}
	return register(rec)
}

// ReadFile parses the file at path and registers the record. It
// returns the zero handle on failure.
func ReadFile(path string) Handle {
	mu.Lock()
	ok := checkString(path)
	mu.Unlock()
	if !ok {
		return 0
	}
	rec, err := citi.ReadFile(path)
	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		fail(citi.CodeOf(err))
		return 0
	}
	return register(rec)
}

// Destroy removes a record from the registry. Destroying a handle that
// was never issued or was already destroyed parks CodeNullArgument.
func Destroy(h Handle) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := records[h]; !ok {
		fail(citi.CodeNullArgument)
		return
	}
	delete(records, h)
}

// Write serializes the record behind h to w.
func Write(h Handle, w io.Writer) bool {
	mu.Lock()
	rec, ok := lookup(h)
	mu.Unlock()
	if !ok {
		return false
	}
	if err := citi.WriteRecord(w, rec); err != nil {
		mu.Lock()
		fail(citi.CodeOf(err))
		mu.Unlock()
		return false
	}
	return true
}

// WriteFile serializes the record behind h to a new file at path.
func WriteFile(h Handle, path string) bool {
	mu.Lock()
	rec, ok := lookup(h)
	if ok {
		ok = checkString(path)
	}
	mu.Unlock()
	if !ok {
		return false
	}
	if err := citi.WriteFile(path, rec); err != nil {
		mu.Lock()
		fail(citi.CodeOf(err))
		mu.Unlock()
		return false
	}
	return true
}

// GetVersion returns the record's version tag.
func GetVersion(h Handle) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	return rec.Version, true
}

// SetVersion replaces the record's version tag.
func SetVersion(h Handle, version string) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok || !checkString(version) {
		return false
	}
	rec.Version = version
	return true
}

// GetName returns the record's name.
func GetName(h Handle) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	return rec.Name, true
}

// SetName replaces the record's name.
func SetName(h Handle, name string) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok || !checkString(name) {
		return false
	}
	rec.Name = name
	return true
}

// CommentCount returns the number of comments, or -1 on failure.
func CommentCount(h Handle) int {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return -1
	}
	return len(rec.Comments)
}

// Comment returns the comment at idx.
func Comment(h Handle, idx int) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	if idx < 0 || idx >= len(rec.Comments) {
		fail(citi.CodeIndexOutOfBounds)
		return "", false
	}
	return rec.Comments[idx], true
}

// AppendComment appends one comment line.
func AppendComment(h Handle, comment string) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok || !checkString(comment) {
		return false
	}
	rec.AppendComment(comment)
	return true
}

// DeviceCount returns the number of devices, or -1 on failure.
func DeviceCount(h Handle) int {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return -1
	}
	return len(rec.Devices)
}

// DeviceName returns the name of the device at idx.
func DeviceName(h Handle, idx int) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	d, err := rec.DeviceAt(idx)
	if err != nil {
		fail(citi.CodeOf(err))
		return "", false
	}
	return d.Name, true
}

// AppendDevice appends an empty device and returns its index, or -1
// on failure.
func AppendDevice(h Handle, name string) int {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok || !checkString(name) {
		return -1
	}
	return rec.AppendDevice(name)
}

// DeviceEntryCount returns the number of entries in the device at
// idx, or -1 on failure.
func DeviceEntryCount(h Handle, idx int) int {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return -1
	}
	d, err := rec.DeviceAt(idx)
	if err != nil {
		fail(citi.CodeOf(err))
		return -1
	}
	return len(d.Entries)
}

// DeviceEntry returns entry j of the device at idx.
func DeviceEntry(h Handle, idx, j int) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	d, err := rec.DeviceAt(idx)
	if err != nil {
		fail(citi.CodeOf(err))
		return "", false
	}
	if j < 0 || j >= len(d.Entries) {
		fail(citi.CodeIndexOutOfBounds)
		return "", false
	}
	return d.Entries[j], true
}

// AppendEntryToDevice appends an entry to the device at idx.
func AppendEntryToDevice(h Handle, idx int, entry string) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok || !checkString(entry) {
		return false
	}
	if err := rec.AppendEntryToDevice(idx, entry); err != nil {
		fail(citi.CodeOf(err))
		return false
	}
	return true
}

// ConstantCount returns the number of constants, or -1 on failure.
func ConstantCount(h Handle) int {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return -1
	}
	return len(rec.Constants)
}

// ConstantName returns the name of the constant at idx.
func ConstantName(h Handle, idx int) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	if idx < 0 || idx >= len(rec.Constants) {
		fail(citi.CodeIndexOutOfBounds)
		return "", false
	}
	return rec.Constants[idx].Name, true
}

// ConstantValue returns the value of the constant at idx.
func ConstantValue(h Handle, idx int) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	if idx < 0 || idx >= len(rec.Constants) {
		fail(citi.CodeIndexOutOfBounds)
		return "", false
	}
	return rec.Constants[idx].Value, true
}

// AppendConstant appends a named constant.
func AppendConstant(h Handle, name, value string) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok || !checkString(name) || !checkString(value) {
		return false
	}
	rec.AppendConstant(name, value)
	return true
}

// VarName returns the independent variable's name.
func VarName(h Handle) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	return rec.Var.Name, true
}

// VarFormat returns the independent variable's format label.
func VarFormat(h Handle) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	return rec.Var.Format, true
}

// VarLength returns the number of variable values, or -1 on failure.
func VarLength(h Handle) int {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return -1
	}
	return len(rec.Var.Values)
}

// VarValue returns the variable value at idx.
func VarValue(h Handle, idx int) (float64, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return 0, false
	}
	if idx < 0 || idx >= len(rec.Var.Values) {
		fail(citi.CodeIndexOutOfBounds)
		return 0, false
	}
	return rec.Var.Values[idx], true
}

// GetVarValues copies the variable values into out, which must be at
// least VarLength long.
func GetVarValues(h Handle, out []float64) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return false
	}
	if out == nil {
		fail(citi.CodeNullArgument)
		return false
	}
	if len(out) < len(rec.Var.Values) {
		fail(citi.CodeIndexOutOfBounds)
		return false
	}
	copy(out, rec.Var.Values)
	return true
}

// SetVar replaces the independent variable. The values slice is
// copied.
func SetVar(h Handle, name, format string, values []float64) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok || !checkString(name) || !checkString(format) {
		return false
	}
	rec.SetVar(name, format, values)
	return true
}

// DataArrayCount returns the number of data arrays, or -1 on failure.
func DataArrayCount(h Handle) int {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return -1
	}
	return len(rec.Data)
}

// DataArrayName returns the name of the data array at idx.
func DataArrayName(h Handle, idx int) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	d, err := rec.DataArrayAt(idx)
	if err != nil {
		fail(citi.CodeOf(err))
		return "", false
	}
	return d.Name, true
}

// DataArrayFormat returns the format label of the data array at idx.
func DataArrayFormat(h Handle, idx int) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return "", false
	}
	d, err := rec.DataArrayAt(idx)
	if err != nil {
		fail(citi.CodeOf(err))
		return "", false
	}
	return d.Format, true
}

// DataArrayLength returns the sample count of the data array at idx,
// or -1 on failure.
func DataArrayLength(h Handle, idx int) int {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return -1
	}
	d, err := rec.DataArrayAt(idx)
	if err != nil {
		fail(citi.CodeOf(err))
		return -1
	}
	return len(d.Samples)
}

// GetDataArray copies the samples of the data array at idx into the
// caller's re and im buffers, which must each be at least
// DataArrayLength long.
func GetDataArray(h Handle, idx int, re, im []float64) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok {
		return false
	}
	d, err := rec.DataArrayAt(idx)
	if err != nil {
		fail(citi.CodeOf(err))
		return false
	}
	if re == nil || im == nil {
		fail(citi.CodeNullArgument)
		return false
	}
	if len(re) < len(d.Samples) || len(im) < len(d.Samples) {
		fail(citi.CodeIndexOutOfBounds)
		return false
	}
	for i, s := range d.Samples {
		re[i] = real(s)
		im[i] = imag(s)
	}
	return true
}

// AppendDataArray appends a data array built from equal-length real
// and imaginary sequences.
func AppendDataArray(h Handle, name, format string, re, im []float64) bool {
	mu.Lock()
	defer mu.Unlock()
	rec, ok := lookup(h)
	if !ok || !checkString(name) || !checkString(format) {
		return false
	}
	if re == nil || im == nil {
		fail(citi.CodeNullArgument)
		return false
	}
	if err := rec.AppendDataArray(name, format, re, im); err != nil {
		fail(citi.CodeOf(err))
		return false
	}
	return true
}
