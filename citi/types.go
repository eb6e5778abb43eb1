package citi

// DefaultVersion is the version tag carried by a freshly created Record.
const DefaultVersion = "A.01.00"

// Device is an ordered group of instrument-configuration lines tagged
// with a device name. Names are not required to be unique.
type Device struct {
	Name    string
	Entries []string
}

// Constant is a named free-form header value.
type Constant struct {
	Name  string
	Value string
}

// Var is the independent variable: the swept axis (e.g. frequency)
// paired one-to-one with each data array's samples.
type Var struct {
	Name   string
	Format string
	Values []float64
}

// Seq appends number values linearly spaced from first to last.
// A count of zero appends nothing; a count of one appends first.
func (v *Var) Seq(first, last float64, number int) {
	switch {
	case number <= 0:
	case number == 1:
		v.Values = append(v.Values, first)
	default:
		delta := (last - first) / float64(number-1)
		for i := 0; i < number; i++ {
			v.Values = append(v.Values, first+float64(i)*delta)
		}
	}
}

// DataArray is one named measurement array. The format is a label only
// (e.g. RI for real/imaginary); stored samples are always decoded
// real+imaginary pairs.
type DataArray struct {
	Name    string
	Format  string
	Samples []complex128
}

// AppendSample appends one real/imaginary pair.
func (d *DataArray) AppendSample(re, im float64) {
	d.Samples = append(d.Samples, complex(re, im))
}

// Real returns the real components as a new slice.
func (d *DataArray) Real() []float64 {
	out := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		out[i] = real(s)
	}
	return out
}

// Imag returns the imaginary components as a new slice.
func (d *DataArray) Imag() []float64 {
	out := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		out[i] = imag(s)
	}
	return out
}

// Record is one CITI file in memory. It exclusively owns its child
// collections; no entity is shared across Records and children hold no
// back-reference to their owner. A Record has no internal locking:
// concurrent access to the same Record must be serialized by the
// caller. Distinct Records are fully independent.
type Record struct {
	Version   string
	Name      string
	Comments  []string
	Devices   []Device
	Constants []Constant
	Var       Var
	Data      []DataArray
}

// NewRecord returns an empty record carrying the default version tag,
// an empty name and no comments, devices, variable or data arrays.
func NewRecord() *Record {
	return &Record{Version: DefaultVersion}
}

// AppendComment appends one comment line, preserving insertion order.
func (r *Record) AppendComment(comment string) {
	r.Comments = append(r.Comments, comment)
}

// AppendDevice appends a device with no entries and returns its index.
func (r *Record) AppendDevice(name string) int {
	r.Devices = append(r.Devices, Device{Name: name})
	return len(r.Devices) - 1
}

// AppendEntryToDevice appends an entry to the device at idx.
func (r *Record) AppendEntryToDevice(idx int, entry string) error {
	if idx < 0 || idx >= len(r.Devices) {
		return &IndexError{What: "device", Index: idx, Len: len(r.Devices)}
	}
	r.Devices[idx].Entries = append(r.Devices[idx].Entries, entry)
	return nil
}

// DeviceAt returns the device at idx.
func (r *Record) DeviceAt(idx int) (*Device, error) {
	if idx < 0 || idx >= len(r.Devices) {
		return nil, &IndexError{What: "device", Index: idx, Len: len(r.Devices)}
	}
	return &r.Devices[idx], nil
}

// AppendConstant appends a named constant, preserving insertion order.
func (r *Record) AppendConstant(name, value string) {
	r.Constants = append(r.Constants, Constant{Name: name, Value: value})
}

// SetVar replaces the independent variable. The values slice is copied;
// the record keeps no reference to the caller's slice. Replacing an
// existing variable is not an error here: duplicate definition is a
// parse-time concept only.
func (r *Record) SetVar(name, format string, values []float64) {
	v := Var{Name: name, Format: format}
	if len(values) > 0 {
		v.Values = append(make([]float64, 0, len(values)), values...)
	}
	r.Var = v
}

// AppendDataArray appends a data array built from equal-length real and
// imaginary sequences. A length mismatch fails before any allocation
// or mutation.
func (r *Record) AppendDataArray(name, format string, reals, imags []float64) error {
	if len(reals) != len(imags) {
		return &LengthMismatchError{Real: len(reals), Imag: len(imags)}
	}
	samples := make([]complex128, len(reals))
	for i := range reals {
		samples[i] = complex(reals[i], imags[i])
	}
	r.Data = append(r.Data, DataArray{Name: name, Format: format, Samples: samples})
	return nil
}

// DataArrayAt returns the data array at idx.
func (r *Record) DataArrayAt(idx int) (*DataArray, error) {
	if idx < 0 || idx >= len(r.Data) {
		return nil, &IndexError{What: "data array", Index: idx, Len: len(r.Data)}
	}
	return &r.Data[idx], nil
}
