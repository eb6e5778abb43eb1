package citi

// finalize runs the end-of-stream checks that cannot be decided line
// by line: the record must carry a version, a name, a variable and at
// least one data array, and every array must match the variable's
// length.
func (r *Reader) finalize() error {
	switch {
	case !r.hasVersion:
		return &ReadError{Kind: CodeReadNoVersion}
	case !r.hasName:
		return &ReadError{Kind: CodeReadNoName}
	case !r.varDeclared:
		return &ReadError{Kind: CodeReadNoVar}
	case len(r.rec.Data) == 0:
		return &ReadError{Kind: CodeReadNoData}
	}
	expected := r.expectedLength()
	if expected == 0 {
		// a zero-length variable adapts to the first array, so the
		// remaining arrays must still agree with it
		expected = len(r.rec.Data[0].Samples)
	}
	return validateLengths(r.rec, expected)
}

// validateLengths checks each data array against the expected sample
// count.
func validateLengths(rec *Record, expected int) error {
	for i := range rec.Data {
		if got := len(rec.Data[i].Samples); got != expected {
			return &ReadError{
				Kind:  CodeReadVarAndDataLengths,
				Array: i,
				Want:  expected,
				Got:   got,
			}
		}
	}
	return nil
}

// Validate checks a record built in memory against the invariants the
// parser enforces on files: version and name present, a variable
// declared, at least one data array, and consistent lengths between
// the variable's values and every array.
func (r *Record) Validate() error {
	switch {
	case r.Version == "":
		return &ReadError{Kind: CodeReadNoVersion}
	case r.Name == "":
		return &ReadError{Kind: CodeReadNoName}
	case r.Var.Name == "":
		return &ReadError{Kind: CodeReadNoVar}
	case len(r.Data) == 0:
		return &ReadError{Kind: CodeReadNoData}
	}
	expected := len(r.Var.Values)
	if expected == 0 {
		expected = len(r.Data[0].Samples)
	}
	return validateLengths(r, expected)
}
