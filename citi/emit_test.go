package citi

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0E+00"},
		{1, "1E+00"},
		{-1, "-1E+00"},
		{1e9, "1E+09"},
		{0.086303, "8.6303E-02"},
		{-0.898651, "-8.98651E-01"},
		{-1.47980e-3, "-1.4798E-03"},
		{0.65892e-4, "6.5892E-05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in))
	}
}

func TestWriteGolden(t *testing.T) {
	rec := readFixture(t, "display_memory.cti")

	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, rec))

	want, err := os.ReadFile(filepath.Join("testdata", "display_memory_output.cti"))
	require.NoError(t, err)
	assert.Equal(t, string(want), buf.String())
}

func TestWriteValidation(t *testing.T) {
	valid := func() *Record {
		rec := NewRecord()
		rec.Name = "MEMORY"
		rec.SetVar("FREQ", "MAG", []float64{1})
		_ = rec.AppendDataArray("S", "RI", []float64{1}, []float64{2})
		return rec
	}

	tests := []struct {
		name   string
		mutate func(*Record)
		code   ErrorCode
	}{
		{"no version", func(r *Record) { r.Version = "" }, CodeWriteNoVersion},
		{"no name", func(r *Record) { r.Name = "" }, CodeWriteNoName},
		{"array without name", func(r *Record) { r.Data[0].Name = "" }, CodeWriteNoDataName},
		{"array without format", func(r *Record) { r.Data[0].Format = "" }, CodeWriteNoDataFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid()
			tt.mutate(rec)
			var buf bytes.Buffer
			err := WriteRecord(&buf, rec)
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
			assert.Zero(t, buf.Len(), "rejected record must not reach the sink")
		})
	}

	t.Run("valid record writes", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteRecord(&buf, valid()))
		assert.Contains(t, buf.String(), "VAR FREQ MAG 1\n")
	})
}

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) {
	return 0, errors.New("sink closed")
}

func TestWriteSinkFailure(t *testing.T) {
	rec := NewRecord()
	rec.Name = "MEMORY"
	rec.SetVar("FREQ", "MAG", []float64{1})
	require.NoError(t, rec.AppendDataArray("S", "RI", []float64{1}, []float64{2}))

	err := WriteRecord(failingSink{}, rec)
	require.Error(t, err)
	assert.Equal(t, CodeWriteIO, CodeOf(err))
}

func TestWriteVarLengthFallsBackToData(t *testing.T) {
	// a record parsed without an explicit value list still declares the
	// sample count on its VAR line
	rec := NewRecord()
	rec.Name = "MEMORY"
	rec.Var = Var{Name: "FREQ", Format: "MAG"}
	require.NoError(t, rec.AppendDataArray("S", "RI", []float64{1, 2, 3}, []float64{4, 5, 6}))

	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, rec))
	assert.Contains(t, buf.String(), "VAR FREQ MAG 3\n")
	assert.NotContains(t, buf.String(), "VAR_LIST_BEGIN")
}

func TestWriteFile(t *testing.T) {
	rec := NewRecord()
	rec.Name = "MEMORY"
	rec.SetVar("FREQ", "MAG", []float64{1e9})
	require.NoError(t, rec.AppendDataArray("S", "RI", []float64{0.5}, []float64{-0.5}))

	path := filepath.Join(t.TempDir(), "out.cti")
	require.NoError(t, WriteFile(path, rec))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.Data[0].Samples, got.Data[0].Samples)
}
