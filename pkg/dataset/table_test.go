package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicateColumns(t *testing.T) {
	_, err := New("patient_id", "Patient_ID")
	require.Error(t, err)
}

func TestColumnLookupIsCaseInsensitive(t *testing.T) {
	table, err := New("Patient_ID", "Age")
	require.NoError(t, err)
	require.NoError(t, table.AppendRow(String("5"), String("12")))

	v, err := table.Value(0, "patient_id")
	require.NoError(t, err)
	assert.Equal(t, "5", v.Text())
}

func TestMissingColumnError(t *testing.T) {
	table, err := New("patient_id", "age")
	require.NoError(t, err)

	_, err = table.ColumnIndex("cluster")
	require.Error(t, err)

	var colErr *ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "cluster", colErr.Column)
	assert.Contains(t, err.Error(), "column 'cluster' not found")
	assert.Contains(t, err.Error(), "patient_id")
}

func TestAppendRowArity(t *testing.T) {
	table, err := New("a", "b")
	require.NoError(t, err)
	assert.Error(t, table.AppendRow(String("1")))
}

func TestValueParsing(t *testing.T) {
	f, err := String("4.5").Float()
	require.NoError(t, err)
	assert.Equal(t, 4.5, f)

	n, err := String("2.0").Int()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = String("2.5").Int()
	assert.Error(t, err)

	_, err = Null().Float()
	assert.Error(t, err)

	ts, err := String("2001-01-01").Time()
	require.NoError(t, err)
	assert.Equal(t, 2001, ts.Year())
}

func TestCloneIsIndependent(t *testing.T) {
	table, err := New("a")
	require.NoError(t, err)
	require.NoError(t, table.AppendRow(String("x")))

	clone := table.Clone()
	require.NoError(t, clone.SetValue(0, "a", String("y")))

	v, err := table.Value(0, "a")
	require.NoError(t, err)
	assert.Equal(t, "x", v.Text())
}

func TestReadCSVFrom(t *testing.T) {
	data := "patient_id,episode_start_date,diagnosis\n5,2001-01-01,Allergy\n6,,\n"
	table, err := ReadCSVFrom(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"patient_id", "episode_start_date", "diagnosis"}, table.Columns())
	assert.Equal(t, 2, table.NumRows())

	v, err := table.Value(1, "episode_start_date")
	require.NoError(t, err)
	assert.True(t, v.IsNull(), "empty CSV field should load as null")
}
