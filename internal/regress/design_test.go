package regress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/exporter-premium/internal/table"
)

var testCols = Columns{
	Exporter:   "Export_Dummy",
	Industry:   "NIC Classification Code",
	Employment: "Current_Total_Employment",
}

func firmTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		[]string{"Export_Dummy", "NIC Classification Code", "Current_Total_Employment", "Sales", "Wages", "Flat"},
		[][]string{
			{"1", "10", "10", "100", "abc", "5"},
			{"0", "10", "20", "50", "abc", "5"},
			{"1", "20", "30", "200", "abc", "5"},
			{"0", "20", "40", "80", "", "5"},
			{"1", "30", "50", "300", "abc", "5"},
			{"0", "30", "60", "90", "abc", "5"},
			{"1", "10", "70", "150", "abc", "5"},
			{"0", "20", "80", "70", "abc", "5"},
		},
	)
	require.NoError(t, err)
	return tbl
}

func TestLogTransform(t *testing.T) {
	floor := 1e-10
	tests := []struct {
		name string
		in   float64
		fill bool
		want float64
	}{
		{"positive", math.E, false, 1},
		{"zero floored", 0, false, math.Log(floor)},
		{"missing stays missing", math.NaN(), false, math.NaN()},
		{"missing filled", math.NaN(), true, math.Log(floor)},
		{"negative missing", -3, false, math.NaN()},
		{"negative missing with fill", -3, true, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogTransform(tt.in, floor, tt.fill)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestBuild_Baseline(t *testing.T) {
	dm, err := Build(firmTable(t), Spec{DependentVariable: "Sales"}, testCols, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{ColIntercept, "Export_Dummy"}, dm.Columns)
	assert.Equal(t, 8, dm.NumObs())
	assert.Equal(t, 2, dm.NumVars())
	assert.Equal(t, 0, dm.Dropped)
	assert.InDelta(t, math.Log(100), dm.Y[0], 1e-12)

	r, c := dm.X.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		assert.Equal(t, 1.0, dm.X.At(i, 0))
	}
}

func TestBuild_ZeroOutcomeIsFloored(t *testing.T) {
	tbl, err := table.New(
		[]string{"Export_Dummy", "Sales"},
		[][]string{{"1", "0"}, {"0", "10"}, {"1", ""}},
	)
	require.NoError(t, err)

	dm, err := Build(tbl, Spec{DependentVariable: "Sales"}, testCols, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, dm.Rows)
	assert.Equal(t, 1, dm.Dropped)
	assert.InDelta(t, math.Log(1e-10), dm.Y[0], 1e-9)
}

func TestBuild_FillMissingWithFloor(t *testing.T) {
	tbl, err := table.New(
		[]string{"Export_Dummy", "Sales"},
		[][]string{{"1", "0"}, {"0", "10"}, {"1", ""}},
	)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.FillMissingWithFloor = true
	dm, err := Build(tbl, Spec{DependentVariable: "Sales"}, testCols, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, dm.NumObs())
	assert.InDelta(t, math.Log(1e-10), dm.Y[2], 1e-9)
}

func TestBuild_MissingExporterIsZero(t *testing.T) {
	tbl, err := table.New(
		[]string{"Export_Dummy", "Sales"},
		[][]string{{"", "10"}, {"yes", "20"}, {"1", "30"}},
	)
	require.NoError(t, err)

	dm, err := Build(tbl, Spec{DependentVariable: "Sales"}, testCols, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, dm.NumObs())
	assert.Equal(t, 0.0, dm.X.At(0, 1))
	assert.Equal(t, 0.0, dm.X.At(1, 1))
	assert.Equal(t, 1.0, dm.X.At(2, 1))
}

func TestBuild_IndustryDummies(t *testing.T) {
	dm, err := Build(firmTable(t),
		Spec{DependentVariable: "Sales", Controls: Controls{IndustryDummies: true}},
		testCols, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"10", "20", "30"}, dm.IndustryCategories)
	assert.Equal(t, []string{ColIntercept, "Export_Dummy", "Industry_20", "Industry_30"}, dm.Columns)

	j := dm.ColumnIndex("Industry_20")
	require.GreaterOrEqual(t, j, 0)
	var sum float64
	for i := 0; i < dm.NumObs(); i++ {
		sum += dm.X.At(i, j)
	}
	assert.Equal(t, 3.0, sum)
}

func TestBuild_BlankIndustryCode(t *testing.T) {
	codes := []string{"15", "", "15", "  ", "22"}
	cats, names, cols := oneHot(codes)
	assert.Equal(t, []string{"15", "22", MissingIndustryCode}, cats)
	assert.Equal(t, []string{"Industry_22", "Industry_NA"}, names)
	require.Len(t, cols, 2)
	assert.Equal(t, []float64{0, 1, 0, 1, 0}, cols[1])
}

func TestBuild_SingleIndustryAddsNoDummies(t *testing.T) {
	cats, names, cols := oneHot([]string{"10", "10"})
	assert.Equal(t, []string{"10"}, cats)
	assert.Empty(t, names)
	assert.Empty(t, cols)
}

func TestBuild_EmploymentControl(t *testing.T) {
	dm, err := Build(firmTable(t),
		Spec{DependentVariable: "Sales", Controls: Controls{EmploymentControl: true}},
		testCols, DefaultOptions())
	require.NoError(t, err)

	j := dm.ColumnIndex(ColLogEmployment)
	require.Equal(t, 2, j)
	assert.InDelta(t, math.Log(10), dm.X.At(0, j), 1e-12)
}

func TestBuild_ControlsNeverAddRows(t *testing.T) {
	tbl, err := table.New(
		[]string{"Export_Dummy", "NIC Classification Code", "Current_Total_Employment", "Sales"},
		[][]string{
			{"1", "10", "5", "10"},
			{"0", "10", "", "20"},
			{"1", "20", "-1", "30"},
			{"0", "20", "7", ""},
		},
	)
	require.NoError(t, err)

	base, err := Build(tbl, Spec{DependentVariable: "Sales"}, testCols, DefaultOptions())
	require.NoError(t, err)
	full, err := Build(tbl,
		Spec{DependentVariable: "Sales", Controls: Controls{IndustryDummies: true, EmploymentControl: true}},
		testCols, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, base.NumObs())
	assert.Equal(t, 1, full.NumObs())
	assert.LessOrEqual(t, full.NumObs(), base.NumObs())
}

func TestBuild_NonNumericOutcome(t *testing.T) {
	_, err := Build(firmTable(t), Spec{DependentVariable: "Wages"}, testCols, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoObservations)
}

func TestBuild_MissingColumns(t *testing.T) {
	tbl, err := table.New([]string{"Export_Dummy", "Sales"}, [][]string{{"1", "10"}})
	require.NoError(t, err)

	tests := []struct {
		name string
		spec Spec
	}{
		{"industry", Spec{DependentVariable: "Sales", Controls: Controls{IndustryDummies: true}}},
		{"employment", Spec{DependentVariable: "Sales", Controls: Controls{EmploymentControl: true}}},
		{"dependent", Spec{DependentVariable: "Ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tbl, tt.spec, testCols, DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingColumn)
		})
	}

	noExp, err := table.New([]string{"Sales"}, [][]string{{"1"}})
	require.NoError(t, err)
	_, err = Build(noExp, Spec{DependentVariable: "Sales"}, testCols, DefaultOptions())
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestBuild_BadFloor(t *testing.T) {
	_, err := Build(firmTable(t), Spec{DependentVariable: "Sales"}, testCols, Options{LogFloor: 0})
	assert.Error(t, err)
}
