package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/exporter-premium/internal/report"
	"github.com/sells-group/exporter-premium/internal/table"
)

const firmsCSV = `Firm,Latitude,Longitude,Export_Dummy,Current_Total_Employment,Current_Total_Annual_Sales,NIC Classification Code,Main Manufacturing Activity
Delhi Foods,28.6139,77.2090,1,10,100,10,Food processing
Mumbai Mills,19.0760,72.8777,0,20,50,13,Cotton spinning
Kolkata Jute,22.5726,88.3639,1,30,200,13,Jute textile
Chennai Auto,13.0827,80.2707,0,40,80,29,Motor vehicle parts
Jaipur Gems,26.9124,75.7873,1,50,300,32,Jewellery manufacturing
Nagpur Steel,21.1458,79.0882,0,60,90,24,Basic metal casting
Lucknow Chikan,26.8467,80.9462,1,70,150,14,Clothing
Hyderabad Pharma,17.3850,78.4867,0,80,70,21,Pharmaceutical formulation
`

// inTempDir runs the test from an empty working directory so no config.yaml
// is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRunCommand_EndToEnd(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile("firms.csv", []byte(firmsCSV), 0o644))

	out, err := execute(t, "run",
		"--input", "firms.csv",
		"--proximity-output", "prox.csv",
		"--output", "results.csv",
		"--industry-dummies=false",
		"--employment-control=false",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Loading data from firms.csv")
	assert.Contains(t, out, "- Industry dummies: No")
	assert.Contains(t, out, "Regression Results for Current_Total_Annual_Sales:")
	assert.Contains(t, out, "Regression Results for min_distance_to_GQ:")
	assert.Contains(t, out, "Results saved to results.csv")

	prox, err := table.Load(context.Background(), filepath.Join(dir, "prox.csv"), table.Options{})
	require.NoError(t, err)
	assert.Equal(t, 8, prox.Len())
	assert.Equal(t, "Delhi", prox.Value(0, "nearest_city_to_GQ"))
	assert.Equal(t, "0", prox.Value(0, "min_distance_to_GQ"))
	assert.True(t, prox.Has("distance_to_EDFC"))

	res, err := table.Load(context.Background(), filepath.Join(dir, "results.csv"), table.Options{})
	require.NoError(t, err)
	vars, err := res.Column(report.ColDependentVariable)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Current_Total_Employment",
		"Current_Total_Annual_Sales",
		"min_distance_to_GQ",
		"distance_to_Delhi_Meerut",
		"distance_to_WDFC",
		"distance_to_EDFC",
	}, vars)
}

func TestRegressCommand_EmploymentControl(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.WriteFile("firms.csv", []byte(firmsCSV), 0o644))

	out, err := execute(t, "regress",
		"--file", "firms.csv",
		"--output", "results.csv",
		"--industry-dummies=false",
		"--employment-control=true",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "- Log employment control: Yes")
	assert.Contains(t, out, "Log Employment Coefficient:")
	assert.NotContains(t, out, "Regression Results for Current_Total_Employment:")

	res, err := table.Load(context.Background(), "results.csv", table.Options{})
	require.NoError(t, err)
	assert.True(t, res.Has(report.ColEmploymentCoef))
}

func TestRegressCommand_UnreadableInput(t *testing.T) {
	inTempDir(t)

	out, err := execute(t, "regress",
		"--file", "nope.csv",
		"--output", "results.csv",
		"--industry-dummies=false",
		"--employment-control=false",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: Could not find file 'nope.csv'")
	_, statErr := os.Stat("results.csv")
	assert.True(t, os.IsNotExist(statErr))
}

func TestRegressCommand_MissingIndustryColumn(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.WriteFile("firms.csv", []byte("Export_Dummy,Sales\n1,10\n0,5\n1,7\n"), 0o644))

	_, err := execute(t, "regress",
		"--file", "firms.csv",
		"--output", "results.csv",
		"--industry-dummies=true",
		"--employment-control=false",
	)
	require.Error(t, err)
	_, statErr := os.Stat("results.csv")
	assert.True(t, os.IsNotExist(statErr))
}

func TestClassifyCommand(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.WriteFile("firms.csv", []byte(firmsCSV), 0o644))

	out, err := execute(t, "classify", "--input", "firms.csv", "--output", "classified.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Classified 8 of 8 firms")

	res, err := table.Load(context.Background(), "classified.csv", table.Options{})
	require.NoError(t, err)
	assert.Equal(t, "10", res.Value(0, "NIC Classification Code"))
	assert.Equal(t, "Manufacture of basic metal", res.Value(5, "Classification Description"))
}

func TestProximityCommand(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.WriteFile("firms.csv", []byte(firmsCSV), 0o644))

	out, err := execute(t, "proximity", "--input", "firms.csv", "--output", "prox.xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, "Proximity data calculated and saved to prox.xlsx")

	prox, err := table.Load(context.Background(), "prox.xlsx", table.Options{})
	require.NoError(t, err)
	assert.Equal(t, 8, prox.Len())
	assert.Equal(t, "Mumbai", prox.Value(1, "nearest_city_to_GQ"))
}
