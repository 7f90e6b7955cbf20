package table

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func TestStreamCSV_Basic(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5,6\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"4", "5", "6"}, rows[2])
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := " a , b \n 1 , 2 \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestStreamCSV_Charset(t *testing.T) {
	// "Café" in windows-1252.
	input := []byte("name\nCaf\xe9\n")
	rowCh, errCh := StreamCSV(context.Background(), bytes.NewReader(input), CSVOptions{Charset: "windows-1252"})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Café", rows[1][0])
}

func TestStreamCSV_UnknownCharset(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("a\n1\n"), CSVOptions{Charset: "klingon-8"})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}

func TestReadCSV_HeaderAndRows(t *testing.T) {
	input := "Latitude,Longitude,Name\n28.6,77.2,Acme\n19.0,72.8,Beta\n"
	tbl, err := ReadCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Latitude", "Longitude", "Name"}, tbl.Header())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Beta", tbl.Value(1, "Name"))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
}

func TestLoadSave_CSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n1,\"x,y\"\n"), 0o644))

	tbl, err := Load(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.Equal(t, "x,y", tbl.Value(0, "b"))

	dst := filepath.Join(dir, "out.csv")
	require.NoError(t, Save(dst, tbl))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x,y\"\n", string(data))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
}
