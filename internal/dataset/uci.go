package dataset

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ElectricityLoadDiagrams20112014 from the UCI Machine Learning Repository:
// 370 clients, one column each, 15-minute readings in kW, comma decimals.
const (
	DatasetURL  = "https://archive.ics.uci.edu/static/public/321/electricityloaddiagrams20112014.zip"
	DatasetFile = "LD2011_2014.txt"

	timestampLayout = "2006-01-02 15:04:05"
	numClients      = 370
)

// ClientColumn maps a client id (1..370) to its dataset column name,
// e.g. 1 -> "MT_001".
func ClientColumn(id int) (string, error) {
	if id < 1 || id > numClients {
		return "", fmt.Errorf("dataset: client id %d out of range 1..%d", id, numClients)
	}
	return fmt.Sprintf("MT_%03d", id), nil
}

// Fetch downloads the dataset archive into cacheDir unless a cached
// copy already exists, and returns the archive path.
func Fetch(ctx context.Context, cacheDir string) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	path := filepath.Join(cacheDir, filepath.Base(DatasetURL))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, DatasetURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dataset download returned %s", resp.Status)
	}

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to finalize cache file: %w", err)
	}
	return path, nil
}

// LoadClient extracts one client's series from the dataset archive.
func LoadClient(archivePath string, clientID int) (*Series, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if filepath.Base(f.Name) != DatasetFile {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		defer rc.Close()
		return ParseClient(rc, clientID)
	}
	return nil, fmt.Errorf("%s not found in archive", DatasetFile)
}

// ParseClient reads the semicolon-delimited dataset from r and returns
// the series for one client. Decimal commas are converted on the fly.
func ParseClient(r io.Reader, clientID int) (*Series, error) {
	column, err := ClientColumn(clientID)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := -1
	for i, name := range header {
		if name == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("column %s not found in dataset", column)
	}

	var (
		timestamps []time.Time
		values     []float64
		row        = 1
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		ts, err := time.Parse(timestampLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("bad timestamp at row %d: %w", row, err)
		}

		v, err := strconv.ParseFloat(strings.ReplaceAll(record[col], ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value at row %d column %s: %w", row, column, err)
		}

		timestamps = append(timestamps, ts)
		values = append(values, v)
		row++
	}

	return NewSeries(timestamps, values)
}
