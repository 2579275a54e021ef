package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Table names double as CSV base names and workbook sheet names.
const (
	EmployeesTable    = "employees"
	SickLeaveTable    = "sick_leave"
	RecruitmentTable  = "recruitment"
	TerminationsTable = "terminations"
)

// Tables lists the source tables in load order.
var Tables = []string{EmployeesTable, SickLeaveTable, RecruitmentTable, TerminationsTable}

var (
	// ErrMissingTable indicates a source file or sheet could not be found.
	ErrMissingTable = errors.New("dataset: missing table")
	// ErrMalformed indicates a value or header that could not be parsed.
	ErrMalformed = errors.New("dataset: malformed table")
	// ErrUnsupportedSource indicates a path that is neither a directory nor an .xlsx workbook.
	ErrUnsupportedSource = errors.New("dataset: unsupported source")
)

// Load reads a dataset from a directory of CSV files or from an .xlsx workbook.
func Load(ctx context.Context, path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: stat %q: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(ctx, path)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadWorkbook(ctx, path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
}

// ResolveDir returns the directory holding the CSV files, preferring a data/
// subdirectory when it contains the employees table.
func ResolveDir(dir string) string {
	sub := filepath.Join(dir, "data")
	if _, err := os.Stat(filepath.Join(sub, EmployeesTable+".csv")); err == nil {
		return sub
	}
	return dir
}

// LoadDir parses employees.csv, sick_leave.csv, recruitment.csv and
// terminations.csv from dir (or dir/data).
func LoadDir(ctx context.Context, dir string) (*Dataset, error) {
	base := ResolveDir(dir)
	h := sha256.New()
	raw := make(map[string][][]string, len(Tables))

	for _, name := range Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := filepath.Join(base, name+".csv")
		b, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrMissingTable, file)
			}
			return nil, fmt.Errorf("dataset: read %s: %w", file, err)
		}
		writeChunk(h, name, b)

		r := csv.NewReader(bytes.NewReader(b))
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, file, err)
		}
		raw[name] = rows
	}

	ds, err := build(raw, func(name string) string { return filepath.Join(base, name+".csv") })
	if err != nil {
		return nil, err
	}
	ds.Source = base
	ds.Fingerprint = hex.EncodeToString(h.Sum(nil))
	logLoaded(ctx, ds)
	return ds, nil
}

// LoadWorkbook parses the four tables from same-named sheets of an .xlsx file.
func LoadWorkbook(ctx context.Context, path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := make(map[string]string)
	for _, s := range f.GetSheetList() {
		sheets[strings.ToLower(strings.TrimSpace(s))] = s
	}

	raw := make(map[string][][]string, len(Tables))
	for _, name := range Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet, ok := sheets[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s sheet %q", ErrMissingTable, path, name)
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: %s sheet %q: %v", ErrMalformed, path, name, err)
		}
		raw[name] = rows
	}

	ds, err := build(raw, func(name string) string { return path + "#" + name })
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	writeChunk(h, "xlsx", b)
	ds.Source = path
	ds.Fingerprint = hex.EncodeToString(h.Sum(nil))
	logLoaded(ctx, ds)
	return ds, nil
}

// Fingerprint hashes the source bytes of a dataset without parsing it. It
// matches the Fingerprint field of a dataset loaded from the same path.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("dataset: stat %q: %w", path, err)
	}
	h := sha256.New()
	if !info.IsDir() {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("dataset: read %s: %w", path, err)
		}
		writeChunk(h, "xlsx", b)
		return hex.EncodeToString(h.Sum(nil)), nil
	}
	base := ResolveDir(path)
	for _, name := range Tables {
		file := filepath.Join(base, name+".csv")
		b, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrMissingTable, file)
			}
			return "", fmt.Errorf("dataset: read %s: %w", file, err)
		}
		writeChunk(h, name, b)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeChunk(h hash.Hash, name string, b []byte) {
	_, _ = io.WriteString(h, name)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(b)
	_, _ = h.Write([]byte{0})
}

func logLoaded(ctx context.Context, ds *Dataset) {
	zerolog.Ctx(ctx).Debug().
		Str("source", ds.Source).
		Int("employees", len(ds.Employees)).
		Int("sick_leave", len(ds.SickLeave)).
		Int("recruitment", len(ds.Recruitment)).
		Int("terminations", len(ds.Terminations)).
		Msg("dataset loaded")
}

// build converts raw rows into typed tables. label names a table in errors.
func build(raw map[string][][]string, label func(string) string) (*Dataset, error) {
	ds := &Dataset{LoadedAt: time.Now()}
	var err error
	if ds.Employees, err = parseEmployees(label(EmployeesTable), raw[EmployeesTable]); err != nil {
		return nil, err
	}
	if ds.SickLeave, err = parseSickLeave(label(SickLeaveTable), raw[SickLeaveTable]); err != nil {
		return nil, err
	}
	if ds.Recruitment, err = parseRecruitment(label(RecruitmentTable), raw[RecruitmentTable]); err != nil {
		return nil, err
	}
	if ds.Terminations, err = parseTerminations(label(TerminationsTable), raw[TerminationsTable]); err != nil {
		return nil, err
	}
	ds.Index()
	return ds, nil
}
