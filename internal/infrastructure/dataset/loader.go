// Package dataset reads the flat CSV inputs of the DiazoScreen pipeline: the
// labeled reference set, the unlabeled query set, and the compound→strain
// membership table.  The package is pure data plumbing; all classification
// semantics live in the domain and application layers.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/turtacn/DiazoScreen/internal/application/classifier"
	"github.com/turtacn/DiazoScreen/internal/domain/compound"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// Expected column names, matched case-insensitively against the header row.
const (
	ColumnName     = "name"
	ColumnSMILES   = "smiles"
	ColumnLabel    = "label"
	ColumnCompound = "compound"
	ColumnStrain   = "strain"
)

// ─────────────────────────────────────────────────────────────────────────────
// Labeled reference set
// ─────────────────────────────────────────────────────────────────────────────

// ReadLabeledSet parses a labeled reference table with columns
// name,smiles,label (label ∈ {0,1}).  Row order is preserved; duplicate names
// keep the first occurrence per LabeledSet semantics.
func ReadLabeledSet(r io.Reader) (*compound.LabeledSet, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	nameIdx, err := columnIndex(header, ColumnName)
	if err != nil {
		return nil, err
	}
	smilesIdx, err := columnIndex(header, ColumnSMILES)
	if err != nil {
		return nil, err
	}
	labelIdx, err := columnIndex(header, ColumnLabel)
	if err != nil {
		return nil, err
	}

	rows := make([]compound.LabeledCompound, 0, len(records))
	for i, rec := range records {
		raw := strings.TrimSpace(rec[labelIdx])
		v, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return nil, errors.Newf(errors.CodeDatasetLabelInvalid,
				"row %d: label %q is not an integer", i+2, raw)
		}
		label, labelErr := ctypes.ParseLabel(v)
		if labelErr != nil {
			return nil, errors.Wrapf(labelErr, errors.CodeDatasetLabelInvalid, "row %d", i+2)
		}
		rows = append(rows, compound.LabeledCompound{
			Compound: compound.Compound{
				Name:   strings.TrimSpace(rec[nameIdx]),
				SMILES: strings.TrimSpace(rec[smilesIdx]),
			},
			Label: label,
		})
	}
	return compound.NewLabeledSet(rows)
}

// LoadLabeledSet reads a labeled reference table from a file.
func LoadLabeledSet(path string) (*compound.LabeledSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDatasetReadFailed, "open labeled set %s", path)
	}
	defer f.Close()
	return ReadLabeledSet(f)
}

// ─────────────────────────────────────────────────────────────────────────────
// Unlabeled query set
// ─────────────────────────────────────────────────────────────────────────────

// ReadQueries parses an unlabeled query table with columns name,smiles.
func ReadQueries(r io.Reader) ([]compound.Compound, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	nameIdx, err := columnIndex(header, ColumnName)
	if err != nil {
		return nil, err
	}
	smilesIdx, err := columnIndex(header, ColumnSMILES)
	if err != nil {
		return nil, err
	}

	queries := make([]compound.Compound, 0, len(records))
	for i, rec := range records {
		c := compound.Compound{
			Name:   strings.TrimSpace(rec[nameIdx]),
			SMILES: strings.TrimSpace(rec[smilesIdx]),
		}
		if err := c.Validate(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeDatasetParseFailed, "row %d", i+2)
		}
		queries = append(queries, c)
	}
	return queries, nil
}

// LoadQueries reads an unlabeled query table from a file.
func LoadQueries(path string) ([]compound.Compound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDatasetReadFailed, "open query set %s", path)
	}
	defer f.Close()
	return ReadQueries(f)
}

// ─────────────────────────────────────────────────────────────────────────────
// Compound → strain membership
// ─────────────────────────────────────────────────────────────────────────────

// ReadMembership parses a compound→strain membership table with columns
// compound,strain.  The relation is many-to-many and rows are returned as-is;
// the aggregator collapses duplicates.
func ReadMembership(r io.Reader) ([]classifier.MembershipRow, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	compoundIdx, err := columnIndex(header, ColumnCompound)
	if err != nil {
		return nil, err
	}
	strainIdx, err := columnIndex(header, ColumnStrain)
	if err != nil {
		return nil, err
	}

	rows := make([]classifier.MembershipRow, 0, len(records))
	for i, rec := range records {
		row := classifier.MembershipRow{
			Compound: strings.TrimSpace(rec[compoundIdx]),
			Strain:   strings.TrimSpace(rec[strainIdx]),
		}
		if row.Compound == "" || row.Strain == "" {
			return nil, errors.Newf(errors.CodeDatasetParseFailed,
				"row %d: membership rows need both compound and strain", i+2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadMembership reads a membership table from a file.
func LoadMembership(path string) ([]classifier.MembershipRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDatasetReadFailed, "open membership table %s", path)
	}
	defer f.Close()
	return ReadMembership(f)
}

// ─────────────────────────────────────────────────────────────────────────────
// Internals
// ─────────────────────────────────────────────────────────────────────────────

// readTable consumes a CSV stream into a header row and data records.  The
// csv reader enforces rectangular rows against the header width.
func readTable(r io.Reader) ([][]string, []string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.New(errors.CodeDatasetParseFailed, "input is empty, expected a header row")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeDatasetParseFailed, "read header row")
	}

	var records [][]string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.CodeDatasetParseFailed, "row %d", line)
		}
		records = append(records, rec)
	}
	return records, header, nil
}

// columnIndex resolves a column by case-insensitive header match.
func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, errors.Newf(errors.CodeDatasetParseFailed, "header has no %q column", name)
}
