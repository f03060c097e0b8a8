// Package csvimport implements the contact CSV import pipeline: a
// minimal line-oriented parser, normalization of rows into contact
// drafts, and bulk persistence through a store collaborator.
package csvimport

import (
	"errors"
	"strings"
)

// Structural errors fail the whole import. Per-row defects never do;
// defective rows are skipped and reflected only in the final count.
var (
	ErrTooFewRows            = errors.New("csv must contain a header row and at least one data row")
	ErrMissingRequiredColumn = errors.New("csv must contain a company_name column")
)

// Recognized header names, matched case-sensitively. Anything else is
// ignored.
const (
	ColumnCompanyName    = "company_name"
	ColumnCompanyAddress = "company_address"
	ColumnCompanyPhone   = "company_phone"
	ColumnCompanyWebsite = "company_website"
)

// ColumnIndex holds the position of each recognized column in the
// header row, or -1 when the column is absent.
type ColumnIndex struct {
	Name    int
	Address int
	Phone   int
	Website int
}

// Document is the parsed form of an uploaded file: the resolved column
// positions and the data rows that passed structural validation.
type Document struct {
	Columns ColumnIndex
	Rows    [][]string
	// SkippedRows counts data rows dropped for having fewer fields
	// than the header.
	SkippedRows int
}

// Parse splits the raw file content into rows and validates the header.
// Blank lines are discarded before any counting happens.
func Parse(text string) (*Document, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, ErrTooFewRows
	}

	headers := parseLine(lines[0])
	columns := ColumnIndex{
		Name:    indexOf(headers, ColumnCompanyName),
		Address: indexOf(headers, ColumnCompanyAddress),
		Phone:   indexOf(headers, ColumnCompanyPhone),
		Website: indexOf(headers, ColumnCompanyWebsite),
	}
	if columns.Name == -1 {
		return nil, ErrMissingRequiredColumn
	}

	doc := &Document{Columns: columns, Rows: make([][]string, 0, len(lines)-1)}
	for _, line := range lines[1:] {
		values := parseLine(line)
		if len(values) < len(headers) {
			doc.SkippedRows++
			continue
		}
		doc.Rows = append(doc.Rows, values)
	}
	return doc, nil
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseLine splits one row on commas, honoring double quotes: inside a
// quoted field a comma is literal data. Fields are trimmed of
// surrounding whitespace. An embedded "" is NOT unescaped; it toggles
// quote mode twice and both characters are dropped, which is the
// importer's long-standing observable behavior.
func parseLine(line string) []string {
	result := make([]string, 0, 4)
	var current strings.Builder
	inQuotes := false

	for _, char := range line {
		switch {
		case char == '"':
			inQuotes = !inQuotes
		case char == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}
	result = append(result, strings.TrimSpace(current.String()))
	return result
}

func indexOf(headers []string, name string) int {
	for i, header := range headers {
		if header == name {
			return i
		}
	}
	return -1
}
