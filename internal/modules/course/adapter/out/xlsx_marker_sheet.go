package out

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"huixue/internal/modules/course/domain"
	courseout "huixue/internal/modules/course/port/out"
)

// XLSXMarkerSheet reads video markers from a spreadsheet. The first row is a
// header; columns are id, time (seconds or m:ss), title, type, description,
// teaching message, expected answer.
type XLSXMarkerSheet struct{}

func NewXLSXMarkerSheet() courseout.MarkerSheet {
	return &XLSXMarkerSheet{}
}

func (XLSXMarkerSheet) ReadMarkers(_ context.Context, path, sheet string) ([]domain.Marker, []courseout.RowError, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var markers []domain.Marker
	var rowErrs []courseout.RowError
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if blankRow(row) {
			continue
		}
		m, err := markerFromRow(row)
		if err != nil {
			rowErrs = append(rowErrs, courseout.RowError{Row: i + 1, Err: err})
			continue
		}
		markers = append(markers, m)
	}
	return markers, rowErrs, nil
}

func markerFromRow(row []string) (domain.Marker, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	if cell(0) == "" || cell(2) == "" {
		return domain.Marker{}, fmt.Errorf("id and title are required")
	}
	t, err := parseSeconds(cell(1))
	if err != nil {
		return domain.Marker{}, err
	}
	typ := domain.MarkerType(strings.ToLower(cell(3)))
	if typ == "" {
		typ = domain.MarkerImportant
	}
	return domain.Marker{
		ID:              cell(0),
		Time:            t,
		Title:           cell(2),
		Type:            typ,
		Description:     cell(4),
		TeachingMessage: cell(5),
		ExpectedAnswer:  cell(6),
	}, nil
}

// parseSeconds accepts "95", "95.5" or "1:35".
func parseSeconds(s string) (float64, error) {
	if mins, secs, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(mins)
		if err != nil || m < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		v, err := strconv.ParseFloat(secs, 64)
		if err != nil || v < 0 || v >= 60 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		return float64(m*60) + v, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return v, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
