package workbook

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// SheetsSource serves workbook names from Google spreadsheets, one spreadsheet per name.
type SheetsSource struct {
	srv   *sheetsv4.Service
	files map[string]string
}

func NewSheetsSource(ctx context.Context, credentialsFile string, files map[string]string) (*SheetsSource, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsv4.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, err
	}
	return &SheetsSource{srv: srv, files: files}, nil
}

func (s *SheetsSource) Rows(ctx context.Context, name string) ([][]string, error) {
	id, ok := s.files[name]
	if !ok {
		return nil, notFound("gsheets:" + name)
	}
	resp, err := s.srv.Spreadsheets.Values.Get(id, "A:Z").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet %s (%s): %w", id, name, err)
	}
	return valuesToRows(resp.Values), nil
}

func (s *SheetsSource) String() string {
	return fmt.Sprintf("gsheets:%d spreadsheets", len(s.files))
}

// valuesToRows renders API cell values the way excelize renders raw cells.
func valuesToRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		out := make([]string, len(row))
		for j, v := range row {
			switch x := v.(type) {
			case nil:
			case string:
				out[j] = x
			case float64:
				out[j] = strconv.FormatFloat(x, 'f', -1, 64)
			case bool:
				out[j] = strconv.FormatBool(x)
			default:
				out[j] = fmt.Sprint(x)
			}
		}
		rows[i] = out
	}
	return rows
}
