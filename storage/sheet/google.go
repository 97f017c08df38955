package sheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// googleValues 把 Values 契约落到 Google Sheets values API 上。
type googleValues struct {
	svc           *sheets.Service
	spreadsheetID string
}

func newGoogleValues(ctx context.Context, spreadsheetID, credentialsJSON string) (*googleValues, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &googleValues{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (g *googleValues) Get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("values get %q: %w", rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (g *googleValues) Append(ctx context.Context, rng string, rows [][]string) error {
	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, rng, toValueRange(rows)).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("values append %q: %w", rng, err)
	}
	return nil
}

func (g *googleValues) Update(ctx context.Context, rng string, rows [][]string) error {
	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, rng, toValueRange(rows)).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("values update %q: %w", rng, err)
	}
	return nil
}

func toValueRange(rows [][]string) *sheets.ValueRange {
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		values = append(values, cells)
	}
	return &sheets.ValueRange{Values: values}
}
