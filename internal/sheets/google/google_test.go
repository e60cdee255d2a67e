package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ports "mealplan/internal/sheets"
)

func TestNewExporter_MissingSpreadsheetID(t *testing.T) {
	_, err := NewExporter(context.Background(), Config{CredentialsJSON: `{}`})
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Fatalf("expected missing spreadsheet error, got %v", err)
	}
}

func TestNewExporter_MissingCredentials(t *testing.T) {
	_, err := NewExporter(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(keyFile, []byte(`{"from":"file"}`), 0600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	tests := []struct {
		name    string
		inline  string
		file    string
		want    string
		wantErr string
	}{
		{"inline wins", ` {"from":"inline"} `, keyFile, `{"from":"inline"}`, ""},
		{"file", "", keyFile, `{"from":"file"}`, ""},
		{"missing file", "", filepath.Join(dir, "nope.json"), "", "read service account file"},
		{"none", "", "", "", "missing service account credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadCredentials(ctx, tt.inline, tt.file)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected %q error, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || string(got) != tt.want {
				t.Fatalf("loadCredentials = %q, %v", got, err)
			}
		})
	}
}

func TestExportWithoutService(t *testing.T) {
	e := &Exporter{spreadsheetID: "sheet", sheetName: "Grocery"}
	if err := e.ExportGroceryList(context.Background(), ports.Snapshot{}); err == nil {
		t.Fatalf("expected error for uninitialized service")
	}
}
