package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "valid.csv")
	if err := os.WriteFile(validFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/file.csv",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, "test file")

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateMatchFlags(t *testing.T) {
	tmpDir := t.TempDir()
	invoiceFile := filepath.Join(tmpDir, "invoices.csv")
	transactionFile := filepath.Join(tmpDir, "transactions.csv")

	invoiceContent := "id,amount,date,customer_id,customer_name\nINV-001,100.50,2024-01-15,CUST-1,Acme Corporation"
	transactionContent := "id,amount,date,description\nTXN-001,100.50,2024-01-15,Acme payment"

	if err := os.WriteFile(invoiceFile, []byte(invoiceContent), 0644); err != nil {
		t.Fatalf("failed to create invoice file: %v", err)
	}
	if err := os.WriteFile(transactionFile, []byte(transactionContent), 0644); err != nil {
		t.Fatalf("failed to create transaction file: %v", err)
	}

	setDefaults := func() {
		viper.Set("invoices", invoiceFile)
		viper.Set("transactions", transactionFile)
		viper.Set("output-format", "console")
		viper.Set("output-file", "")
		viper.Set("exact-amounts", false)
		viper.Set("amount-tolerance", 0.02)
		viper.Set("date-window", 30)
		viper.Set("min-confidence", 0.5)
		viper.Set("amount-weight", 0.4)
		viper.Set("date-weight", 0.3)
		viper.Set("reference-weight", 0.3)
		viper.Set("top-n", 3)
	}

	tests := []struct {
		name          string
		setupFlags    func()
		expectError   bool
		errorContains string
	}{
		{
			name:        "valid flags",
			setupFlags:  setDefaults,
			expectError: false,
		},
		{
			name: "missing invoices file",
			setupFlags: func() {
				setDefaults()
				viper.Set("invoices", "")
			},
			expectError:   true,
			errorContains: "invoices file is required",
		},
		{
			name: "missing transactions file",
			setupFlags: func() {
				setDefaults()
				viper.Set("transactions", "")
			},
			expectError:   true,
			errorContains: "transactions file is required",
		},
		{
			name: "invalid output format",
			setupFlags: func() {
				setDefaults()
				viper.Set("output-format", "xml")
			},
			expectError:   true,
			errorContains: "invalid output format",
		},
		{
			name: "negative amount tolerance",
			setupFlags: func() {
				setDefaults()
				viper.Set("amount-tolerance", -0.1)
			},
			expectError:   true,
			errorContains: "amount tolerance cannot be negative",
		},
		{
			name: "negative date window",
			setupFlags: func() {
				setDefaults()
				viper.Set("date-window", -1)
			},
			expectError:   true,
			errorContains: "date window cannot be negative",
		},
		{
			name: "min confidence out of range",
			setupFlags: func() {
				setDefaults()
				viper.Set("min-confidence", 1.5)
			},
			expectError:   true,
			errorContains: "minimum confidence must be between",
		},
		{
			name: "top-n below one",
			setupFlags: func() {
				setDefaults()
				viper.Set("top-n", 0)
			},
			expectError:   true,
			errorContains: "top-n must be at least 1",
		},
		{
			name: "missing output directory",
			setupFlags: func() {
				setDefaults()
				viper.Set("output-file", filepath.Join(tmpDir, "missing", "report.json"))
			},
			expectError:   true,
			errorContains: "output directory does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setupFlags()

			err := validateMatchFlags(matchCmd, nil)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error containing %q, got %q", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
