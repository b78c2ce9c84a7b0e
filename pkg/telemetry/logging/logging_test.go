package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupConsoleFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out string)
	}{
		{
			name:   "json default",
			format: "",
			check: func(t *testing.T, out string) {
				var record map[string]any
				if err := json.Unmarshal([]byte(out), &record); err != nil {
					t.Fatalf("expected JSON output, got %q: %v", out, err)
				}
				if record["msg"] != "hello" {
					t.Errorf("unexpected record: %v", record)
				}
			},
		},
		{
			name:   "text",
			format: "text",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "msg=hello") {
					t.Errorf("expected text output, got %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, closeFile, err := Setup(Config{Format: tt.format, Writer: &buf})
			if err != nil {
				t.Fatal(err)
			}
			defer closeFile()

			logger.Info("hello")
			tt.check(t, strings.TrimSpace(buf.String()))
		})
	}
}

func TestSetupLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFile, err := Setup(Config{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFile()

	logger.Info("suppressed")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info record must be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn record must pass")
	}
}

func TestSetupInvalidConfig(t *testing.T) {
	if _, _, err := Setup(Config{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, _, err := Setup(Config{Format: "xml"}); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestSetupFileFanout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ceres.log")

	var buf bytes.Buffer
	logger, closeFile, err := Setup(Config{Format: "text", FilePath: path, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Warn("capacity failure", "event", "rate_limited", "model", "x")
	if err := closeFile(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "capacity failure") {
		t.Error("expected record on console writer")
	}

	// The file copy is always JSON so the health report can mine it.
	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatal("expected a record in the log file")
	}
	var record map[string]any
	if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
		t.Fatalf("file record is not JSON: %v", err)
	}
	if record["event"] != "rate_limited" {
		t.Errorf("expected event attribute in file record, got %v", record)
	}
}
