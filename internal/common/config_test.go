package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 0.01, cfg.Tolerance)
	require.Equal(t, "信息汇总表", cfg.InputSheet)
	require.Equal(t, "费用", cfg.OutputSheet)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"pdf_dir: /data/pdfs\nrecursive: true\ntolerance: 0.05\nlog_level: debug\n",
	), 0o644))

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	require.Equal(t, "/data/pdfs", cfg.PDFDir)
	require.True(t, cfg.Recursive)
	require.Equal(t, 0.05, cfg.Tolerance)
	require.Equal(t, "debug", cfg.LogLevel)
	// Unset keys keep their defaults.
	require.Equal(t, "信息汇总表", cfg.InputSheet)
}

func TestLoadConfigMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := LoadConfig(missing, true)
	require.Error(t, err, "explicit config path must exist")

	cfg, err := LoadConfig(missing, false)
	require.NoError(t, err, "default location is optional")
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("RECON_PDF_DIR", "/env/pdfs")
	t.Setenv("RECON_TOLERANCE", "0.02")

	cfg, err := LoadConfig("", false)
	require.NoError(t, err)
	require.Equal(t, "/env/pdfs", cfg.PDFDir)
	require.Equal(t, 0.02, cfg.Tolerance)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tolerance: -1\n"), 0o644))

	_, err := LoadConfig(path, true)
	require.Error(t, err)
}

func TestValidateConfigDocument(t *testing.T) {
	require.NoError(t, ValidateConfigDocument([]byte("pdf_dir: /data\nrecursive: false\n")))
	require.NoError(t, ValidateConfigDocument(nil))

	// Unknown keys are rejected so typos fail loudly.
	require.Error(t, ValidateConfigDocument([]byte("pdfdir: /data\n")))
	require.Error(t, ValidateConfigDocument([]byte("tolerance: zero\n")))
	require.Error(t, ValidateConfigDocument([]byte("log_level: loud\n")))
}
