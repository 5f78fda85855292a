package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "invoice-extractor", rootCmd.Use)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"extract", "batch", "watch", "serve", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"output", "upload-dir", "shaping", "sheet", "template", "table-detector", "preflight", "max-file-size", "log-level", "log-format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().ShorthandLookup("o"))
}

func TestRootCmd_InvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	input := writeInvoice(t, dir, "EXP-007.pdf", "EXP-007")

	_, err := execute(t, "extract", input, outputIn(dir), "--table-detector=lattice")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRootCmd_MissingTemplate(t *testing.T) {
	dir := t.TempDir()
	input := writeInvoice(t, dir, "EXP-007.pdf", "EXP-007")

	_, err := execute(t, quietFlags("extract", input, outputIn(dir), "--template", "absent.toml")...)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template")
}

func TestSetBuildInfo(t *testing.T) {
	oldVersion, oldBuilt, oldCommit := version, buildTime, gitCommit
	defer func() { version, buildTime, gitCommit = oldVersion, oldBuilt, oldCommit }()

	SetBuildInfo("1.2.3", "", "abc123")

	assert.Equal(t, "1.2.3", version)
	assert.Equal(t, oldBuilt, buildTime, "empty values keep the default")
	assert.Equal(t, "abc123", gitCommit)
}
