package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RequiresBotToken(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dbPath := filepath.Join(dir, "petrodata.db")
	t.Setenv("PETRODATA_DB_PATH", dbPath)
	t.Setenv("PETRODATA_TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "store must not be opened without a token")
}
