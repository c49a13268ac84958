package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestWithRuntime_ClosesOnRunError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SYNCHROKIT_DB_PATH", filepath.Join(dir, "data", "synchrokit.db"))
	t.Setenv("SYNCHROKIT_LOG_PATH", filepath.Join(dir, "synchrokit.log"))
	configPath, transportMode = "", ""

	boom := errors.New("boom")
	var opened struct {
		pingDB   func() error
		writeLog func([]byte) (int, error)
	}
	run := withRuntime(func(cmd *cobra.Command, args []string) error {
		require.NotNil(t, db)
		require.NotNil(t, logFile)
		opened.pingDB = db.Ping
		opened.writeLog = logFile.Write
		return boom
	})

	err := run(&cobra.Command{}, nil)
	require.ErrorIs(t, err, boom)
	require.Nil(t, db)
	require.Nil(t, logFile)
	require.Error(t, opened.pingDB(), "database should be closed")
	_, err = opened.writeLog([]byte("late\n"))
	require.Error(t, err, "log file should be closed")
}

func TestWithRuntime_ClosesLogFileOnSetupError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	t.Setenv("SYNCHROKIT_DB_PATH", filepath.Join(blocker, "synchrokit.db"))
	t.Setenv("SYNCHROKIT_LOG_PATH", filepath.Join(dir, "synchrokit.log"))
	configPath, transportMode = "", ""

	ran := false
	run := withRuntime(func(cmd *cobra.Command, args []string) error {
		ran = true
		return nil
	})

	err := run(&cobra.Command{}, nil)
	require.Error(t, err)
	require.False(t, ran)
	require.Nil(t, db)
	require.Nil(t, logFile)
}
