package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nesq/resumecount/services/counter"
	"github.com/nesq/resumecount/services/slack/slacktest"
	"github.com/nesq/resumecount/services/storage"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func runApp(t *testing.T, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"counterd"}, args...))
	return stdout.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runApp(t, "version")
	require.NoError(t, err)
	require.Equal(t, "counterd unknown (git: unknown unknown)\n", out)
}

func TestConfigCmd(t *testing.T) {
	out, err := runApp(t, "config", "-config", os.DevNull)
	require.NoError(t, err)
	require.Contains(t, out, "[http]")
	require.Contains(t, out, `bind-address = ":9092"`)
	require.Contains(t, out, `backend = "bolt"`)
}

func TestResetCmd(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "counterd.db")
	confPath := filepath.Join(dir, "counterd.conf")
	conf := fmt.Sprintf("[storage]\nbackend = \"bolt\"\nboltdb = %q\n", dbPath)
	require.NoError(t, os.WriteFile(confPath, []byte(conf), 0600))

	out, err := runApp(t, "reset", "-config", confPath, "-count", "1200")
	require.NoError(t, err)
	require.Equal(t, "visitor_count = 1200\n", out)

	db, err := bolt.Open(dbPath, 0600, nil)
	require.NoError(t, err)
	defer db.Close()
	r, err := storage.NewBolt(db, storage.DefaultTableName).Get(context.Background(), counter.RecordID)
	require.NoError(t, err)
	require.Equal(t, int64(1200), r.Count)
}

func TestResetCmd_Negative(t *testing.T) {
	_, err := runApp(t, "reset", "-config", os.DevNull, "-count", "-1")
	require.Error(t, err)
}

func TestNotifyTestCmd(t *testing.T) {
	ts := slacktest.NewServer(http.StatusOK)
	defer ts.Close()

	out, err := runApp(t, "notify-test", "-config", os.DevNull, "-url", ts.URL, "-state", "ALARM")
	require.NoError(t, err)
	require.Equal(t, "notification sent\n", out)

	got := ts.Requests()
	require.Len(t, got, 1)
	text, _ := got[0].Data["text"].(string)
	require.True(t, strings.HasPrefix(text, ":fire: *test-alarm* state is now *ALARM*: manual notification test from Nesq\n"), text)
}

func TestNotifyTestCmd_HTTPError(t *testing.T) {
	ts := slacktest.NewServer(http.StatusNotFound)
	defer ts.Close()

	_, err := runApp(t, "notify-test", "-config", os.DevNull, "-url", ts.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}
