package conntrack

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotReadsInputFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "conntrack")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "table.txt")
	contents := "ipv4 2 tcp 6 431999 ESTABLISHED src=10.0.0.24 dst=192.82.242.219 sport=60004 dport=443 packets=52 bytes=9242 src=192.82.242.219 dst=135.131.124.247 sport=443 dport=60004 packets=48 bytes=27211 [ASSURED] mark=0 use=1\n"
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))

	snapshot := &Snapshot{InputFile: path}
	entries, err := snapshot.Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "192.82.242.219", entries[0].Orig.Dst)
}

func TestSnapshotMissingFileIsFatal(t *testing.T) {
	snapshot := &Snapshot{InputFile: "/nonexistent/conntrack.txt"}
	_, err := snapshot.Read()
	assert.Error(t, err)
}

func TestSnapshotEmptyFileIsNotFatal(t *testing.T) {
	dir, err := ioutil.TempDir("", "conntrack")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, ioutil.WriteFile(path, []byte(""), 0644))

	snapshot := &Snapshot{InputFile: path}
	entries, err := snapshot.Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
