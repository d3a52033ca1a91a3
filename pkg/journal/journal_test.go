package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err, "failed to open journal")
	t.Cleanup(j.Close)

	require.NoError(t, j.Migrate(), "failed to migrate journal")
	return j
}

func Test_MigrateTwice(t *testing.T) {
	j := newTestJournal(t)
	require.NoError(t, j.Migrate())
}

func Test_RecordAndList(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)
	start := time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC)

	for i, action := range []string{"created", "deleted", "created"} {
		err := j.Record(ctx, Entry{
			RecordedAt:   start.Add(time.Duration(i) * time.Minute),
			Action:       action,
			Project:      "YOUR-PROJECT",
			ProjectID:    "5f0c0d52-6c7d-4e1b-9a6f-2d1bb2a0d8a1",
			EndpointName: "SEP-NAME",
			EndpointID:   "6f3f1f0e-8d5e-4bb5-93f3-0e5cf4b0a0d1",
		})
		require.NoError(t, err)
	}

	entries, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.True(t, entries[0].RecordedAt.Equal(start.Add(2*time.Minute)))
	require.Equal(t, "created", entries[0].Action)
	require.Equal(t, "deleted", entries[1].Action)
	require.True(t, entries[2].RecordedAt.Equal(start))
	require.Equal(t, "SEP-NAME", entries[2].EndpointName)
	require.Equal(t, "YOUR-PROJECT", entries[2].Project)

	limited, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, entries[0].ID, limited[0].ID)
}

func Test_RecordSetsTime(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)
	before := time.Now().Add(-time.Second)

	require.NoError(t, j.Record(ctx, Entry{Action: "deleted", EndpointName: "SEP-NAME"}))

	entries, err := j.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].RecordedAt.After(before))
}

func Test_ListEmpty(t *testing.T) {
	entries, err := newTestJournal(t).List(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}
