package scanner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mediacarve"
	"github.com/ugparu/mediacarve/config"
	"github.com/ugparu/mediacarve/scanner"
)

func waitDone(t *testing.T, j *scanner.Job) {
	t.Helper()

	select {
	case <-j.Done():
	case <-time.After(5 * time.Second):
		t.FailNow()
	}
}

func TestJob_Scan(t *testing.T) {
	t.Parallel()

	es := elementaryStream()
	data := append(append(junk(10), es...), append(junk(10), es...)...)
	cfg := config.Default()
	released := 0
	j := scanner.NewDefault(&cfg).NewJob(data, scanner.Split(int64(len(data)), 3), func() { released++ })

	require.NoError(t, j.Start())
	waitDone(t, j)

	st := j.Status()
	require.True(t, st.Finished)
	require.NoError(t, st.Err)
	require.Equal(t, j.ID, st.ID)
	require.Equal(t, 3, st.Regions)
	require.Equal(t, 3, st.Scanned)
	// the second sequence continues the first block, later regions find it again
	require.Len(t, st.Blocks, 1)
	require.Equal(t, int64(10), st.Blocks[0].Offset)
	require.Equal(t, int64(len(data)), st.Blocks[0].End)

	j.Close()
	j.Close()
	require.Equal(t, 1, released)
}

func TestJob_StartAfterStart(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	j := scanner.NewDefault(&cfg).NewJob(junk(16), scanner.Split(16, 1), nil)
	require.NoError(t, j.Start())
	err := j.Start()
	targetError := &scanner.StartedAlreadyError{}
	require.ErrorAs(t, err, &targetError)
	j.Close()
}

func TestJob_StartAfterClose(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	released := false
	j := scanner.NewDefault(&cfg).NewJob(junk(16), scanner.Split(16, 1), func() { released = true })
	j.Close()
	require.True(t, released)
	waitDone(t, j)

	err := j.Start()
	targetError := &scanner.StartedAfterCloseError{}
	require.ErrorAs(t, err, &targetError)
	require.Zero(t, j.Status().Scanned)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	block := func(offset, resume int64) *mediacarve.Block {
		return &mediacarve.Block{Offset: offset, End: resume, Resume: resume}
	}
	a, b, c, d := block(0, 50), block(40, 60), block(50, 80), block(90, 95)
	got := scanner.Merge([]scanner.Result{
		{Region: scanner.Region{From: 0, To: 30}, Blocks: []*mediacarve.Block{a}},
		{Region: scanner.Region{From: 30, To: 60}, Blocks: []*mediacarve.Block{b, c}},
		{Region: scanner.Region{From: 60, To: 100}, Blocks: []*mediacarve.Block{d}},
	})
	require.Equal(t, []*mediacarve.Block{a, c, d}, got)
	require.Empty(t, scanner.Merge(nil))
}
