package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeff/internal/codec"
	"jeff/internal/diag"
	"jeff/internal/validate"
)

const validDoc = `version: 1
entrypoint: 0
strings: [main]
functions:
  - name: 0
    values:
      - type: qubit
      - type: int1
    body:
      targets: [1]
      ops:
        - op: qubit.alloc
          outputs: [0]
        - op: qubit.measure
          inputs: [0]
          outputs: [1]
`

// the allocated qubit is never consumed
const leakyDoc = `version: 1
entrypoint: 0
strings: [main]
functions:
  - name: 0
    values:
      - type: qubit
    body:
      ops:
        - op: qubit.alloc
          outputs: [0]
`

const futureDoc = `version: 65536
strings: []
functions: []
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func defaultOpts() Options {
	return Options{Validate: validate.DefaultOptions()}
}

type recordSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordSink) final(file string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].File == file {
			return s.events[i], true
		}
	}
	return Event{}, false
}

func TestCheckFileValid(t *testing.T) {
	p := write(t, t.TempDir(), "ok.jeff.yaml", validDoc)
	res := CheckFile(context.Background(), p, defaultOpts())
	require.NoError(t, res.Err)
	assert.True(t, res.Valid())
	assert.Equal(t, codec.Text, res.Format)
	require.NotNil(t, res.Module)
	assert.Equal(t, "main", res.Module.FuncName(0))
}

func TestCheckFileInvalid(t *testing.T) {
	p := write(t, t.TempDir(), "leak.jeff.yaml", leakyDoc)
	res := CheckFile(context.Background(), p, defaultOpts())
	require.NoError(t, res.Err)
	assert.False(t, res.Valid())
	require.NotNil(t, res.Bag.First())
	assert.Equal(t, diag.StructLinearUnconsumed, res.Bag.First().Code)
}

func TestCheckFileVersionIsFinding(t *testing.T) {
	p := write(t, t.TempDir(), "future.jeff.yaml", futureDoc)
	res := CheckFile(context.Background(), p, defaultOpts())
	require.NoError(t, res.Err)
	assert.False(t, res.Valid())
	assert.Equal(t, diag.CompatVersion, res.Bag.First().Code)
	assert.Equal(t, diag.KindCompatibility, res.Bag.First().Kind())
}

func TestCheckFileMalformed(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "junk.jeff", "not a module")
	res := CheckFile(context.Background(), p, defaultOpts())
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, codec.ErrMalformed))
	assert.False(t, res.Valid())

	res = CheckFile(context.Background(), filepath.Join(dir, "missing.jeff"), defaultOpts())
	require.Error(t, res.Err)
}

func TestBinaryFile(t *testing.T) {
	m, err := codec.DecodeText([]byte(validDoc))
	require.NoError(t, err)
	data, err := codec.EncodeBinary(m)
	require.NoError(t, err)

	p := write(t, t.TempDir(), "ok.jeff", string(data))
	res := CheckFile(context.Background(), p, defaultOpts())
	require.NoError(t, res.Err)
	assert.True(t, res.Valid())
	assert.Equal(t, codec.Binary, res.Format)
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b/leak.jeff.yaml", leakyDoc)
	write(t, dir, "a/ok.jeff.yml", validDoc)
	write(t, dir, "notes.txt", "ignored")

	sink := &recordSink{}
	opts := defaultOpts()
	opts.Jobs = 2
	opts.Progress = sink
	results, err := CheckDir(context.Background(), dir, opts)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(dir, "a/ok.jeff.yml"), results[0].Path)
	assert.True(t, results[0].Valid())
	assert.False(t, results[1].Valid())

	ev, ok := sink.final(results[0].Path)
	require.True(t, ok)
	assert.Equal(t, StatusDone, ev.Status)
	ev, ok = sink.final(results[1].Path)
	require.True(t, ok)
	assert.Equal(t, StatusInvalid, ev.Status)
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	one := write(t, dir, "x/one.jeff.yaml", validDoc)
	single := write(t, t.TempDir(), "single.jeff.yaml", validDoc)

	files, err := ExpandPaths([]string{dir, single})
	require.NoError(t, err)
	assert.Equal(t, []string{one, single}, files)

	_, err = ExpandPaths([]string{filepath.Join(dir, "nope")})
	assert.Error(t, err)
}

func TestVerdictCache(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	require.NoError(t, err)

	p := write(t, t.TempDir(), "leak.jeff.yaml", leakyDoc)
	opts := defaultOpts()
	opts.Cache = cache

	first := CheckFile(context.Background(), p, opts)
	require.False(t, first.Cached)
	require.False(t, first.Valid())

	second := CheckFile(context.Background(), p, opts)
	require.True(t, second.Cached)
	assert.Nil(t, second.Module)
	assert.False(t, second.Valid())
	require.Equal(t, first.Bag.Len(), second.Bag.Len())
	assert.Equal(t, first.Bag.First().Code, second.Bag.First().Code)
	assert.Equal(t, first.Bag.First().Loc.String(), second.Bag.First().Loc.String())

	// другие опции, другой ключ
	opts.Validate.Lints = !opts.Validate.Lints
	third := CheckFile(context.Background(), p, opts)
	assert.False(t, third.Cached)

	require.NoError(t, cache.DropAll())
	opts.Validate.Lints = !opts.Validate.Lints
	fourth := CheckFile(context.Background(), p, opts)
	assert.False(t, fourth.Cached)
}

func TestVerdictKeyIgnoresJobs(t *testing.T) {
	a := validate.DefaultOptions()
	b := a
	b.Jobs = 8
	assert.Equal(t, VerdictKey([]byte("x"), a), VerdictKey([]byte("x"), b))
	assert.NotEqual(t, VerdictKey([]byte("x"), a), VerdictKey([]byte("y"), a))
}

func TestNilCache(t *testing.T) {
	var c *DiskCache
	hit, err := c.Get(Digest{}, &Verdict{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Put(Digest{}, &Verdict{}))
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "ok.jeff.yaml", validDoc)
	bin := filepath.Join(dir, "ok.jeff")
	back := filepath.Join(dir, "back.jeff.yaml")

	res, err := Convert(context.Background(), in, bin, defaultOpts())
	require.NoError(t, err)
	assert.Equal(t, codec.Text, res.From)
	assert.Equal(t, codec.Binary, res.To)

	_, err = Convert(context.Background(), bin, back, defaultOpts())
	require.NoError(t, err)

	orig, _, err := LoadFile(in)
	require.NoError(t, err)
	again, _, err := LoadFile(back)
	require.NoError(t, err)
	assert.Equal(t, orig.FuncName(0), again.FuncName(0))
	assert.Equal(t, len(orig.Functions[0].Values), len(again.Functions[0].Values))
}

func TestConvertRefusesInvalid(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "leak.jeff.yaml", leakyDoc)
	out := filepath.Join(dir, "leak.jeff")

	res, err := Convert(context.Background(), in, out, defaultOpts())
	require.ErrorIs(t, err, ErrInvalid)
	require.NotNil(t, res)
	assert.True(t, res.Bag.HasErrors())
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
