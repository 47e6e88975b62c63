package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat"
	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/internal/config"
)

// run executes the root command against a freshly built local catalog.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	buildCatalog(t, blobstore.NewLocalStore(dir))
	viper.Set("catalog", dir)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_Lookup(t *testing.T) {
	out, err := run(t, "", "lookup", "--json=false", "TEST 010-000001", "TEST 010-000003")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "TEST 010-000001\t15.00000000\t5.00000000\t10.500\t0.100", lines[0])
	assert.Equal(t, "TEST 010-000003\t26.00000000\t6.00000000\t-\t-", lines[1])

	_, err = run(t, "", "lookup", "--json=false", "TEST 010-000009")
	assert.ErrorIs(t, err, skycat.ErrNotFound)
}

func TestCLI_Nearest(t *testing.T) {
	out, err := run(t, "", "nearest", "--json", "-k", "2", "-r", "1", "25.1", "5.1")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "TEST 010-000002"`)
	assert.Contains(t, out, `"id": "TEST 010-000003"`)

	_, err = run(t, "", "nearest", "--json=false", "-k", "1", "abc", "5")
	assert.Error(t, err)
}

func TestCLI_Batch(t *testing.T) {
	in := "ra,dec\n25.1,5.1\n25,95\n15,5\n"
	out, err := run(t, in, "batch", "-k", "1", "-r", "1")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "row", rows[0][0])
	assert.Equal(t, "TEST 010-000002", rows[1][3])
	assert.Equal(t, "2", rows[2][0])
	assert.NotEmpty(t, rows[2][8])
	assert.Equal(t, "TEST 010-000001", rows[3][3])
}

func TestCLI_Verify(t *testing.T) {
	out, err := run(t, "", "verify", "--deep", "--scan")
	require.NoError(t, err)
	assert.Contains(t, out, "18 zones × 36 buckets")
	assert.Contains(t, out, "✓ 3 stars decoded")
}

func TestParsePoints(t *testing.T) {
	pts, err := parsePoints(strings.NewReader("# comment\n10.5, -3\n20,4\n"))
	require.NoError(t, err)
	assert.Equal(t, []skycat.Point{{RA: 10.5, Dec: -3}, {RA: 20, Dec: 4}}, pts)

	_, err = parsePoints(strings.NewReader("1,2\nx,y\n"))
	assert.Error(t, err)

	_, err = parsePoints(strings.NewReader("1\n"))
	assert.Error(t, err)
}

func TestQueryOptions(t *testing.T) {
	assert.Empty(t, queryOptions(config.Config{}))
	assert.Len(t, queryOptions(config.Config{WrapRA: true, MaxSeparation: 0.5}), 2)

	opts := catalogOptions(config.Config{
		Cache:              config.CacheConfig{Size: 1 << 20, BlockSize: 512},
		MemoryLimit:        1 << 20,
		IOLimit:            1 << 20,
		MaxConcurrentReads: 2,
	}, skycat.NoopLogger())
	assert.Len(t, opts, 6)
}
