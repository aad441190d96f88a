package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/style"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,dot,png", []string{"svg", "dot", "png"}},
		{" SVG , json ,", []string{"svg", "json"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFormats(tt.input), "parseFormats(%q)", tt.input)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/mutasi.csv", "data/mutasi"},
		{"out/flows", "mutasi.csv", "out/flows"},
		{"out/flows.svg", "mutasi.csv", "out/flows"},
		{"out/flows.v2", "mutasi.csv", "out/flows.v2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, basePath(tt.output, tt.input), "basePath(%q, %q)", tt.output, tt.input)
	}
}

func TestInputPath(t *testing.T) {
	assert.Equal(t, "", inputPath(nil))
	assert.Equal(t, "a.csv", inputPath([]string{"a.csv"}))
}

func TestRootCommand_Structure(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()

	names := map[string]bool{}
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"build", "render", "layout", "entities", "serve", "cache", "completion"} {
		assert.True(t, names[want], "missing command %q", want)
	}

	for _, flag := range []string{"config", "no-cache", "redis"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing persistent flag %q", flag)
	}
}

func TestFlowFlags_Registered(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	cmd := c.buildCommand()

	for _, flag := range []string{
		"mode", "kinds", "all-kinds", "min-value", "pair-minimum", "search", "focus",
		"counterparty", "itemized", "layout", "max-level", "demote-hubs",
		"hub-threshold", "direction", "refresh", "output", "pick",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %q", flag)
	}
	assert.Equal(t, "10000000", cmd.Flags().Lookup("min-value").DefValue)
}

func TestAmountFlag(t *testing.T) {
	v := 0.0
	a := (*amountFlag)(&v)

	require.NoError(t, a.Set("10_000_000"))
	assert.Equal(t, 10_000_000.0, v)
	assert.Equal(t, "10000000", a.String())

	require.NoError(t, a.Set("2500.5"))
	assert.Equal(t, "2500.5", a.String())

	assert.Error(t, a.Set("ten"))
	assert.Equal(t, 2500.5, v)
	assert.Equal(t, "amount", a.Type())
}

func TestFlowFlags_HelpDefault(t *testing.T) {
	f := defaultFlowFlags()
	cmd := newFlagCmd(&f)
	assert.Contains(t, cmd.Flags().FlagUsages(), "(default 10000000)")
}

func newFlagCmd(f *flowFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	return cmd
}

func TestApplyConfigDefaults(t *testing.T) {
	cfg, err := style.Decode(strings.NewReader(`
[defaults]
min_value = 0
layout = "timeline"
kinds = ["PAYMENT"]
`))
	require.NoError(t, err)

	t.Run("unset flags take config values", func(t *testing.T) {
		f := defaultFlowFlags()
		cmd := newFlagCmd(&f)
		applyConfigDefaults(cmd, &f, cfg)

		assert.Equal(t, 0.0, f.minValue)
		assert.Equal(t, "timeline", f.layout)
		assert.Equal(t, []string{"PAYMENT"}, f.kinds)
		assert.Equal(t, "", f.direction)
	})

	t.Run("explicit flags win", func(t *testing.T) {
		f := defaultFlowFlags()
		cmd := newFlagCmd(&f)
		require.NoError(t, cmd.Flags().Set("min-value", "5000"))
		require.NoError(t, cmd.Flags().Set("layout", "leftright"))
		applyConfigDefaults(cmd, &f, cfg)

		assert.Equal(t, 5000.0, f.minValue)
		assert.Equal(t, "leftright", f.layout)
	})

	t.Run("nil config", func(t *testing.T) {
		f := defaultFlowFlags()
		applyConfigDefaults(newFlagCmd(&f), &f, nil)
		assert.Equal(t, float64(pipeline.DefaultMinValue), f.minValue)
	})
}

func TestOptions_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowtower.toml")
	require.NoError(t, os.WriteFile(path, []byte("[defaults]\nlayout = \"leftright\"\n\n[styles.bca]\ncolor = \"#0060af\"\n"), 0o644))

	c := New(&bytes.Buffer{}, LogInfo)
	c.configPath = path
	f := defaultFlowFlags()
	opts, err := c.options(newFlagCmd(&f), &f)
	require.NoError(t, err)

	assert.Equal(t, "leftright", opts.Layout)
	assert.Equal(t, float64(pipeline.DefaultMinValue), opts.MinValue)
	require.NotNil(t, opts.Styles)
	assert.NotZero(t, opts.Styles.Len())
}

func TestOptions_MissingConfig(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "nope.toml")
	f := defaultFlowFlags()
	_, err := c.options(newFlagCmd(&f), &f)
	require.Error(t, err)
}

func TestNewCache(t *testing.T) {
	t.Setenv(redisEnv, "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(&bytes.Buffer{}, LogInfo)
	store, err := c.newCache()
	require.NoError(t, err)
	assert.IsType(t, &cache.FileCache{}, store)

	c.noCache = true
	store, err = c.newCache()
	require.NoError(t, err)
	assert.IsType(t, cache.NullCache{}, store)
}

const cliLedger = `JENIS TRANSAKSI;BANK;NO REK;BANK LAWAN;NO REK LAWAN;PEMILIK REKENING;NAMA LAWAN;MUTASI;TGL/TRANS
PAYMENT;BCA;1;MANDIRI;2;A;B;15.000.000,00;01/02/2024
PAYMENT;MANDIRI;2;BNI;3;B;C;20.000.000,00;04/02/2024
PAYMENT;BNI;3;;;C;;100.000,00;
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(redisEnv, "")

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mutasi.csv")
	require.NoError(t, os.WriteFile(path, []byte(cliLedger), 0o644))
	return path
}

func TestBuildCommand_Stdout(t *testing.T) {
	out, err := runCLI(t, "build", writeLedger(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"nodes"`)
	assert.Contains(t, out, "MANDIRI|2")
	assert.NotContains(t, out, "KAS_BESAR", "rows below the default threshold are dropped")
}

func TestBuildCommand_MissingFile(t *testing.T) {
	_, err := runCLI(t, "build", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestRenderCommand_DOT(t *testing.T) {
	input := writeLedger(t)
	output := filepath.Join(t.TempDir(), "out", "flows.dot")
	_, err := runCLI(t, "render", input, "-f", "dot", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "digraph"))
}

func TestRenderCommand_BadFormat(t *testing.T) {
	_, err := runCLI(t, "render", writeLedger(t), "-f", "pdf")
	require.Error(t, err)
}

func TestLayoutCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "layout", writeLedger(t), "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"BCA|1": 0`)
}

func TestLayoutCommand_All(t *testing.T) {
	out, err := runCLI(t, "layout", writeLedger(t), "--all")
	require.NoError(t, err)
	for _, s := range []string{"topdown", "leftright", "timeline"} {
		assert.Contains(t, out, s)
	}
}

func TestEntitiesCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "entities", writeLedger(t), "--json")
	require.NoError(t, err)
	for _, id := range []string{"BCA|1", "MANDIRI|2", "BNI|3", "CASH|KAS_BESAR"} {
		assert.Contains(t, out, id)
	}

	out, err = runCLI(t, "entities", writeLedger(t), "--json", "--counterparties-of", "BCA|1")
	require.NoError(t, err)
	assert.Contains(t, out, "MANDIRI|2")
	assert.NotContains(t, out, "BNI|3")
}

func TestCachePathCommand(t *testing.T) {
	out, err := runCLI(t, "cache", "path")
	require.NoError(t, err)
	assert.Contains(t, out, appName)
}

func TestCacheClearExpired(t *testing.T) {
	out, err := runCLI(t, "cache", "clear", "--expired")
	require.NoError(t, err)
	assert.NotContains(t, out, "error")
}

func TestCompletion_FlagValues(t *testing.T) {
	out, err := runCLI(t, "__complete", "render", "x.csv", "--layout", "")
	require.NoError(t, err)
	for _, s := range []string{"topdown", "leftright", "timeline"} {
		assert.Contains(t, out, s)
	}

	out, err = runCLI(t, "__complete", "entities", "x.csv", "--mode", "")
	require.NoError(t, err)
	assert.Contains(t, out, "account")
	assert.Contains(t, out, "entity")
}

func TestCompletion_Script(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, appName)

	_, err = runCLI(t, "completion", "tcsh")
	require.Error(t, err)
}
