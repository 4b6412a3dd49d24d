package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/jalias/internal/monitor"
	"github.com/mabhi256/jalias/internal/trace"
)

func names(templates []monitor.Template) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = t.Name
	}
	return out
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Analysis{
		QueryRate:   1,
		CollectRate: 1,
		UpdateRate:  1000,
		Output:      OutputCLI,
		Collect:     []string{"min_max_avg", "bltin_vs_custom"},
	}, cfg.Analysis)

	templates, err := Compile(cfg.Monitors)
	require.NoError(t, err)
	assert.Equal(t, []string{"always-unaliased", "custom-object", "custom-le4-inc-refs"}, names(templates))

	rendered := make([]string, len(templates))
	for i, tmpl := range templates {
		rendered[i] = tmpl.Factory.NewMonitor(nil, "1").String()
	}
	assert.Equal(t, []string{
		"Always(Object is unaliased)",
		"Immediately(Not(Object is built-in))",
		"All([Immediately(Not(Object is built-in)), Always(Object has <= 4 incoming references)])",
	}, rendered)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, def, cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	cfg, err := Load("testdata/custom.yaml")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Analysis.QueryRate)
	assert.Equal(t, 1, cfg.Analysis.CollectRate, "unset keys keep their default")
	assert.Equal(t, OutputCLIMore, cfg.Analysis.Output)
	require.Len(t, cfg.Monitors, 1)

	templates, err := Compile(cfg.Monitors)
	require.NoError(t, err)
	assert.Equal(t, "All([Immediately(instance_of com/acme/Cart), Always(in_heap_refs < 2)])",
		templates[0].Factory.NewMonitor(nil, "1").String())
}

func TestLoad_TOML(t *testing.T) {
	cfg, err := Load("testdata/custom.toml")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Analysis.CollectRate)
	assert.Equal(t, []string{"min_max_avg"}, cfg.Analysis.Collect)
	require.Len(t, cfg.Monitors, 1)
	assert.Equal(t, "ever-shared", cfg.Monitors[0].Name)

	templates, err := Compile(cfg.Monitors)
	require.NoError(t, err)
	assert.Equal(t, "Ever(Object is shared)", templates[0].Factory.NewMonitor(nil, "1").String())

	def, err := Default()
	require.NoError(t, err)
	assert.Len(t, def.Monitors, 3, "defaults are not modified by a load")
}

func TestLoad_TOMLKeepsDefaultMonitors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.toml")
	require.NoError(t, os.WriteFile(path, []byte("[analysis]\nquery_rate = 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analysis.QueryRate)
	assert.Len(t, cfg.Monitors, 3)
	assert.Len(t, cfg.Analysis.Collect, 2)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"testdata/unknown_key.yaml": "qurey_rate",
		"testdata/unknown_key.toml": "update_rat",
		"testdata/bad_rate.yaml":    "minimum rate is 1",
		"testdata/missing.yaml":     "failed to read config file",
		"testdata/custom.json":      "failed to read config file",
	}
	for path, want := range cases {
		_, err := Load(path)
		require.Error(t, err, path)
		assert.Contains(t, err.Error(), want, path)
	}

	_, err := Load("testdata/bad_rate.yaml")
	assert.ErrorIs(t, err, trace.ErrInvalidRate)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	require.NoError(t, os.WriteFile(path, []byte("query_rate=1\n"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Default()
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Analysis.Output = "html"
	assert.ErrorContains(t, cfg.Validate(), "output")

	cfg = base()
	cfg.Analysis.Collect = []string{"heap_size"}
	assert.ErrorContains(t, cfg.Validate(), "unknown collector")

	cfg = base()
	cfg.Monitors = nil
	assert.ErrorContains(t, cfg.Validate(), "at least one monitor")
}

func TestDriverOptions(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	opts, err := cfg.Analysis.DriverOptions()
	require.NoError(t, err)
	assert.Equal(t, 1000, opts.UpdateRate)
	require.Len(t, opts.Collectors, 2)
	assert.Equal(t, "min_max_avg", opts.Collectors[0].Name())
}
