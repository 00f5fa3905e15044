package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresModelAndInput(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	assert.Error(t, loadConfig())

	viper.Set("model.path", "model.xml")
	assert.Error(t, loadConfig())

	viper.Set("input.source", "0")
	assert.NoError(t, loadConfig())
}

func TestLoadConfigDerivesOutputDirectory(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("model.path", "model.xml")
	viper.Set("input.source", "clip.mp4")
	viper.Set("output.path", "recordings/run.avi")
	require.NoError(t, loadConfig())
	assert.Equal(t, "recordings", viper.GetString("output.directory"))
}

func TestFlagsBoundToConfigKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"-m", "net.xml", "-i", "3", "--output_limit", "0", "--fx", "900"}))

	assert.Equal(t, "net.xml", viper.GetString("model.path"))
	assert.Equal(t, "3", viper.GetString("input.source"))
	assert.Equal(t, 0, viper.GetInt("output.limit"))
	assert.Equal(t, 900.0, viper.GetFloat64("camera.fx"))
	assert.Equal(t, 256, viper.GetInt("network.height_size"))
	assert.Equal(t, "CPU", viper.GetString("model.device"))
}
