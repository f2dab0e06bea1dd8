package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"activity-signup/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InitAddUpdateList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activities.json")
	var out bytes.Buffer

	require.NoError(t, run("init", []string{"-path", path}, &out))
	assert.Contains(t, out.String(), "Wrote built-in seed")

	err := run("init", []string{"-path", path}, &out)
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, run("add", []string{
		"-path", path,
		"-name", "Robotics Club",
		"-description", "Build and program robots",
		"-schedule", "Mondays, 3:30 PM - 5:00 PM",
		"-max", "16",
	}, &out))

	require.NoError(t, run("update", []string{"-path", path, "-name", "Chess Club", "-field", "max", "-value", "14"}, &out))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	robotics, ok := reg.Find("Robotics Club")
	require.True(t, ok)
	assert.Equal(t, 16, robotics.MaxParticipants)
	assert.Empty(t, robotics.Participants)
	chess, _ := reg.Find("Chess Club")
	assert.Equal(t, 14, chess.MaxParticipants)
	assert.NotEmpty(t, reg.LastUpdated)

	out.Reset()
	require.NoError(t, run("list", []string{"-path", path}, &out))
	assert.Contains(t, out.String(), "Robotics Club")
	assert.Contains(t, out.String(), "Chess Club")

	out.Reset()
	require.NoError(t, run("validate", []string{"-path", path}, &out))
	assert.Contains(t, out.String(), "Registry validation passed")
}

func TestRun_AddErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")
	var out bytes.Buffer

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing fields", []string{"-path", path, "-name", "Only Name"}, "required for add"},
		{"duplicate", []string{"-path", path, "-name", "Chess Club", "-description", "d", "-schedule", "s", "-max", "1"}, "already exists"},
	}

	require.NoError(t, run("init", []string{"-path", path}, &out))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run("add", tt.args, &out)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRun_AddCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.json")
	var out bytes.Buffer

	require.NoError(t, run("add", []string{
		"-path", path, "-name", "Chorus", "-description", "Sing", "-schedule", "Thursdays", "-max", "30",
	}, &out))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 1)
	assert.Equal(t, "1.0.0", reg.Version)
}

func TestRun_UpdateErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")
	var out bytes.Buffer
	require.NoError(t, run("init", []string{"-path", path}, &out))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown activity", []string{"-name", "Nope", "-field", "max", "-value", "3"}, "not found"},
		{"unknown field", []string{"-name", "Chess Club", "-field", "room", "-value", "B2"}, "unknown field"},
		{"bad max", []string{"-name", "Chess Club", "-field", "max", "-value", "many"}, "invalid max value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run("update", append([]string{"-path", path}, tt.args...), &out)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRun_ValidateMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := run("validate", []string{"-path", filepath.Join(t.TempDir(), "missing.json")}, &out)
	assert.ErrorContains(t, err, "registry validation failed")
}
