package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/doowon-lab/dwportal/pkg/cli/config"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

func TestLoggerConfigure(t *testing.T) {
	t.Run("valid console logger", func(t *testing.T) {
		cfg := config.NewLoggerForTest("debug", "console", "stderr")
		closer := gt.R1(cfg.Configure()).NoError(t)
		closer()
	})

	t.Run("json logger to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "portal.log")
		cfg := config.NewLoggerForTest("info", "json", path)
		closer := gt.R1(cfg.Configure()).NoError(t)
		closer()

		_, err := os.Stat(path)
		gt.NoError(t, err)
	})

	t.Run("invalid level rejected", func(t *testing.T) {
		cfg := config.NewLoggerForTest("verbose", "console", "stdout")
		_, err := cfg.Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid format rejected", func(t *testing.T) {
		cfg := config.NewLoggerForTest("info", "xml", "stdout")
		_, err := cfg.Configure()
		gt.Value(t, err).NotNil()
	})
}

func TestStoreConfigureMemory(t *testing.T) {
	ctx := context.Background()

	cfg := config.NewStoreForTest("memory", "", "")
	repo := gt.R1(cfg.Configure(ctx)).NoError(t)
	defer func() { gt.NoError(t, repo.Close()) }()

	descriptors := gt.R1(repo.GetSection(ctx, types.SectionWeeklyReports)).NoError(t)
	gt.Bool(t, len(descriptors) > 0).True()
}

func TestStoreConfigureFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "field-configs.json")

	cfg := config.NewStoreForTest("file", path, "")
	repo := gt.R1(cfg.Configure(ctx)).NoError(t)
	defer func() { gt.NoError(t, repo.Close()) }()

	sections := gt.R1(repo.Load(ctx)).NoError(t)
	gt.Map(t, sections.FieldConfigs).HasKey(types.SectionHardware)
}

func TestStoreConfigureUnknownBackend(t *testing.T) {
	cfg := config.NewStoreForTest("redis", "", "")
	_, err := cfg.Configure(context.Background())
	gt.Value(t, err).NotNil()
}

func TestStoreBootstrapOverride(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bootstrap.toml")
	content := `
[[section]]
id = "hardware-management"
title = "자산 관리"
tracker_id = 4711

  [[section.field]]
  id = 1
  name = "자산명"
  key = "name"
  type = "string"
  required = true
  reference_id = 3

  [[section.field]]
  id = 2
  name = "구분"
  key = "custom_field_1001"
  type = "selector"
  options = ["노트북", "모니터"]
  reference_id = 1001
`
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()

	cfg := config.NewStoreForTest("memory", "", path)
	repo := gt.R1(cfg.Configure(ctx)).NoError(t)
	defer func() { gt.NoError(t, repo.Close()) }()

	descriptors := gt.R1(repo.GetSection(ctx, types.SectionHardware)).NoError(t)
	gt.Array(t, descriptors).Length(2)
	gt.Value(t, descriptors[0].Name).Equal("자산명")
	gt.Value(t, descriptors[1].Options).Equal([]string{"노트북", "모니터"})

	trackerID := gt.R1(repo.TrackerID(ctx, types.SectionHardware)).NoError(t)
	gt.Number(t, trackerID).Equal(4711)

	sections := gt.R1(repo.Load(ctx)).NoError(t)
	gt.Value(t, sections.SectionTitles[types.SectionHardware]).Equal("자산 관리")

	// untouched sections keep their built-in defaults
	weekly := gt.R1(repo.GetSection(ctx, types.SectionWeeklyReports)).NoError(t)
	gt.Bool(t, len(weekly) > 0).True()
}

func TestStoreBootstrapBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.toml")
	gt.NoError(t, os.WriteFile(path, []byte("[[section]\nid ="), 0o600)).Required()

	cfg := config.NewStoreForTest("memory", "", path)
	_, err := cfg.Configure(context.Background())
	gt.Bool(t, errors.Is(err, config.ErrInvalidBootstrap)).True()
}

func TestStoreBootstrapUnknownSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.toml")
	content := `
[[section]]
id = "finance"
title = "회계"
`
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()

	cfg := config.NewStoreForTest("memory", "", path)
	_, err := cfg.Configure(context.Background())
	gt.Bool(t, errors.Is(err, config.ErrUnknownSection)).True()
}

func TestTrackerConfigureRequiresURL(t *testing.T) {
	cfg := config.NewTrackerForTest("")
	_, err := cfg.Configure()
	gt.Value(t, err).NotNil()
}

func TestTrackerConfigure(t *testing.T) {
	cfg := config.NewTrackerForTest("https://codebeamer.example.com/cb")
	client := gt.R1(cfg.Configure()).NoError(t)
	gt.Value(t, client).NotNil()
}
