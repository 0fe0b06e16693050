package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/models"
)

const sampleSeed = `
title: Bandar Ki Kahani
scenes:
  - text_hi: "Ek baar ki baat hai"
    duration: 8
    mood: sad
  - text_hi: "Phir sab khush ho gaye"
`

func TestParseSeed(t *testing.T) {
	p, err := ParseSeed([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if p.Title != "Bandar Ki Kahani" || len(p.Scenes) != 2 {
		t.Fatalf("unexpected project %+v", p)
	}
	if p.Scenes[0].Duration != 8 || p.Scenes[0].Mood != models.MoodSad {
		t.Errorf("unexpected first scene %+v", p.Scenes[0])
	}
	if p.Scenes[1].Duration != models.DefaultSceneDuration || p.Scenes[1].Mood != models.MoodHappy {
		t.Errorf("expected defaults on second scene, got %+v", p.Scenes[1])
	}
}

func TestParseSeedRejectsUnknownMood(t *testing.T) {
	_, err := ParseSeed([]byte("title: x\nscenes:\n  - mood: angry\n"))
	if !apperrors.IsValidationError(err) {
		t.Fatalf("expected validation error for unknown mood, got %v", err)
	}
	if !strings.HasPrefix(apperrors.MessageOf(err), "场景 1") || !strings.Contains(err.Error(), "angry") {
		t.Fatalf("expected scene position and mood in error, got %v", err)
	}
}

func TestLoadSeedFileMissing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || apperrors.IsValidationError(err) {
		t.Fatalf("expected processing error for missing file, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestSeedSourceFreshIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(sampleSeed), 0644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	src, err := NewSeedSource(path)
	if err != nil {
		t.Fatalf("seed source: %v", err)
	}

	a, b := src.NewProject(), src.NewProject()
	if a.Scenes[0].ID == b.Scenes[0].ID {
		t.Fatalf("expected fresh ids per project")
	}
	if a.Title != "Bandar Ki Kahani" {
		t.Fatalf("unexpected title %q", a.Title)
	}

	if err := os.WriteFile(path, []byte("title: Naya\n"), 0644); err != nil {
		t.Fatalf("rewrite seed: %v", err)
	}
	if err := src.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if p := src.NewProject(); p.Title != "Naya" || len(p.Scenes) != 0 {
		t.Fatalf("unexpected reloaded project %+v", p)
	}
}

func TestSeedSourceBuiltin(t *testing.T) {
	src, err := NewSeedSource("")
	if err != nil {
		t.Fatalf("seed source: %v", err)
	}
	p := src.NewProject()
	if p.Title != models.SeedTitle || len(p.Scenes) != 2 {
		t.Fatalf("expected builtin seed, got %+v", p)
	}
}

func TestNewSeedSourceMissingFile(t *testing.T) {
	if _, err := NewSeedSource(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
