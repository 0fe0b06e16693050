package editor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/models"
)

// 默认的生成失败提示
const DefaultGenerationError = "Error generating video"

var (
	ErrIndexOutOfRange      = apperrors.NewValidationError("scene index out of range", nil)
	ErrSceneNotFound        = apperrors.NewNotFoundError("scene not found", nil)
	ErrGenerationInProgress = apperrors.NewConflictError("video generation already in progress", nil)
)

// Reduce returns the state that follows s after a. On error s is returned
// unchanged and Version is not bumped.
func Reduce(s State, a Action) (State, error) {
	next, err := reduce(s, a)
	if err != nil {
		return s, err
	}
	next.Version = s.Version + 1
	return next, nil
}

func reduce(s State, a Action) (State, error) {
	switch act := a.(type) {
	case SetTitle:
		s.Project = models.Project{Title: act.Title, Scenes: s.Project.Scenes}
		return s, nil

	case AddScene:
		scenes := make([]models.Scene, len(s.Project.Scenes), len(s.Project.Scenes)+1)
		copy(scenes, s.Project.Scenes)
		s.Project = models.Project{
			Title:  s.Project.Title,
			Scenes: append(scenes, models.NewBlankScene()),
		}
		return s, nil

	case UpdateScene:
		return updateAt(s, act.Index, act.Field, act.Value)

	case UpdateSceneByID:
		idx := s.Project.IndexOf(act.ID)
		if idx < 0 {
			return s, ErrSceneNotFound
		}
		return updateAt(s, idx, act.Field, act.Value)

	case RemoveScene:
		return removeAt(s, act.Index), nil

	case RemoveSceneByID:
		idx := s.Project.IndexOf(act.ID)
		if idx < 0 {
			return s, ErrSceneNotFound
		}
		return removeAt(s, idx), nil

	case GenerationStarted:
		if s.Generating() {
			return s, ErrGenerationInProgress
		}
		s.Status = StatusGenerating
		s.Error = ""
		s.VideoURL = ""
		return s, nil

	case GenerationSucceeded:
		s.Status = StatusReady
		s.VideoURL = act.VideoURL
		s.Error = ""
		return s, nil

	case GenerationFailed:
		msg := act.Message
		if msg == "" {
			msg = DefaultGenerationError
		}
		s.Status = StatusFailed
		s.VideoURL = ""
		s.Error = msg
		return s, nil

	default:
		return s, apperrors.NewValidationError(fmt.Sprintf("unknown action %T", a), nil)
	}
}

func updateAt(s State, idx int, field string, value any) (State, error) {
	if idx < 0 || idx >= len(s.Project.Scenes) {
		return s, ErrIndexOutOfRange
	}

	scene, err := applyField(s.Project.Scenes[idx], field, value)
	if err != nil {
		return s, err
	}

	scenes := make([]models.Scene, len(s.Project.Scenes))
	copy(scenes, s.Project.Scenes)
	scenes[idx] = scene
	s.Project = models.Project{Title: s.Project.Title, Scenes: scenes}
	return s, nil
}

func removeAt(s State, idx int) State {
	if idx < 0 || idx >= len(s.Project.Scenes) {
		return s
	}
	scenes := make([]models.Scene, 0, len(s.Project.Scenes)-1)
	scenes = append(scenes, s.Project.Scenes[:idx]...)
	scenes = append(scenes, s.Project.Scenes[idx+1:]...)
	s.Project = models.Project{Title: s.Project.Title, Scenes: scenes}
	return s
}

// applyField sets one field on a copy of scene.
func applyField(scene models.Scene, field string, value any) (models.Scene, error) {
	switch field {
	case models.FieldTextHi:
		text, ok := value.(string)
		if !ok {
			return scene, apperrors.NewValidationError(fmt.Sprintf("text_hi must be a string, got %T", value), nil)
		}
		scene.TextHi = text

	case models.FieldDuration:
		d, err := toNumber(value)
		if err != nil {
			return scene, apperrors.NewValidationError("duration must be a number", err)
		}
		scene.Duration = d

	case models.FieldMood:
		str, ok := value.(string)
		if !ok {
			return scene, apperrors.NewValidationError(fmt.Sprintf("mood must be a string, got %T", value), nil)
		}
		mood, err := models.ParseMood(str)
		if err != nil {
			return scene, apperrors.NewValidationError("invalid mood", err)
		}
		scene.Mood = mood

	default:
		return scene, apperrors.NewValidationError(fmt.Sprintf("unknown scene field %q", field), nil)
	}
	return scene, nil
}

// toNumber accepts what a numeric form input can produce. An empty string is 0.
func toNumber(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, nil
		}
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}
