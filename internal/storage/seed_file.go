// internal/storage/seed_file.go
package storage

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/models"
)

// seedDocument SEED_FILE 的 YAML 结构
type seedDocument struct {
	Title  string      `yaml:"title"`
	Scenes []seedScene `yaml:"scenes"`
}

type seedScene struct {
	TextHi   string  `yaml:"text_hi"`
	Duration float64 `yaml:"duration"`
	Mood     string  `yaml:"mood"`
}

// SeedSource 提供每个新会话的初始项目
type SeedSource struct {
	path string

	mu      sync.RWMutex
	project *models.Project
}

// NewSeedSource 创建初始项目来源；path 为空时使用内置示例
func NewSeedSource(path string) (*SeedSource, error) {
	src := &SeedSource{path: path}
	if path == "" {
		return src, nil
	}

	project, err := LoadSeedFile(path)
	if err != nil {
		return nil, err
	}
	src.project = &project
	return src, nil
}

// NewProject 返回一个新的初始项目，每次调用场景标识都不同
func (s *SeedSource) NewProject() models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.project == nil {
		return models.NewSeedProject()
	}

	scenes := make([]models.Scene, 0, len(s.project.Scenes))
	for _, sc := range s.project.Scenes {
		scenes = append(scenes, models.NewScene(sc.TextHi, sc.Duration, sc.Mood))
	}
	return models.Project{Title: s.project.Title, Scenes: scenes}
}

// Reload 重新读取 SEED_FILE，只影响之后创建的会话
func (s *SeedSource) Reload() error {
	if s.path == "" {
		return nil
	}
	project, err := LoadSeedFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.project = &project
	s.mu.Unlock()
	return nil
}

// LoadSeedFile 读取 YAML 初始项目；缺省时长为 5 秒，缺省情绪为 happy
func LoadSeedFile(path string) (models.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Project{}, apperrors.WrapError(err, "读取初始项目文件失败", apperrors.ErrorTypeError)
	}
	return ParseSeed(data)
}

// ParseSeed 解析 YAML 初始项目
func ParseSeed(data []byte) (models.Project, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Project{}, apperrors.WrapError(err, "解析初始项目失败", apperrors.ErrorTypeValidation)
	}

	scenes := make([]models.Scene, 0, len(doc.Scenes))
	for i, sc := range doc.Scenes {
		duration := sc.Duration
		if duration == 0 {
			duration = models.DefaultSceneDuration
		}

		mood := models.MoodHappy
		if sc.Mood != "" {
			parsed, err := models.ParseMood(sc.Mood)
			if err != nil {
				return models.Project{}, apperrors.WrapError(err, fmt.Sprintf("场景 %d", i+1), apperrors.ErrorTypeValidation)
			}
			mood = parsed
		}

		scenes = append(scenes, models.NewScene(sc.TextHi, duration, mood))
	}

	return models.Project{Title: doc.Title, Scenes: scenes}, nil
}
