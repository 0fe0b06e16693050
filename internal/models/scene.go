// internal/models/scene.go
package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Mood 场景情绪
type Mood string

const (
	MoodHappy Mood = "happy"
	MoodSad   Mood = "sad"
)

// 表单对时长的约束（秒），服务端不做强制
const (
	DefaultSceneDuration = 5.0
	MinSceneDuration     = 2.0
	MaxSceneDuration     = 60.0
)

// 场景可编辑字段名，与请求体字段一致
const (
	FieldTextHi   = "text_hi"
	FieldDuration = "duration"
	FieldMood     = "mood"
)

// Moods 返回所有可选情绪，顺序即下拉框顺序
func Moods() []Mood {
	return []Mood{MoodHappy, MoodSad}
}

// ParseMood 解析情绪字符串
func ParseMood(value string) (Mood, error) {
	switch Mood(strings.TrimSpace(value)) {
	case MoodHappy:
		return MoodHappy, nil
	case MoodSad:
		return MoodSad, nil
	default:
		return "", fmt.Errorf("unknown mood %q", value)
	}
}

// Scene 表示生成视频中的一个片段
type Scene struct {
	ID       string  `json:"id"` // 创建时分配的稳定标识，不随请求发送
	TextHi   string  `json:"text_hi"`
	Duration float64 `json:"duration"`
	Mood     Mood    `json:"mood"`
}

// NewScene 创建带新标识的场景
func NewScene(textHi string, duration float64, mood Mood) Scene {
	return Scene{
		ID:       uuid.NewString(),
		TextHi:   textHi,
		Duration: duration,
		Mood:     mood,
	}
}

// NewBlankScene 创建"添加场景"按钮对应的默认场景
func NewBlankScene() Scene {
	return NewScene("", DefaultSceneDuration, MoodHappy)
}

// ScenePayload 发送给生成服务的场景格式
type ScenePayload struct {
	TextHi   string  `json:"text_hi"`
	Duration float64 `json:"duration"`
	Mood     Mood    `json:"mood"`
}

// Payload 去掉本地标识后的请求格式
func (s Scene) Payload() ScenePayload {
	return ScenePayload{
		TextHi:   s.TextHi,
		Duration: s.Duration,
		Mood:     s.Mood,
	}
}
