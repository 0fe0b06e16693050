// internal/models/project.go
package models

// 页面加载时的默认内容
const (
	SeedTitle = "Mazaak Masti"
)

var seedDialogues = []string{
	"Namaste dosto! Aaj hum ek mazedaar kahani sunayenge.",
	"Ek chhotu bandar aur uski funny harkatein!",
}

// Project 标题加有序场景列表，场景顺序即播放顺序
type Project struct {
	Title  string  `json:"title"`
	Scenes []Scene `json:"scenes"`
}

// GenerateRequest POST /api/generate 的请求体
type GenerateRequest struct {
	Title  string         `json:"title"`
	Scenes []ScenePayload `json:"scenes"`
}

// GenerateResponse 生成成功时的响应体
type GenerateResponse struct {
	VideoURL string `json:"video_url"`
}

// NewSeedProject 创建带两个示例场景的新项目
func NewSeedProject() Project {
	scenes := make([]Scene, 0, len(seedDialogues))
	for _, text := range seedDialogues {
		scenes = append(scenes, NewScene(text, DefaultSceneDuration, MoodHappy))
	}
	return Project{Title: SeedTitle, Scenes: scenes}
}

// Payload 构建请求体；空列表编码为 [] 而不是 null
func (p Project) Payload() GenerateRequest {
	scenes := make([]ScenePayload, 0, len(p.Scenes))
	for _, scene := range p.Scenes {
		scenes = append(scenes, scene.Payload())
	}
	return GenerateRequest{Title: p.Title, Scenes: scenes}
}

// Clone 返回场景切片独立的副本
func (p Project) Clone() Project {
	scenes := make([]Scene, len(p.Scenes))
	copy(scenes, p.Scenes)
	return Project{Title: p.Title, Scenes: scenes}
}

// IndexOf 按标识查找场景位置，找不到返回 -1
func (p Project) IndexOf(sceneID string) int {
	for i, scene := range p.Scenes {
		if scene.ID == sceneID {
			return i
		}
	}
	return -1
}
