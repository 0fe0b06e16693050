// internal/api/actions.go
package api

import (
	"fmt"

	"github.com/Corphon/SceneVideoMaker/internal/editor"
	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
)

// actionGenerate 不是编辑动作，由生成服务处理
const actionGenerate = "generate"

// ActionMessage websocket 上传的编辑动作
type ActionMessage struct {
	Type  string      `json:"type"`
	Index *int        `json:"index,omitempty"`
	ID    string      `json:"id,omitempty"`
	Field string      `json:"field,omitempty"`
	Value interface{} `json:"value,omitempty"`
	Title *string     `json:"title,omitempty"`
}

// IsGenerate 是否为生成请求
func (m ActionMessage) IsGenerate() bool {
	return m.Type == actionGenerate
}

// ToAction 转换为编辑动作
func (m ActionMessage) ToAction() (editor.Action, error) {
	switch m.Type {
	case "set_title":
		if m.Title == nil {
			return nil, apperrors.NewValidationError("set_title requires title", nil)
		}
		return editor.SetTitle{Title: *m.Title}, nil
	case "add_scene":
		return editor.AddScene{}, nil
	case "update_scene":
		if m.Index == nil {
			return nil, apperrors.NewValidationError("update_scene requires index", nil)
		}
		return editor.UpdateScene{Index: *m.Index, Field: m.Field, Value: m.Value}, nil
	case "update_scene_by_id":
		return editor.UpdateSceneByID{ID: m.ID, Field: m.Field, Value: m.Value}, nil
	case "remove_scene":
		if m.Index == nil {
			return nil, apperrors.NewValidationError("remove_scene requires index", nil)
		}
		return editor.RemoveScene{Index: *m.Index}, nil
	case "remove_scene_by_id":
		return editor.RemoveSceneByID{ID: m.ID}, nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown action type %q", m.Type), nil)
	}
}
