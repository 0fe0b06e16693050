package editor

// Action is a user or system event applied by Reduce.
type Action interface {
	actionName() string
}

type SetTitle struct {
	Title string
}

// AddScene appends a blank 5 second happy scene.
type AddScene struct{}

// UpdateScene replaces one field of the scene at Index.
type UpdateScene struct {
	Index int
	Field string
	Value any
}

// UpdateSceneByID is UpdateScene addressed by the scene's stable id.
type UpdateSceneByID struct {
	ID    string
	Field string
	Value any
}

// RemoveScene drops the scene at Index. Out of range is a no-op.
type RemoveScene struct {
	Index int
}

type RemoveSceneByID struct {
	ID string
}

type GenerationStarted struct{}

type GenerationSucceeded struct {
	VideoURL string
}

type GenerationFailed struct {
	Message string
}

func (SetTitle) actionName() string            { return "set_title" }
func (AddScene) actionName() string            { return "add_scene" }
func (UpdateScene) actionName() string         { return "update_scene" }
func (UpdateSceneByID) actionName() string     { return "update_scene_by_id" }
func (RemoveScene) actionName() string         { return "remove_scene" }
func (RemoveSceneByID) actionName() string     { return "remove_scene_by_id" }
func (GenerationStarted) actionName() string   { return "generation_started" }
func (GenerationSucceeded) actionName() string { return "generation_succeeded" }
func (GenerationFailed) actionName() string    { return "generation_failed" }

// Name returns the wire name of an action, used in logs and websocket messages.
func Name(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}
