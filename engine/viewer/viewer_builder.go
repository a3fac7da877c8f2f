package viewer

import (
	"log"

	"github.com/marroen/ImmersiveSeating/common"
	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/config"
	"github.com/marroen/ImmersiveSeating/engine/navigator"
	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/status"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
type ViewerBuilderOption func(*viewerImpl)

// WithConfig builds the viewer from a loaded config.
//
// Parameters:
//   - cfg: the config
//
// Returns:
//   - ViewerBuilderOption: a function that sets the config
func WithConfig(cfg *config.Config) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.cfg = cfg
	}
}

// WithCameraPose sets the camera's starting pose, which becomes the overview pose on Start.
//
// Parameters:
//   - pose: the pose
//
// Returns:
//   - ViewerBuilderOption: a function that sets the pose
func WithCameraPose(pose common.Pose) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.pose = pose
	}
}

// WithStartMode overrides the config's starting drive mode.
//
// Parameters:
//   - mode: the mode
//
// Returns:
//   - ViewerBuilderOption: a function that sets the mode
func WithStartMode(mode rotation_driver.Mode) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.startMode = mode
		v.startModeSet = true
	}
}

// WithWriteObserver is called for every camera write with the frame number and the writer.
//
// Parameters:
//   - fn: the observer
//
// Returns:
//   - ViewerBuilderOption: a function that sets the observer
func WithWriteObserver(fn func(frame uint64, w camera.Writer)) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.observer = fn
	}
}

// WithStatusSink sets where user-facing status text goes.
//
// Parameters:
//   - sink: the sink
//
// Returns:
//   - ViewerBuilderOption: a function that sets the sink
func WithStatusSink(sink status.Sink) ViewerBuilderOption {
	return func(v *viewerImpl) {
		if sink != nil {
			v.sink = sink
		}
	}
}

// WithUI sets the navigator's display collaborator. Without it UI changes are reported on the status sink.
//
// Parameters:
//   - ui: the UI
//
// Returns:
//   - ViewerBuilderOption: a function that sets the UI
func WithUI(ui navigator.UI) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.ui = ui
	}
}

// WithLogger sets the logger shared by every component.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - ViewerBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) ViewerBuilderOption {
	return func(v *viewerImpl) {
		if l != nil {
			v.logger = l
		}
	}
}
