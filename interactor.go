package view3d

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownCommand is returned by TriggerCommand when no callback is
// registered for the action word.
var ErrUnknownCommand = errors.New("view3d: unknown command")

// ErrCommandExists is returned by AddCommand when the action word is
// already taken.
var ErrCommandExists = errors.New("view3d: command already exists")

// CommandFn handles one triggered command. args are the whitespace-split
// words after the action word.
type CommandFn func(args []string) error

// timerCallback is one repeating callback driven by the interaction loop.
type timerCallback struct {
	interval time.Duration
	next     time.Time
	fn       func()
}

// Interactor drives a window from commands, timers and animation playback.
// Everything runs on the goroutine calling Start; only Stop may be called
// from elsewhere.
//
// Built-in commands (registered at construction):
//
//	azimuth_camera <degrees>
//	elevation_camera <degrees>
//	roll_camera <degrees>
//	zoom_camera <factor>
//	reset_camera
//	toggle_animation
//
// The camera commands respect DisableCameraMovement.
type Interactor struct {
	win *Window

	commands map[string]CommandFn

	timers      map[uint64]*timerCallback
	nextTimerID uint64

	animating     bool
	animIndex     int
	animTime      float64
	lastFrame     time.Time
	cameraAllowed bool
	needsRender   bool

	stop chan struct{}
}

// cheatSheetLines documents the built-in command vocabulary in the
// on-screen help block.
var cheatSheetLines = []string{
	"azimuth_camera <deg>    orbit left/right",
	"elevation_camera <deg>  orbit up/down",
	"roll_camera <deg>       roll the view",
	"zoom_camera <factor>    zoom in/out",
	"reset_camera            frame the scene",
	"toggle_animation        play/pause",
}

// NewInteractor returns an interactor bound to win with the built-in
// commands registered and camera movement enabled.
func NewInteractor(win *Window) *Interactor {
	i := &Interactor{
		win:           win,
		commands:      make(map[string]CommandFn),
		timers:        make(map[uint64]*timerCallback),
		cameraAllowed: true,
		stop:          make(chan struct{}),
	}
	i.registerBuiltins()
	win.renderer.SetCheatSheetInfo(cheatSheetLines)
	return i
}

func (i *Interactor) registerBuiltins() {
	i.commands["azimuth_camera"] = i.cameraCommand(func(v float64) {
		i.win.Camera().Azimuth(float32(v))
	})
	i.commands["elevation_camera"] = i.cameraCommand(func(v float64) {
		i.win.Camera().Elevation(float32(v))
	})
	i.commands["roll_camera"] = i.cameraCommand(func(v float64) {
		i.win.Camera().Roll(float32(v))
	})
	i.commands["zoom_camera"] = i.cameraCommand(func(v float64) {
		i.win.Camera().Zoom(float32(v))
	})
	i.commands["reset_camera"] = func([]string) error {
		if !i.cameraAllowed {
			return nil
		}
		i.win.ResetCamera()
		i.needsRender = true
		return nil
	}
	i.commands["toggle_animation"] = func([]string) error {
		i.ToggleAnimation()
		return nil
	}
}

// cameraCommand wraps a one-float camera mutation into a CommandFn that
// honors the camera movement gate.
func (i *Interactor) cameraCommand(apply func(v float64)) CommandFn {
	return func(args []string) error {
		if !i.cameraAllowed {
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("view3d: command wants exactly one value, got %d", len(args))
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("view3d: command argument %q: %w", args[0], err)
		}
		apply(v)
		i.needsRender = true
		return nil
	}
}

// AddCommand registers a callback under an action word. Registering an
// action twice fails with ErrCommandExists; remove the old one first.
func (i *Interactor) AddCommand(action string, fn CommandFn) error {
	if _, ok := i.commands[action]; ok {
		return fmt.Errorf("%w: %q", ErrCommandExists, action)
	}
	i.commands[action] = fn
	return nil
}

// RemoveCommand drops the callback for an action word. Unknown actions are
// ignored.
func (i *Interactor) RemoveCommand(action string) {
	delete(i.commands, action)
}

// Commands returns the registered action words, built-ins included.
func (i *Interactor) Commands() []string {
	actions := make([]string, 0, len(i.commands))
	for a := range i.commands {
		actions = append(actions, a)
	}
	return actions
}

// TriggerCommand splits the command on whitespace and invokes the callback
// registered for the first word with the remaining words as arguments.
// Empty commands do nothing; unknown actions fail with ErrUnknownCommand.
func (i *Interactor) TriggerCommand(command string) error {
	words := strings.Fields(command)
	if len(words) == 0 {
		return nil
	}
	fn, ok := i.commands[words[0]]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, words[0])
	}
	if err := fn(words[1:]); err != nil {
		return fmt.Errorf("view3d: command %q: %w", words[0], err)
	}
	return nil
}

// CreateTimerCallback registers fn to run every interval while the
// interaction loop is running, and returns the id used to remove it.
func (i *Interactor) CreateTimerCallback(interval time.Duration, fn func()) uint64 {
	if interval <= 0 {
		interval = time.Second
	}
	i.nextTimerID++
	id := i.nextTimerID
	i.timers[id] = &timerCallback{
		interval: interval,
		next:     time.Now().Add(interval),
		fn:       fn,
	}
	return id
}

// RemoveTimerCallback drops a timer callback by id.
func (i *Interactor) RemoveTimerCallback(id uint64) error {
	if _, ok := i.timers[id]; !ok {
		return fmt.Errorf("view3d: no timer callback with id %d", id)
	}
	delete(i.timers, id)
	return nil
}

// StartAnimation begins playback of the scene's first animation. Playback
// advances inside the interaction loop; each step re-applies the animation,
// updates the animation name overlay and renders a frame.
func (i *Interactor) StartAnimation() {
	if i.animating {
		return
	}
	i.animating = true
	i.lastFrame = time.Now()
	scn := i.win.Scene()
	if scn != nil {
		i.win.SetAnimationNameInfo(scn.AnimationName(i.animIndex))
	}
}

// StopAnimation halts playback. The scene keeps the pose of the last
// applied frame.
func (i *Interactor) StopAnimation() {
	if !i.animating {
		return
	}
	i.animating = false
	i.win.SetAnimationNameInfo("")
}

// ToggleAnimation starts playback when stopped and stops it when playing.
func (i *Interactor) ToggleAnimation() {
	if i.animating {
		i.StopAnimation()
	} else {
		i.StartAnimation()
	}
}

// IsPlayingAnimation reports whether playback is active.
func (i *Interactor) IsPlayingAnimation() bool { return i.animating }

// EnableCameraMovement re-enables the built-in camera commands.
func (i *Interactor) EnableCameraMovement() { i.cameraAllowed = true }

// DisableCameraMovement turns the built-in camera commands into no-ops,
// for hosts that drive the camera themselves.
func (i *Interactor) DisableCameraMovement() { i.cameraAllowed = false }

// loopInterval paces the interaction loop at roughly 30 frames per second.
const loopInterval = 33 * time.Millisecond

// Start runs the interaction loop on the calling goroutine: it fires due
// timer callbacks, advances animation playback and renders when something
// changed. It blocks until Stop is called (returns nil) or the context is
// canceled (returns the context error). A stopped interactor cannot be
// restarted; create a new one.
func (i *Interactor) Start(ctx context.Context) error {
	ticker := time.NewTicker(loopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-i.stop:
			return nil
		case now := <-ticker.C:
			i.step(now)
		}
	}
}

// Stop ends a running Start loop. Safe to call from another goroutine and
// more than once.
func (i *Interactor) Stop() {
	select {
	case <-i.stop:
	default:
		close(i.stop)
	}
}

// step runs one loop iteration: due timers, animation advance, render.
func (i *Interactor) step(now time.Time) {
	for _, t := range i.timers {
		if now.Before(t.next) {
			continue
		}
		t.fn()
		t.next = now.Add(t.interval)
	}

	if i.animating {
		i.animTime += now.Sub(i.lastFrame).Seconds()
		i.lastFrame = now
		if scn := i.win.Scene(); scn != nil {
			scn.ApplyAnimation(i.animIndex, i.animTime)
		}
		i.needsRender = true
	}

	if i.needsRender {
		i.needsRender = false
		i.win.Render()
	}
}
