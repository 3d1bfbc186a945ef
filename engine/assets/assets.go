package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spinvector/orbit/engine/core"
)

// Extensions worth reporting out of the shader directory.
var watchedExtensions = map[string]bool{
	".vert": true,
	".frag": true,
	".spv":  true,
}

/**
 * @brief Watches the shader directory and fires a SHADERS_CHANGED
 * event when a source or compiled binary is touched. Consumers decide
 * whether to reload; the watcher only reports.
 */
type ShaderWatcher struct {
	fsnotify *fsnotify.Watcher

	mutex    sync.Mutex
	lastSeen map[string]time.Time
	isClosed bool

	done chan struct{}
}

func NewShaderWatcher() (*ShaderWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ShaderWatcher{
		fsnotify: fsWatch,
		lastSeen: make(map[string]time.Time),
		done:     make(chan struct{}),
	}, nil
}

// Initialize starts watching the directory. A missing directory is not
// an error; the watcher just stays idle.
func (sw *ShaderWatcher) Initialize(shaderDir string) error {
	if sw.isClosed {
		return errors.New("shader watcher already closed")
	}
	if _, err := os.Stat(shaderDir); err != nil {
		core.LogWarn("shader directory `%s` not found, hot reload disabled", shaderDir)
		return nil
	}
	if err := sw.fsnotify.Add(shaderDir); err != nil {
		return err
	}
	go sw.start()
	return nil
}

func (sw *ShaderWatcher) start() {
	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				sw.handleFileEvent(e.Name)
			}
		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogWarn("shader watcher error: %s", err)
		case <-sw.done:
			return
		}
	}
}

func (sw *ShaderWatcher) handleFileEvent(path string) {
	if !watchedExtensions[filepath.Ext(path)] {
		return
	}

	// Editors fire several writes per save; collapse them.
	sw.mutex.Lock()
	now := time.Now()
	if last, ok := sw.lastSeen[path]; ok && now.Sub(last) < 250*time.Millisecond {
		sw.mutex.Unlock()
		return
	}
	sw.lastSeen[path] = now
	sw.mutex.Unlock()

	core.LogInfo("shader file changed: %s", path)
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_SHADERS_CHANGED,
		Data: path,
	})
}

func (sw *ShaderWatcher) Shutdown() error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	if sw.isClosed {
		return nil
	}
	sw.isClosed = true
	close(sw.done)
	return sw.fsnotify.Close()
}
