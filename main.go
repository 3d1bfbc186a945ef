/*
Orbit: a rotating colored cube rendered through Vulkan, driven by a
mouse orbit camera. Configuration is read from orbit.toml next to the
binary.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spinvector/orbit/engine"
	"github.com/spinvector/orbit/engine/config"
	"github.com/spinvector/orbit/engine/core"
)

func main() {
	cfg, err := config.Load("orbit.toml")
	if err != nil {
		core.LogFatal("invalid configuration: %s", err)
	}
	core.LogSetLevel(cfg.Log.Level)

	app, err := engine.New(cfg)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := app.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// On a signal, only raise the window's close flag; the run loop
	// notices it and tears the engine down on the main thread.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		app.RequestClose()
	}()

	if err := app.Run(); err != nil {
		core.LogFatal(err.Error())
	}
}
