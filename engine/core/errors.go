package core

import (
	"errors"
)

var (
	ErrSwapchainRebuilding = errors.New("swapchain resized or recreated, rebuilding")
	ErrNoSuitableDevice    = errors.New("no suitable physical device found")
	ErrMsaaUnsupported     = errors.New("requested multisample count not supported by device")
)
