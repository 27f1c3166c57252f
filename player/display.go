package player

import (
	"os"
	"os/exec"
	"strings"

	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/log"
)

// FramebufferPath is the primary Linux framebuffer device.
const FramebufferPath = "/dev/fb0"

// Display describes which video sinks were detected.
type Display struct {
	X11         bool
	Framebuffer bool
	LCD         string
}

// ProbeDisplay inspects the environment for a usable video sink.
func ProbeDisplay() Display {
	d := Display{X11: os.Getenv("DISPLAY") != ""}

	if ok, _ := filesystem.API().Exists(FramebufferPath); ok {
		d.Framebuffer = true
		if out, err := exec.Command("vcgencmd", "get_lcd_info").Output(); err == nil {
			d.LCD = strings.TrimSpace(string(out))
		}
	}

	return d
}

// VideoOutput chooses the engine video driver.
// Only a confirmed X display gets GPU output; a bare framebuffer stays free for other consumers.
func VideoOutput(d Display) string {
	if d.X11 {
		return VideoGPU
	}
	if d.Framebuffer {
		log.Infof("player: framebuffer present (lcd %q), keeping engine headless", d.LCD)
	}
	return VideoNull
}
