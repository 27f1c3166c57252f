package player

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aether-player/aether/log"
)

// sanitizeTarget rejects paths that would confuse a command line.
func sanitizeTarget(path string) error {
	p := strings.TrimSpace(path)
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if strings.ContainsAny(p, "\x00\n\r") {
		return fmt.Errorf("invalid control characters in path")
	}
	return nil
}

// ShowImage displays path fullscreen in a separate looping viewer, replacing the previous one.
// The viewer is independent of the playback engine.
func (s *Supervisor) ShowImage(path string) error {
	if err := sanitizeTarget(path); err != nil {
		return err
	}

	s.viewerMu.Lock()
	defer s.viewerMu.Unlock()

	s.closeViewer()

	cmd := exec.Command(s.opts.Binary, ImageArgs(path)...)
	cmd.SysProcAttr = sysProcAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start image viewer: %w", err)
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	s.viewer, s.viewerCh = cmd, done
	log.Infof("player: showing image %s", path)
	return nil
}

// CloseImage terminates the image viewer, if any.
func (s *Supervisor) CloseImage() {
	s.viewerMu.Lock()
	defer s.viewerMu.Unlock()
	s.closeViewer()
}

func (s *Supervisor) closeViewer() {
	if s.viewer == nil {
		return
	}

	_ = terminateProcess(s.viewer)
	select {
	case <-s.viewerCh:
	case <-time.After(terminateGrace):
		_ = killProcess(s.viewer)
		<-s.viewerCh
	}
	s.viewer, s.viewerCh = nil, nil
}
