package player

import (
	"fmt"
	"math"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/aether-player/aether/log"
	"github.com/samber/mo"
)

const (
	socketWaitRetries = 50
	socketWaitDelay   = 100 * time.Millisecond
	stopSettle        = 100 * time.Millisecond
	terminateGrace    = 2 * time.Second
)

// VolumeScale converts the user 0-100 volume into engine volume.
const VolumeScale = 1.3

// EngineVolume converts a user volume into the engine scale.
func EngineVolume(user int) int {
	return int(math.Round(float64(user) * VolumeScale))
}

// UserVolume converts an engine volume back into the user scale, clamped to 0-100.
func UserVolume(engine float64) int {
	v := int(math.Round(engine / VolumeScale))
	return max(0, min(100, v))
}

// StartupSource provides the persisted choices baked into the engine command line.
type StartupSource interface {
	StartupVolume() int
	FilterChain() string
}

// Options configures the supervised engine.
type Options struct {
	Binary      string
	Socket      string
	AudioDevice string
	Priorities  []string
	SoftvolMax  int
	Extra       []string
}

// Supervisor owns the single engine process and its control channel.
type Supervisor struct {
	opts    Options
	startup StartupSource

	mu     sync.Mutex
	cmd    *exec.Cmd
	exited chan struct{}
	conn   *Conn

	viewerMu sync.Mutex
	viewer   *exec.Cmd
	viewerCh chan struct{}
}

// NewSupervisor returns a supervisor. Nothing is started until EnsureRunning.
func NewSupervisor(opts Options) *Supervisor {
	return &Supervisor{opts: opts, conn: NewConn(opts.Socket)}
}

// SetStartup registers where startup volume and filters come from.
func (s *Supervisor) SetStartup(src StartupSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startup = src
}

// Socket returns the IPC socket path.
func (s *Supervisor) Socket() string {
	return s.opts.Socket
}

func (s *Supervisor) alive() bool {
	if s.cmd == nil || s.exited == nil {
		return false
	}
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}

// Running reports whether the engine process is alive.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive()
}

func (s *Supervisor) launch() Launch {
	device := s.opts.AudioDevice
	if device == "" {
		device = SelectAudioDevice(ReadCards(), s.opts.Priorities)
	}

	l := Launch{
		Socket:      s.opts.Socket,
		AudioDevice: device,
		SoftvolMax:  s.opts.SoftvolMax,
		VideoOutput: VideoOutput(ProbeDisplay()),
		Extra:       s.opts.Extra,
	}
	if s.startup != nil {
		l.Volume = EngineVolume(s.startup.StartupVolume())
		l.FilterChain = s.startup.FilterChain()
	}
	return l
}

// EnsureRunning starts the engine if it is absent or has exited, and waits for its socket.
func (s *Supervisor) EnsureRunning() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alive() {
		return nil
	}

	killMatching("input-ipc-server=" + s.opts.Socket)
	if err := os.Remove(s.opts.Socket); err == nil {
		log.Debugf("player: removed stale socket %s", s.opts.Socket)
	}
	_ = s.conn.Close()

	l := s.launch()
	args := BuildArgs(l)
	log.WithFields(map[string]any{
		"device": l.AudioDevice,
		"vo":     l.VideoOutput,
		"volume": l.Volume,
		"af":     l.FilterChain,
	}).Info("player: starting engine")

	cmd := exec.Command(s.opts.Binary, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		log.Errorf("player: start %s: %s", s.opts.Binary, err)
		return fmt.Errorf("%w: start %s: %v", ErrEngineUnavailable, s.opts.Binary, err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	s.cmd, s.exited = cmd, exited

	if err := s.waitForSocket(); err != nil {
		log.Errorf("player: %s", err)
		_ = killProcess(cmd)
		<-exited
		s.cmd, s.exited = nil, nil
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	return nil
}

func (s *Supervisor) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-s.exited:
			return fmt.Errorf("engine exited before socket %s appeared", s.opts.Socket)
		default:
		}

		if _, err := os.Stat(s.opts.Socket); err == nil {
			return nil
		}
		time.Sleep(socketWaitDelay)
	}
	return fmt.Errorf("socket %s not ready after %d attempts", s.opts.Socket, socketWaitRetries)
}

// Stop shuts the engine down: stop command, terminate, kill after a grace window.
// The process is always reaped. Strays bound to our socket and legacy framebuffer viewers are killed too.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alive() {
		if _, err := s.conn.Send("stop"); err != nil {
			log.Debugf("player: stop command: %s", err)
		}
		time.Sleep(stopSettle)

		_ = terminateProcess(s.cmd)
		select {
		case <-s.exited:
		case <-time.After(terminateGrace):
			log.Warnf("player: engine ignored terminate, killing")
			_ = killProcess(s.cmd)
			<-s.exited
		}
	}

	_ = s.conn.Close()
	s.cmd, s.exited = nil, nil

	killMatching("input-ipc-server="+s.opts.Socket, "fbi")
	_ = os.Remove(s.opts.Socket)
}

// Command sends a raw command to the running engine.
func (s *Supervisor) Command(args ...any) (*Response, error) {
	if !s.Running() {
		return nil, ErrEngineUnavailable
	}
	return s.conn.Send(args...)
}

// GetProperty reads an engine property; None when the engine reports an error.
func (s *Supervisor) GetProperty(name string) (mo.Option[any], error) {
	if !s.Running() {
		return mo.None[any](), ErrEngineUnavailable
	}
	return s.conn.GetProperty(name)
}

// SetProperty writes an engine property.
func (s *Supervisor) SetProperty(name string, value any) error {
	if !s.Running() {
		return ErrEngineUnavailable
	}
	return s.conn.SetProperty(name, value)
}
