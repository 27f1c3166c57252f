package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aether-player/aether/config"
	"github.com/aether-player/aether/enhance"
	"github.com/aether-player/aether/key"
	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/playback"
	"github.com/aether-player/aether/player"
	"github.com/aether-player/aether/probe"
	"github.com/aether-player/aether/settings"
	"github.com/aether-player/aether/style"
	"github.com/aether-player/aether/util"
	"github.com/aether-player/aether/where"
	"github.com/chzyer/readline"
	"github.com/spf13/viper"
)

// app is the wired playback stack behind the console.
type app struct {
	supervisor *player.Supervisor
	controller *playback.Controller
	cancel     context.CancelFunc
}

func settingsStore() settings.Store {
	return settings.Store{VolumePath: where.Volume(), EnhancementPath: where.Enhancement()}
}

func newProber() probe.Prober {
	return probe.NewCached(probe.FFProbe{Binary: viper.GetString(key.EngineProbeBinary)}, where.Durations())
}

func newSupervisor() *player.Supervisor {
	return player.NewSupervisor(player.Options{
		Binary:      viper.GetString(key.EngineBinary),
		Socket:      config.Socket(),
		AudioDevice: viper.GetString(key.EngineAudioDevice),
		Priorities:  viper.GetStringSlice(key.EngineAudioPriority),
		SoftvolMax:  viper.GetInt(key.EngineSoftvolMax),
		Extra:       viper.GetStringSlice(key.EngineExtraArgs),
	})
}

func newApp() *app {
	store := settingsStore()
	volume := store.LoadVolume(viper.GetInt(key.PlayerStartupVolumeCap), viper.GetInt(key.PlayerDefaultVolume))
	preset := store.LoadPreset(enhance.Valid, enhance.Off)

	supervisor := newSupervisor()
	controller := playback.New(playback.Deps{
		Engine:   supervisor,
		Probe:    newProber(),
		Enhancer: enhance.NewManager(supervisor, store, preset),
		Settings: store,
		Root:     config.MediaRoot(),
		Volume:   volume,
	})
	supervisor.SetStartup(controller)

	ctx, cancel := context.WithCancel(context.Background())
	go controller.Run(ctx)

	log.WithFields(map[string]any{
		"root":   config.MediaRoot(),
		"socket": supervisor.Socket(),
		"volume": volume,
		"preset": preset,
	}).Info("aether: started")

	return &app{supervisor: supervisor, controller: controller, cancel: cancel}
}

func (a *app) shutdown() {
	a.cancel()
	a.supervisor.CloseImage()
	if a.supervisor.Running() {
		a.supervisor.Stop()
	}
	log.Info("aether: shut down")
}

// console reads commands until quit, EOF or an interrupt.
// A terminal gets line editing and history; anything else is read line by line.
func (a *app) console(out io.Writer) error {
	c := newConsole(a.controller, config.MediaRoot(), out)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)
	go func() {
		<-interrupt
		a.shutdown()
		os.Exit(0)
	}()

	if !util.IsTerminal() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if c.run(scanner.Text()) {
				return nil
			}
		}
		return scanner.Err()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          style.Fg(style.AccentColor)(">> "),
		HistoryFile:     historyFile(),
		AutoComplete:    c.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	_, _ = fmt.Fprintln(out, style.Faint("type help for the list of commands"))
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if c.run(line) {
			return nil
		}
	}
}

func historyFile() string {
	return filepath.Join(where.State(), "history")
}
