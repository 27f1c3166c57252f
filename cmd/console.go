package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aether-player/aether/color"
	"github.com/aether-player/aether/cue"
	"github.com/aether-player/aether/enhance"
	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/icon"
	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/playback"
	"github.com/aether-player/aether/style"
	"github.com/aether-player/aether/util"
	"github.com/chzyer/readline"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Player is the set of operations the console drives.
type Player interface {
	Play(path string, start mo.Option[float64]) error
	TogglePause() error
	Stop() error
	Seek(target float64) error
	Navigate(d playback.Direction) error
	SetVolume(v int) playback.VolumeResult
	Status() playback.Snapshot
	Timeline() []cue.Track
	ApplyEnhancement(name string) error
	UpdateCustomEnhancement(values map[string]float64) error
	CustomEnhancement() enhance.Params
}

var errUsage = errors.New("usage")

type consoleCommand struct {
	name    string
	aliases []string
	usage   string
	help    string
	run     func(c *console, args string) error
}

type console struct {
	player Player
	root   string
	out    io.Writer
}

func newConsole(p Player, root string, out io.Writer) *console {
	return &console{player: p, root: root, out: out}
}

var consoleCommands []consoleCommand

func init() {
	consoleCommands = []consoleCommand{
		{name: "play", usage: "play <path> [start]", help: "play a file relative to the media root, optionally from a position", run: (*console).play},
		{name: "pause", aliases: []string{"p"}, usage: "pause", help: "toggle pause", run: (*console).pause},
		{name: "stop", usage: "stop", help: "stop playback and the engine", run: (*console).stop},
		{name: "seek", usage: "seek <seconds|m:ss>", help: "seek within the track or CUE sub-track", run: (*console).seek},
		{name: "next", aliases: []string{"n"}, usage: "next", help: "next track or sub-track", run: navigateTo(playback.Next)},
		{name: "prev", aliases: []string{"previous"}, usage: "prev", help: "previous track, or rewind", run: navigateTo(playback.Previous)},
		{name: "volume", aliases: []string{"vol"}, usage: "volume [0-100]", help: "show or set the volume", run: (*console).volume},
		{name: "status", aliases: []string{"s"}, usage: "status [json]", help: "show what is playing", run: (*console).status},
		{name: "cue", usage: "cue", help: "show the CUE timeline of the current file", run: (*console).cue},
		{name: "preset", usage: "preset [name]", help: "show or switch the enhancement preset", run: (*console).preset},
		{name: "presets", usage: "presets", help: "list enhancement presets", run: (*console).presets},
		{name: "custom", usage: "custom [param=value ...]", help: "show or change custom enhancement parameters", run: (*console).custom},
		{name: "clear", usage: "clear", help: "clear the screen", run: func(*console, string) error { util.ClearScreen(); return nil }},
		{name: "help", aliases: []string{"?"}, usage: "help", help: "show this list", run: (*console).help},
		{name: "quit", aliases: []string{"exit", "q"}, usage: "quit", help: "leave the console"},
	}
}

func findCommand(name string) (consoleCommand, bool) {
	return lo.Find(consoleCommands, func(c consoleCommand) bool {
		return c.name == name || lo.Contains(c.aliases, name)
	})
}

func closestCommand(name string) string {
	return lo.MinBy(lo.Map(consoleCommands, func(c consoleCommand, _ int) string { return c.name }), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
}

// run executes one console line and reports whether the console should exit.
func (c *console) run(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}

	name, args, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	command, ok := findCommand(name)
	if !ok {
		c.fail(fmt.Errorf("unknown command %s, did you mean %s?", style.Fg(color.Red)(name), style.Fg(color.Yellow)(closestCommand(name))))
		return false
	}
	if command.run == nil {
		return true
	}

	log.Debugf("console: %s", line)
	if err := command.run(c, args); err != nil {
		if errors.Is(err, errUsage) {
			err = fmt.Errorf("usage: %s", command.usage)
		}
		c.fail(err)
	}
	return false
}

func (c *console) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}

func (c *console) fail(err error) {
	log.Warn(err)
	c.printf("%s %s\n", style.Fg(style.ErrorColor)(icon.Get(icon.Fail)), err)
}

func (c *console) ok(format string, a ...any) {
	c.printf("%s %s\n", style.Fg(style.SuccessColor)(icon.Get(icon.Success)), fmt.Sprintf(format, a...))
}

// parsePlay splits "path [start]". A trailing token is a start position only if it parses as one.
func parsePlay(args string) (string, mo.Option[float64], error) {
	if args == "" {
		return "", mo.None[float64](), errUsage
	}

	if i := strings.LastIndex(args, " "); i > 0 {
		if start, err := parseSeconds(args[i+1:]); err == nil {
			return strings.TrimSpace(args[:i]), mo.Some(start), nil
		}
	}
	return args, mo.None[float64](), nil
}

// parseSeconds accepts plain seconds or [h:]m:ss.
func parseSeconds(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		total = total*60 + v
	}
	if total < 0 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return total, nil
}

// parseCustom reads "name=value" pairs.
func parseCustom(args string) (map[string]float64, error) {
	values := make(map[string]float64)
	for _, field := range strings.Fields(args) {
		name, raw, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value, got %q", field)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", name, raw)
		}
		values[name] = v
	}
	return values, nil
}

func (c *console) play(args string) error {
	path, start, err := parsePlay(args)
	if err != nil {
		return err
	}
	if err := c.player.Play(path, start); err != nil {
		return err
	}
	c.printStatus(c.player.Status())
	return nil
}

func (c *console) pause(string) error {
	if err := c.player.TogglePause(); err != nil {
		return err
	}
	c.printStatus(c.player.Status())
	return nil
}

func (c *console) stop(string) error {
	if err := c.player.Stop(); err != nil {
		return err
	}
	c.printf("%s %s\n", icon.Get(icon.Stop), style.State(playback.Stopped.String()))
	return nil
}

func (c *console) seek(args string) error {
	if args == "" {
		return errUsage
	}
	target, err := parseSeconds(args)
	if err != nil {
		return err
	}
	if err := c.player.Seek(target); err != nil {
		return err
	}
	c.printStatus(c.player.Status())
	return nil
}

func navigateTo(d playback.Direction) func(*console, string) error {
	return func(c *console, _ string) error {
		if err := c.player.Navigate(d); err != nil {
			return err
		}
		c.printStatus(c.player.Status())
		return nil
	}
}

func (c *console) volume(args string) error {
	if args == "" {
		c.printf("%s %d\n", icon.Get(icon.Speaker), c.player.Status().Volume)
		return nil
	}

	v, err := strconv.Atoi(args)
	if err != nil {
		return errUsage
	}
	res := c.player.SetVolume(v)
	c.printf("%s %d %s\n", icon.Get(icon.Speaker), res.UserVolume, style.Faint(fmt.Sprintf("(engine %d)", res.EngineVolume)))
	return nil
}

func (c *console) status(args string) error {
	snap := c.player.Status()
	if args == "json" {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		c.printf("%s\n", data)
		return nil
	}
	if args != "" {
		return errUsage
	}
	c.printStatus(snap)
	return nil
}

func statusIcon(s playback.Status) string {
	switch s {
	case playback.Playing:
		return icon.Get(icon.Play)
	case playback.Paused:
		return icon.Get(icon.Pause)
	default:
		return icon.Get(icon.Stop)
	}
}

func (c *console) printStatus(s playback.Snapshot) {
	if s.Status == playback.Stopped {
		c.printf("%s %s  %s %d\n", statusIcon(s.Status), style.State(s.Status.String()), icon.Get(icon.Speaker), s.Volume)
		return
	}

	progress := fmt.Sprintf("%s / %s", cue.FormatTimestamp(s.Position), cue.FormatTimestamp(s.Duration))
	if s.LowConfidence {
		progress += "?"
	}

	c.printf("%s %s  %s  %s  %s  %s %d  %s\n",
		statusIcon(s.Status),
		style.State(s.Status.String()),
		style.Fg(style.TrackColor)(s.Track),
		style.Fg(style.TimeColor)(progress),
		style.Faint(fmt.Sprintf("[%d/%d]", s.PlaylistIndex+1, s.PlaylistLength)),
		icon.Get(icon.Speaker), s.Volume,
		style.Faint(s.Enhancement),
	)

	if t := s.SubTrack; t != nil {
		c.printf("  %s %s\n", icon.Get(icon.Track), trackLine(t.Number, t.Title, t.Performer))
	}
}

func trackLine(number int, title, performer string) string {
	line := fmt.Sprintf("%02d %s", number, title)
	if performer != "" {
		line += " - " + performer
	}
	return line
}

func (c *console) cue(string) error {
	tracks := c.player.Timeline()
	if len(tracks) == 0 {
		c.printf("%s\n", style.Faint("no CUE sheet describes the current file"))
		return nil
	}

	snap := c.player.Status()
	durations := cue.Durations(tracks, snap.FileDuration)
	for i, t := range tracks {
		marker := "  "
		if snap.SubTrack != nil && snap.SubTrack.Number == t.Number {
			marker = style.Fg(style.AccentColor)(icon.Get(icon.Play)) + " "
		}
		c.printf("%s%s  %s  %s\n",
			marker,
			style.Fg(style.TimeColor)(cue.FormatTimestamp(t.RelativeStart)),
			trackLine(t.Number, t.Title, t.Performer),
			style.Faint(cue.FormatTimestamp(durations[i])),
		)
	}
	return nil
}

func (c *console) preset(args string) error {
	if args == "" {
		c.printf("%s\n", c.player.Status().Enhancement)
		return nil
	}

	name := strings.ToLower(args)
	if !enhance.Valid(name) {
		return errUnknownPreset(name)
	}
	if err := c.player.ApplyEnhancement(name); err != nil {
		return err
	}
	c.ok("enhancement %s", style.Fg(style.AccentColor)(name))
	return nil
}

func errUnknownPreset(name string) error {
	closest := lo.MinBy(enhance.Names(), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
	return fmt.Errorf("%w %s, did you mean %s?", enhance.ErrUnknownPreset, style.Fg(color.Red)(name), style.Fg(color.Yellow)(closest))
}

func (c *console) presets(string) error {
	current := c.player.Status().Enhancement
	printPresets(c.out, current)
	return nil
}

func printPresets(out io.Writer, current string) {
	for _, p := range enhance.Named() {
		marker := "  "
		if p.Key == current {
			marker = style.Fg(style.AccentColor)("* ")
		}
		_, _ = fmt.Fprintf(out, "%s%s  %s\n", marker, style.Bold(p.Key), style.Faint(p.Description))
	}
	marker := "  "
	if current == enhance.Custom {
		marker = style.Fg(style.AccentColor)("* ")
	}
	_, _ = fmt.Fprintf(out, "%s%s  %s\n", marker, style.Bold(enhance.Custom), style.Faint("user-tuned parameters"))
}

func (c *console) custom(args string) error {
	if args == "" {
		printParams(c.out, c.player.CustomEnhancement())
		return nil
	}

	values, err := parseCustom(args)
	if err != nil {
		return err
	}
	if err := c.player.UpdateCustomEnhancement(values); err != nil {
		return err
	}
	printParams(c.out, c.player.CustomEnhancement())
	return nil
}

func printParams(out io.Writer, p enhance.Params) {
	values := p.Map()
	names := lo.Keys(values)
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(out, "  %s = %s\n", style.Fg(color.Purple)(name), style.Fg(color.Yellow)(util.FormatFloat(values[name])))
	}
}

func (c *console) help(string) error {
	for _, command := range consoleCommands {
		c.printf("  %-28s %s\n", command.usage, style.Faint(command.help))
	}
	return nil
}

// completer completes command names and, after play, paths under the media root.
func (c *console) completer() *readline.PrefixCompleter {
	items := lo.Map(consoleCommands, func(command consoleCommand, _ int) readline.PrefixCompleterInterface {
		switch command.name {
		case "play":
			return readline.PcItem("play", readline.PcItemDynamic(c.mediaCompletions))
		case "preset":
			return readline.PcItem("preset", lo.Map(enhance.Names(), func(n string, _ int) readline.PrefixCompleterInterface {
				return readline.PcItem(n)
			})...)
		default:
			return readline.PcItem(command.name)
		}
	})
	return readline.NewPrefixCompleter(items...)
}

func (c *console) mediaCompletions(line string) []string {
	_, typed, _ := strings.Cut(strings.TrimLeft(line, " "), " ")
	dir := ""
	if i := strings.LastIndex(typed, "/"); i >= 0 {
		dir = typed[:i+1]
	}

	entries, err := filesystem.API().ReadDir(filepath.Join(c.root, filepath.FromSlash(dir)))
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := dir + e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names
}
