// Package icon renders UI symbols and feedback indicators in the variant chosen by the user.
//
// Icons can be displayed as emoji, plain ASCII or Unicode squares.
package icon

import (
	"github.com/aether-player/aether/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, plain, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota
	Success
	Progress
	Play
	Pause
	Stop
	Track
	Album
	Speaker
)

type iconDef struct {
	emoji   string
	plain   string
	squares string
}

var icons = map[Icon]*iconDef{
	Fail:     {emoji: "💀", plain: "x", squares: "🟥"},
	Success:  {emoji: "🎉", plain: "✓", squares: "🟩"},
	Progress: {emoji: "⏳", plain: "~", squares: "🟦"},
	Play:     {emoji: "▶️", plain: ">", squares: "🟩"},
	Pause:    {emoji: "⏸️", plain: "||", squares: "🟨"},
	Stop:     {emoji: "⏹️", plain: "[]", squares: "⬛"},
	Track:    {emoji: "🎵", plain: "#", squares: "🟪"},
	Album:    {emoji: "💿", plain: "@", squares: "🟫"},
	Speaker:  {emoji: "🔊", plain: "vol", squares: "🟧"},
}

func (d *iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for an Icon in the configured variant.
func Get(i Icon) string {
	if d, ok := icons[i]; ok {
		return d.get()
	}
	return ""
}
