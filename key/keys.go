// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Media Library - these keys locate the media tree all playback paths are resolved against.
const (
	MediaRoot = "media.root"
)

// Playback Engine - these keys configure how the external engine process is launched and addressed.
const (
	EngineBinary        = "engine.binary"
	EngineProbeBinary   = "engine.probe_binary"
	EngineSocket        = "engine.socket"
	EngineAudioDevice   = "engine.audio_device"
	EngineAudioPriority = "engine.audio_priority"
	EngineSoftvolMax    = "engine.softvol_max"
	EngineExtraArgs     = "engine.extra_args"
)

// Player Behaviour - these keys govern user-facing playback defaults.
const (
	PlayerStartupVolumeCap = "player.startup_volume_cap"
	PlayerDefaultVolume    = "player.default_volume"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite  = "logs.write"
	LogsLevel  = "logs.level"
	LogsJson   = "logs.json"
	LogsStderr = "logs.stderr"
)

// CLI Execution Environment - these flags and settings govern the console behaviour.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)
