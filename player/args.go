package player

import (
	"fmt"
	"strconv"
)

// Video output drivers.
const (
	VideoGPU  = "gpu"
	VideoNull = "null"
)

// DSDDecoders enables the engine's DSD codecs explicitly; default negotiation misdetects them.
const DSDDecoders = "+dsd_lsbf,+dsd_msbf,+dsd_lsbf_planar,+dsd_msbf_planar"

// Launch holds everything the engine command line depends on.
type Launch struct {
	Socket      string
	AudioDevice string
	Volume      int
	SoftvolMax  int
	VideoOutput string
	FilterChain string
	Extra       []string
}

// BuildArgs assembles the idle-engine command line.
func BuildArgs(l Launch) []string {
	vo := l.VideoOutput
	if vo == "" {
		vo = VideoNull
	}
	device := l.AudioDevice
	if device == "" {
		device = AutoDevice
	}

	args := []string{
		"--idle",
		"--input-ipc-server=" + l.Socket,
		"--audio-device=" + device,
		"--volume=" + strconv.Itoa(l.Volume),
		fmt.Sprintf("--softvol-max=%d", l.SoftvolMax),
		"--vo=" + vo,
		"--hwdec=auto-safe",
		"--vd-lavc-skiploopfilter=all",
		"--vd-lavc-fast",
		"--audio-format=s32",
		"--audio-channels=2",
		"--audio-samplerate=0",
		"--ad=" + DSDDecoders,
	}

	if l.FilterChain != "" {
		args = append(args, "--af="+l.FilterChain)
	}

	return append(args, l.Extra...)
}

// ImageArgs is the command line of the looping fullscreen image viewer.
func ImageArgs(path string) []string {
	return []string{
		"--vo=gpu",
		"--gpu-context=drm",
		"--loop-file=inf",
		"--image-display-duration=inf",
		"--fullscreen",
		"--no-audio",
		"--quiet",
		"--",
		path,
	}
}
