package constant

// Media extensions grouped by the way the engine handles them.
var (
	AudioExtensions = []string{".flac", ".wav", ".wv", ".ape", ".dsf", ".dff", ".mp3", ".aac", ".ogg", ".m4a"}
	VideoExtensions = []string{".mkv", ".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm"}
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff"}
	TextExtensions  = []string{".txt", ".log", ".nfo", ".md", ".readme", ".info", ".cue", ".m3u", ".pls"}

	// DSDExtensions need longer engine warm-up before duration is reported.
	DSDExtensions = []string{".dsf", ".dff"}
)

// CueExtension marks CUE sheets.
const CueExtension = ".cue"
