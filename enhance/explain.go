package enhance

// Explanation describes one filter stage and its knobs for the user.
type Explanation struct {
	Name        string
	Description string
	Params      map[string]string
}

var explanations = map[string]Explanation{
	"crossfeed": {
		Name:        "Crossfeed",
		Description: "Blends the left and right channels the way speakers reach both ears. Removes the in-head feeling of headphones.",
		Params: map[string]string{
			"strength": "Effect strength (0.0-1.0): higher blends more",
			"range":    "Frequency range (0.0-1.0): which frequencies are processed",
		},
	},
	"haas": {
		Name:        "Haas effect",
		Description: "Widens the stereo image with tiny inter-channel delays, like sound arriving from distant sources.",
		Params: map[string]string{
			"level_out": "Output level (0.0-3.0): overall loudness of the effect",
			"side_gain": "Side gain (0.0-3.0): width of the stereo image",
		},
	},
	"extrastereo": {
		Name:        "Extra stereo",
		Description: "Increases the difference between the left and right channels.",
		Params: map[string]string{
			"multiplier": "Multiplier (0.0-3.0): strength of the widening",
		},
	},
	"surround": {
		Name:        "Surround",
		Description: "Creates an illusion of multichannel sound from a stereo source.",
		Params: map[string]string{
			"level_out": "Output level (0.0-3.0): intensity of the surround effect",
		},
	},
}

// Explain returns the explanation of a filter stage; unknown stages get a generic one.
func Explain(effect string) Explanation {
	if e, ok := explanations[effect]; ok {
		return e
	}
	return Explanation{Name: effect, Description: "Audio effect for enhancing the sound"}
}

// Effects lists the explained filter stages in chain order.
func Effects() []string {
	return []string{"crossfeed", "haas", "extrastereo", "surround"}
}
