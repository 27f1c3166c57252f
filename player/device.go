package player

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/util"
	"github.com/samber/lo"
)

// AutoDevice lets the engine pick the audio output itself.
const AutoDevice = "auto"

// CardsPath is the ALSA sound card registry.
const CardsPath = "/proc/asound/cards"

var cardLine = regexp.MustCompile(`^\s*(?P<index>\d+)\s+\[(?P<id>[^\]]+)\]\s*:\s*(?P<description>.+)$`)

// Card is one ALSA sound card.
type Card struct {
	Index       int
	ID          string
	Description string
}

// Device returns the engine device string addressing the card's first PCM.
func (c Card) Device() string {
	return fmt.Sprintf("alsa/hw:%d,0", c.Index)
}

// ParseCards extracts the card header lines of an ALSA cards listing.
func ParseCards(text string) []Card {
	var cards []Card
	for _, line := range strings.Split(text, "\n") {
		groups := util.ReGroups(cardLine, line)
		if len(groups) == 0 {
			continue
		}
		index, err := strconv.Atoi(groups["index"])
		if err != nil {
			continue
		}
		cards = append(cards, Card{
			Index:       index,
			ID:          strings.TrimSpace(groups["id"]),
			Description: strings.TrimSpace(groups["description"]),
		})
	}
	return cards
}

// ReadCards parses the system card registry. A missing registry yields no cards.
func ReadCards() []Card {
	data, err := filesystem.API().ReadFile(CardsPath)
	if err != nil {
		return nil
	}
	return ParseCards(string(data))
}

// SelectAudioDevice picks the first card matching the earliest priority pattern.
// Patterns match the card id or description case-insensitively.
func SelectAudioDevice(cards []Card, priorities []string) string {
	for _, pattern := range priorities {
		p := strings.ToLower(pattern)
		card, ok := lo.Find(cards, func(c Card) bool {
			return strings.Contains(strings.ToLower(c.ID), p) ||
				strings.Contains(strings.ToLower(c.Description), p)
		})
		if ok {
			return card.Device()
		}
	}
	return AutoDevice
}
