package kudos

import (
	"errors"
	"time"
)

var (
	// ErrReceiverNotFound signals that the addressed profile does not exist.
	ErrReceiverNotFound = errors.New("receiver profile not found")
	// ErrSelfKudos rejects kudos addressed to the author.
	ErrSelfKudos = errors.New("cannot send kudos to yourself")
	// ErrInvalidColor indicates an unsupported color option.
	ErrInvalidColor = errors.New("invalid color")
)

// Color is one of the decoration palettes of a kudos.
type Color string

const (
	ColorRed     Color = "red"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorAmber   Color = "amber"
	ColorBlack   Color = "black"
	ColorRainbow Color = "lgbtqp"
)

// Valid reports whether c is a known color.
func (c Color) Valid() bool {
	switch c {
	case ColorRed, ColorGreen, ColorBlue, ColorAmber, ColorBlack, ColorRainbow:
		return true
	}
	return false
}

// Sort selects the ordering of kudos listings.
type Sort string

const (
	SortDate   Sort = "date"
	SortAuthor Sort = "author"
	SortEmoji  Sort = "emoji"
)

// Kudos is a decorated message from one profile to another.
type Kudos struct {
	ID                string    `json:"id"`
	Emoji             string    `json:"emoji"`
	Message           string    `json:"message"`
	BackgroundColor   Color     `json:"backgroundColor"`
	TextColor         Color     `json:"textColor"`
	AuthorProfileID   string    `json:"authorProfileId"`
	ReceiverProfileID string    `json:"receiverProfileId"`
	CreatedAt         time.Time `json:"createdAt"`

	AuthorName   string `json:"authorName,omitempty"`
	ReceiverName string `json:"receiverName,omitempty"`
}
