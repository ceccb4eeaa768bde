// Package render turns a detection result into a display model.
// Rendering is pure: the same result always yields the same model.
package render

import (
	"fmt"
	"strconv"

	"github.com/JaimeStill/cardscan/internal/detection"
	"github.com/JaimeStill/cardscan/pkg/formatting"
)

// Fixed display text.
const (
	NoCardsTitle    = "No Cards Detected"
	NoCardsAdvisory = "No credit cards were found in the image. Please try a different image with better lighting and focus."
	NotFound        = "Not found"
	NotAvailable    = "N/A"
	ValidLabel      = "Valid"
	InvalidLabel    = "Invalid"
)

// Kind distinguishes the two node shapes.
type Kind string

const (
	KindNoCards Kind = "no_cards"
	KindCard    Kind = "card"
)

// Model is the rendered form of one detection result.
type Model struct {
	Summary string `json:"summary"`
	Count   int    `json:"count"`
	Nodes   []Node `json:"nodes"`
}

// Node is either the "no cards" advisory or one detected card.
type Node struct {
	Kind    Kind   `json:"kind"`
	Index   int    `json:"index,omitempty"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`

	Badges []Badge `json:"badges,omitempty"`
	Fields []Field `json:"fields,omitempty"`
	BBox   *Box    `json:"bbox,omitempty"`
	Texts  []Text  `json:"texts,omitempty"`
}

// BadgeKind styles a badge.
type BadgeKind string

const (
	BadgeValid      BadgeKind = "valid"
	BadgeInvalid    BadgeKind = "invalid"
	BadgeConfidence BadgeKind = "confidence"
)

type Badge struct {
	Kind  BadgeKind `json:"kind"`
	Label string    `json:"label"`
}

// Field is a labelled value. Found is false when the value is a placeholder.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// Box is a bounding box in display form: origin plus derived extent.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Text struct {
	Quoted     string `json:"quoted"`
	Confidence string `json:"confidence"`
}

// Render builds the display model for result.
func Render(result detection.Result) Model {
	m := Model{
		Summary: fmt.Sprintf("%d card(s) detected", result.NumCardsDetected),
		Count:   result.NumCardsDetected,
	}

	if result.NumCardsDetected == 0 {
		m.Nodes = []Node{{
			Kind:    KindNoCards,
			Title:   NoCardsTitle,
			Message: NoCardsAdvisory,
		}}
		return m
	}

	m.Nodes = make([]Node, len(result.Cards))
	for i, card := range result.Cards {
		m.Nodes[i] = renderCard(card, i+1)
	}
	return m
}

// FormatCardNumber groups digits in blocks of four.
func FormatCardNumber(number string) string {
	return formatting.GroupDigits(number, 4)
}

func renderCard(card detection.Card, index int) Node {
	node := Node{
		Kind:  KindCard,
		Index: index,
		Title: "Card " + strconv.Itoa(index),
	}

	number, hasNumber := present(card.CardNumber)
	if hasNumber {
		if card.IsValid {
			node.Badges = append(node.Badges, Badge{Kind: BadgeValid, Label: ValidLabel})
		} else {
			node.Badges = append(node.Badges, Badge{Kind: BadgeInvalid, Label: InvalidLabel})
		}
	}

	confidence := NotAvailable
	if card.DetectionConfidence != nil {
		confidence = formatting.Percent(*card.DetectionConfidence)
		node.Badges = append(node.Badges, Badge{
			Kind:  BadgeConfidence,
			Label: confidence + " Confidence",
		})
	}

	node.Fields = []Field{
		optionalField("Card Number", FormatCardNumber(number), hasNumber),
		stringField("Cardholder Name", card.CardholderName),
		stringField("Expiry Date", card.ExpiryDate),
		{Label: "Detection Confidence", Value: confidence, Found: card.DetectionConfidence != nil},
	}

	node.BBox = &Box{
		X:      card.BBox.X(),
		Y:      card.BBox.Y(),
		Width:  card.BBox.Width(),
		Height: card.BBox.Height(),
	}

	if len(card.AllText) > 0 {
		node.Texts = make([]Text, len(card.AllText))
		for i, t := range card.AllText {
			node.Texts[i] = Text{
				Quoted:     `"` + t.Text + `"`,
				Confidence: formatting.Percent(t.Confidence),
			}
		}
	}

	return node
}

// empty strings carry nothing displayable and are treated as absent
func present(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}

func stringField(label string, s *string) Field {
	v, ok := present(s)
	return optionalField(label, v, ok)
}

func optionalField(label, value string, found bool) Field {
	if !found {
		return Field{Label: label, Value: NotFound}
	}
	return Field{Label: label, Value: value, Found: true}
}
