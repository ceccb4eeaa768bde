package render_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/JaimeStill/cardscan/internal/detection"
	"github.com/JaimeStill/cardscan/internal/render"
)

func ptr[T any](v T) *T {
	return &v
}

func fullCard() detection.Card {
	return detection.Card{
		CardNumber:          ptr("4111111111111111"),
		IsValid:             true,
		CardholderName:      ptr("JANE DOE"),
		ExpiryDate:          ptr("12/29"),
		DetectionConfidence: ptr(0.876),
		BBox:                detection.BBox{10, 20, 110, 70},
		AllText: []detection.Text{
			{Text: "VISA", Confidence: 0.91},
			{Text: "JANE DOE", Confidence: 0.5},
		},
	}
}

func field(t *testing.T, n render.Node, label string) render.Field {
	t.Helper()
	for _, f := range n.Fields {
		if f.Label == label {
			return f
		}
	}
	t.Fatalf("field %q not rendered", label)
	return render.Field{}
}

func TestRenderNoCards(t *testing.T) {
	m := render.Render(detection.Result{NumCardsDetected: 0, Cards: []detection.Card{}})

	if len(m.Nodes) != 1 {
		t.Fatalf("nodes: got %d, want 1", len(m.Nodes))
	}

	n := m.Nodes[0]
	if n.Kind != render.KindNoCards {
		t.Errorf("kind: got %q, want %q", n.Kind, render.KindNoCards)
	}
	if n.Message != render.NoCardsAdvisory {
		t.Errorf("message: got %q", n.Message)
	}
	if len(n.Fields) != 0 || n.BBox != nil {
		t.Error("advisory node should carry no card content")
	}
	if m.Summary != "0 card(s) detected" {
		t.Errorf("summary: got %q", m.Summary)
	}
}

func TestRenderPreservesOrder(t *testing.T) {
	names := []string{"ZED", "ALICE", "MIKE"}
	cards := make([]detection.Card, len(names))
	for i, name := range names {
		cards[i] = detection.Card{CardholderName: ptr(name)}
	}

	m := render.Render(detection.Result{NumCardsDetected: 3, Cards: cards})

	if len(m.Nodes) != 3 {
		t.Fatalf("nodes: got %d, want 3", len(m.Nodes))
	}
	for i, n := range m.Nodes {
		if n.Kind != render.KindCard {
			t.Errorf("node %d kind: got %q", i, n.Kind)
		}
		if n.Index != i+1 {
			t.Errorf("node %d index: got %d, want %d", i, n.Index, i+1)
		}
		if got := field(t, n, "Cardholder Name").Value; got != names[i] {
			t.Errorf("node %d name: got %q, want %q", i, got, names[i])
		}
	}
	if m.Nodes[2].Title != "Card 3" {
		t.Errorf("title: got %q, want Card 3", m.Nodes[2].Title)
	}
}

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4111111111111111", "4111 1111 1111 1111"},
		{"411111111111", "4111 1111 1111"},
		{"41111", "4111 1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := render.FormatCardNumber(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderFullCard(t *testing.T) {
	m := render.Render(detection.Result{NumCardsDetected: 1, Cards: []detection.Card{fullCard()}})
	n := m.Nodes[0]

	if got := field(t, n, "Card Number"); got.Value != "4111 1111 1111 1111" || !got.Found {
		t.Errorf("card number: %+v", got)
	}
	if got := field(t, n, "Detection Confidence").Value; got != "88%" {
		t.Errorf("confidence: got %q, want 88%%", got)
	}

	wantBadges := []render.Badge{
		{Kind: render.BadgeValid, Label: render.ValidLabel},
		{Kind: render.BadgeConfidence, Label: "88% Confidence"},
	}
	if !reflect.DeepEqual(n.Badges, wantBadges) {
		t.Errorf("badges: got %+v, want %+v", n.Badges, wantBadges)
	}

	wantBox := render.Box{X: 10, Y: 20, Width: 100, Height: 50}
	if n.BBox == nil || *n.BBox != wantBox {
		t.Errorf("bbox: got %+v, want %+v", n.BBox, wantBox)
	}

	wantTexts := []render.Text{
		{Quoted: `"VISA"`, Confidence: "91%"},
		{Quoted: `"JANE DOE"`, Confidence: "50%"},
	}
	if !reflect.DeepEqual(n.Texts, wantTexts) {
		t.Errorf("texts: got %+v, want %+v", n.Texts, wantTexts)
	}
}

func TestRenderAbsentFields(t *testing.T) {
	card := detection.Card{
		IsValid: true,
		BBox:    detection.BBox{0, 0, 5, 5},
	}

	n := render.Render(detection.Result{NumCardsDetected: 1, Cards: []detection.Card{card}}).Nodes[0]

	for _, label := range []string{"Card Number", "Cardholder Name", "Expiry Date"} {
		f := field(t, n, label)
		if f.Value != render.NotFound || f.Found {
			t.Errorf("%s: got %+v, want placeholder", label, f)
		}
	}
	if got := field(t, n, "Detection Confidence").Value; got != render.NotAvailable {
		t.Errorf("confidence: got %q, want %q", got, render.NotAvailable)
	}
	if len(n.Badges) != 0 {
		t.Errorf("no badges expected without number or confidence: %+v", n.Badges)
	}
	if n.Texts != nil {
		t.Errorf("all-text block should be omitted: %+v", n.Texts)
	}
}

func TestRenderEmptyStringsAreAbsent(t *testing.T) {
	card := detection.Card{
		CardNumber:     ptr(""),
		CardholderName: ptr(""),
		ExpiryDate:     ptr(""),
	}

	n := render.Render(detection.Result{NumCardsDetected: 1, Cards: []detection.Card{card}}).Nodes[0]

	if f := field(t, n, "Card Number"); f.Found {
		t.Errorf("empty card number rendered as found: %+v", f)
	}
	if len(n.Badges) != 0 {
		t.Errorf("validity badge requires a card number: %+v", n.Badges)
	}
}

func TestRenderInvalidBadge(t *testing.T) {
	card := detection.Card{CardNumber: ptr("1234567812345678"), IsValid: false}
	n := render.Render(detection.Result{NumCardsDetected: 1, Cards: []detection.Card{card}}).Nodes[0]

	if len(n.Badges) != 1 || n.Badges[0].Kind != render.BadgeInvalid {
		t.Errorf("badges: got %+v, want one invalid badge", n.Badges)
	}
}

func TestRenderZeroConfidenceIsShown(t *testing.T) {
	card := detection.Card{DetectionConfidence: ptr(0.0)}
	n := render.Render(detection.Result{NumCardsDetected: 1, Cards: []detection.Card{card}}).Nodes[0]

	if len(n.Badges) != 1 || n.Badges[0].Label != "0% Confidence" {
		t.Errorf("badges: got %+v, want 0%% confidence badge", n.Badges)
	}
	if got := field(t, n, "Detection Confidence").Value; got != "0%" {
		t.Errorf("confidence: got %q, want 0%%", got)
	}
}

func TestRenderIsPure(t *testing.T) {
	result := detection.Result{NumCardsDetected: 2, Cards: []detection.Card{fullCard(), {}}}

	first := render.Render(result)
	second := render.Render(result)

	if !reflect.DeepEqual(first, second) {
		t.Error("rendering the same result twice produced different models")
	}
}

func TestWriteText(t *testing.T) {
	var b strings.Builder
	m := render.Render(detection.Result{NumCardsDetected: 1, Cards: []detection.Card{fullCard()}})

	if err := render.WriteText(&b, m); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := b.String()
	for _, want := range []string{
		"1 card(s) detected",
		"Card 1 [Valid] [88% Confidence]",
		"4111 1111 1111 1111",
		"Width: 100  Height: 50",
		`"VISA" (91%)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextNoCards(t *testing.T) {
	var b strings.Builder
	m := render.Render(detection.Result{})

	if err := render.WriteText(&b, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(b.String(), render.NoCardsAdvisory) {
		t.Errorf("output missing advisory:\n%s", b.String())
	}
}
