package domain

// Card is a collected knowledge point. Cards are never edited once added.
type Card struct {
	ID            string
	Type          string
	Content       string
	Translation   string
	ExampleInText string
	ExampleOther  []string
	Phonetic      string
}

// CardFromMarker turns a video marker into its card.
func CardFromMarker(id, markerType, title, description string) Card {
	return Card{ID: id, Type: markerType, Content: title, Translation: description, ExampleInText: description}
}

// CardFromAnchor turns an answered anchor into a card; the tutor's reply
// becomes the in-text example.
func CardFromAnchor(id, anchorType, content, description, reply string) Card {
	var typ string
	switch anchorType {
	case "important":
		typ = "important"
	case "error_prone":
		typ = "grammar"
	default:
		typ = "vocabulary"
	}
	return Card{ID: id, Type: typ, Content: content, Translation: description, ExampleInText: reply}
}

// Deck is an append-only list of cards unique by id.
type Deck struct {
	cards []Card
	ids   map[string]struct{}
}

func NewDeck(cards ...Card) *Deck {
	d := &Deck{ids: map[string]struct{}{}}
	for _, c := range cards {
		d.Add(c)
	}
	return d
}

// Add appends c unless a card with the same id exists.
func (d *Deck) Add(c Card) bool {
	if _, ok := d.ids[c.ID]; ok {
		return false
	}
	d.ids[c.ID] = struct{}{}
	d.cards = append(d.cards, c)
	return true
}

func (d *Deck) Find(id string) (Card, bool) {
	for _, c := range d.cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

func (d *Deck) Len() int { return len(d.cards) }
