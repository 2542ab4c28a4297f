package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"fakeout/internal/models"
)

// Deck is one game's card supply. Cards are shuffled once and drawn
// sequentially so no card repeats until the deck is exhausted, at which
// point it reshuffles and starts over.
type Deck struct {
	cards []models.Card
	next  int
}

// NewDeck copies and shuffles the given cards into a fresh deck.
func NewDeck(cards []models.Card) *Deck {
	d := &Deck{cards: make([]models.Card, len(cards))}
	copy(d.cards, cards)
	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// Size returns the number of cards in the deck.
func (d *Deck) Size() int {
	return len(d.cards)
}

// Draw returns the next card, reshuffling once the deck runs out.
func (d *Deck) Draw() models.Card {
	if d.next >= len(d.cards) {
		rand.Shuffle(len(d.cards), func(i, j int) {
			d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
		})
		d.next = 0
	}
	card := d.cards[d.next]
	d.next++
	return card
}

// LoadCards loads the card deck from a JSON file
func LoadCards(path string) ([]models.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cards []models.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%s contains no cards", path)
	}
	for _, c := range cards {
		if len(c.Categories) == 0 {
			return nil, fmt.Errorf("card %d has no categories", c.ID)
		}
	}
	return cards, nil
}

// DefaultCards returns a small built-in deck so the engine can run without
// a content file.
func DefaultCards() []models.Card {
	return []models.Card{
		{ID: 1, Categories: []models.Category{
			{ID: 1, Name: "World Records", Question: "What is the world record for most hot dogs eaten in 10 minutes?", Answer: "76 hot dogs"},
			{ID: 2, Name: "Strange Laws", Question: "In Switzerland it is illegal to own just one of which animal?", Answer: "A guinea pig"},
			{ID: 3, Name: "Movie Trivia", Question: "What was the working title of Star Wars?", Answer: "The Adventures of Luke Starkiller"},
		}},
		{ID: 2, Categories: []models.Category{
			{ID: 1, Name: "Food Origins", Question: "Which country invented the Hawaiian pizza?", Answer: "Canada"},
			{ID: 2, Name: "Animal Facts", Question: "What is a group of flamingos called?", Answer: "A flamboyance"},
			{ID: 3, Name: "Inventions", Question: "What were bubble wrap sheets originally sold as?", Answer: "Wallpaper"},
		}},
		{ID: 3, Categories: []models.Category{
			{ID: 1, Name: "Geography", Question: "What is the only country whose name ends in the letter q?", Answer: "Iraq"},
			{ID: 2, Name: "Human Body", Question: "How many times does the average person blink per day?", Answer: "About 15,000 times"},
			{ID: 3, Name: "History", Question: "What did Roman gladiators' sweat get sold as?", Answer: "A cosmetic"},
		}},
		{ID: 4, Categories: []models.Category{
			{ID: 1, Name: "Space", Question: "How long is a day on Venus compared to its year?", Answer: "A day is longer than a year"},
			{ID: 2, Name: "Sports", Question: "What was the first sport played on the Moon?", Answer: "Golf"},
			{ID: 3, Name: "Language", Question: "What is the only English word that ends in 'mt'?", Answer: "Dreamt"},
		}},
	}
}
