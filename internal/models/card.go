package models

// Category is one askable question on a card, with its real answer
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Card is a static content unit; a die roll picks one of its categories
type Card struct {
	ID         int        `json:"id"`
	Categories []Category `json:"categories"`
}
