package domain

import "strings"

// Character es un personaje con el que los ninos pueden conversar.
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Model       string `json:"model"`
}

// Characters es el catalogo fijo de personajes.
var Characters = []Character{
	{ID: "luna", Name: "Luna", Title: "The Star Fairy", Description: "A friendly space explorer who loves teaching about the stars and planets.", Model: "luna:latest"},
	{ID: "gogo", Name: "Gogo", Title: "The Adventure Guide", Description: "An adventurous dinosaur who makes learning about history fun.", Model: "gogo:latest"},
	{ID: "dodo", Name: "Dodo", Title: "The Wise Owl", Description: "A wise owl who helps children learn about nature and animals.", Model: "dodo:latest"},
	{ID: "leo", Name: "Captain Leo", Title: "The Brave Explorer", Description: "A playful lion who teaches about courage and friendship.", Model: "leo:latest"},
}

// FindCharacter busca por id o por nombre, sin distinguir mayusculas.
func FindCharacter(key string) (Character, bool) {
	key = strings.TrimSpace(key)
	for _, c := range Characters {
		if strings.EqualFold(c.ID, key) || strings.EqualFold(c.Name, key) {
			return c, true
		}
	}
	return Character{}, false
}
