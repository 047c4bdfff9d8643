package model

import "strings"

type JokeKind string

const JokeKindShame JokeKind = "shame"

const usernamePlaceholder = "{username}"

type Joke struct {
	ID   int64
	Text string
	Kind JokeKind
}

// Render substitutes every username placeholder in the template.
func (j *Joke) Render(username string) string {
	if username == "" {
		username = UnknownHandle
	}
	return strings.ReplaceAll(j.Text, usernamePlaceholder, username)
}
