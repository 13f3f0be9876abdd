/*
Package source provides the text sources the corpus builder reads articles from.

A Source resolves an identifier (an article title for Wikipedia, a file stem
for a directory corpus) to its plain text:

	src := source.NewWikipedia(source.WikipediaOptions{UserAgent: "FreqDictBot/1.0"})
	page, err := src.Fetch(ctx, "Cryptography")

A page that does not exist is not an error: Fetch returns a Page with
Exists set to false. Errors are reserved for retrieval failures such as
network problems, bad status codes or undecodable responses.
*/
package source

import "context"

// Page is the result of a successful retrieval.
type Page struct {
	ID     string
	Exists bool
	Text   string
}

// Source fetches article text by identifier.
type Source interface {
	Fetch(ctx context.Context, id string) (Page, error)
}

// Func adapts a plain function to the Source interface.
type Func func(ctx context.Context, id string) (Page, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, id string) (Page, error) {
	return f(ctx, id)
}
