// Package embedding defines sparse vectors and the vectorizer contract.
package embedding

// Vectorizer fits a fixed vocabulary over a corpus and maps texts to
// sparse vectors in that vocabulary's space.
type Vectorizer interface {
	Name() string
	Fit(corpus []string) (Model, error)
}

// Model is a fitted, read-only vectorizer state.
type Model interface {
	// Dimension is the vocabulary size.
	Dimension() int
	// Vectors returns one vector per corpus document, in corpus order.
	Vectors() []Vector
	// Transform maps new text into the fitted space; unknown tokens are ignored.
	Transform(text string) Vector
}
