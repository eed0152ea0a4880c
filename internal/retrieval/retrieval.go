// Package retrieval defines the knowledge-retrieval collaborator. The vector
// and graph machinery behind it lives outside this service; the pipeline only
// needs "give me grounding text for this query".
package retrieval

import "context"

// Retriever fetches grounding context for a user's query. k bounds how many
// chunks are folded into the returned text.
type Retriever interface {
	RetrieveContext(ctx context.Context, userID uint, query string, k int) (string, error)
}

// Empty is the no-knowledge-base Retriever: every query returns no context.
// Used when no retrieval backend is configured.
type Empty struct{}

func (Empty) RetrieveContext(context.Context, uint, string, int) (string, error) {
	return "", nil
}
