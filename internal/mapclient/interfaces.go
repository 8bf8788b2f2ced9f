// Package mapclient provides interfaces and implementations for talking to
// the knowledge-map backend service. It abstracts the HTTP API to enable
// unit testing with mocks.
package mapclient

import (
	"context"
	"fmt"
)

// ConceptNode is one node of the knowledge tree returned by the backend.
// Children are ordered; insertion order is display order.
type ConceptNode struct {
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	IsAtomic          bool           `json:"isAtomic,omitempty"`
	SelfLearningTime  float64        `json:"selfLearningTime,omitempty"`
	TotalLearningTime float64        `json:"totalLearningTime,omitempty"`
	Children          []*ConceptNode `json:"children,omitempty"`
}

// Validate checks that the tree is well formed: every node has a non-empty
// name and no child pointer is nil. Returns the total node count.
func (n *ConceptNode) Validate() (int, error) {
	if n == nil {
		return 0, nil
	}
	return n.validate("")
}

func (n *ConceptNode) validate(path string) (int, error) {
	if n.Name == "" {
		if path == "" {
			return 0, fmt.Errorf("concept node missing name at root")
		}
		return 0, fmt.Errorf("concept node missing name under %q", path)
	}
	count := 1
	for i, child := range n.Children {
		if child == nil {
			return 0, fmt.Errorf("nil child %d under %q", i, n.Name)
		}
		c, err := child.validate(n.Name)
		if err != nil {
			return 0, err
		}
		count += c
	}
	return count, nil
}

// ChatMessage is one entry in a chat transcript.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ExplainRequest asks the backend to explain one concept in the context of
// the original query and the full tree it belongs to.
type ExplainRequest struct {
	ConceptName   string       `json:"concept_name"`
	OriginalQuery string       `json:"original_query"`
	KnowledgeTree *ConceptNode `json:"knowledge_tree"`
}

// ChatRequest asks a follow-up question about a previously fetched
// explanation.
type ChatRequest struct {
	ConceptName   string        `json:"concept_name"`
	OriginalQuery string        `json:"original_query"`
	KnowledgeTree *ConceptNode  `json:"knowledge_tree"`
	Explanation   string        `json:"explanation"`
	ChatHistory   []ChatMessage `json:"chat_history"`
	UserMessage   string        `json:"user_message"`
}

// MapGenerator produces knowledge trees from free-text concepts.
type MapGenerator interface {
	// GenerateMap requests a knowledge tree for the given concept.
	GenerateMap(ctx context.Context, concept string) (*ConceptNode, error)
}

// Explainer provides per-node explanations and follow-up chat.
type Explainer interface {
	// ExplainConcept requests an explanation for one node of the tree.
	ExplainConcept(ctx context.Context, req ExplainRequest) (string, error)

	// ChatAboutExplanation sends a follow-up question about an explanation.
	ChatAboutExplanation(ctx context.Context, req ChatRequest) (string, error)
}

// Messenger is the simplest backend variant: plain text in, plain text out.
type Messenger interface {
	// SendMessage sends a free-text message and returns the reply.
	SendMessage(ctx context.Context, text string) (string, error)
}

// Client combines all backend operations.
type Client interface {
	MapGenerator
	Explainer
	Messenger
}
