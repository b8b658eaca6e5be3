package pipeline

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// OrgExtractFunc extracts organization names from text
// Returns the names in order of appearance, deduplicated
type OrgExtractFunc func(text string) ([]string, error)

// Pipeline combines embedding and organization extraction for person profiles
type Pipeline struct {
	Embedder     EmbedFunc
	OrgExtractor OrgExtractFunc // Optional
}

// NewPipeline creates a new processing pipeline
func NewPipeline(embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Embedder: embedder,
	}
}

// SetOrgExtractor sets the organization extraction function
func (p *Pipeline) SetOrgExtractor(extractor OrgExtractFunc) {
	p.OrgExtractor = extractor
}

// ProcessingResult contains the embedding and organizations found in a bio
type ProcessingResult struct {
	Embedding []float32
	Orgs      []string
}

// Process embeds the bio text and optionally extracts organization names.
// Extraction failures are not fatal; a profile without detected
// organizations still gets its embedding.
func (p *Pipeline) Process(bioText string) (*ProcessingResult, error) {
	embedding, err := p.Embedder(bioText)
	if err != nil {
		return nil, err
	}

	result := &ProcessingResult{
		Embedding: embedding,
	}

	if p.OrgExtractor != nil {
		orgs, err := p.OrgExtractor(bioText)
		if err == nil && orgs != nil {
			result.Orgs = orgs
		}
	}

	return result, nil
}
