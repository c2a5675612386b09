package store

// FortuneSource adapts the fortune repository to the scroll payload
// interface: each draw pulls distinct enabled fortune texts.
type FortuneSource struct {
	repo *FortuneRepository
}

// NewFortuneSource creates a payload source backed by the repository.
func NewFortuneSource(repo *FortuneRepository) *FortuneSource {
	return &FortuneSource{repo: repo}
}

// Draw returns count distinct fortune texts in random order.
func (s *FortuneSource) Draw(count int) ([]string, error) {
	fortunes, err := s.repo.Draw(count)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(fortunes))
	for i, f := range fortunes {
		texts[i] = f.Text
	}
	return texts, nil
}
