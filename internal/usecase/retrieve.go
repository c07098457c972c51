package usecase

import (
	"time"

	"github.com/sirupsen/logrus"

	"mantis/internal/domain"
	"mantis/internal/port"
)

// DefaultTopK is how many chunks feed one answer.
const DefaultTopK = 3

// RetrieveUseCase handles search and retrieval operations.
type RetrieveUseCase struct {
	retriever port.Retriever
	topK      int
	log       *logrus.Entry
}

func NewRetrieveUseCase(retriever port.Retriever, topK int, log *logrus.Entry) *RetrieveUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if log == nil {
		log = logrus.WithField("component", "retrieve")
	}
	return &RetrieveUseCase{
		retriever: retriever,
		topK:      topK,
		log:       log,
	}
}

func (u *RetrieveUseCase) TopK() int { return u.topK }

// Retrieve returns the best chunks for query. A k of zero or less uses the
// configured default.
func (u *RetrieveUseCase) Retrieve(query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = u.topK
	}

	start := time.Now()
	results, err := u.retriever.Search(query, k)
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"k":       k,
		"hits":    len(results),
		"elapsed": time.Since(start),
	}).Debug("retrieved")
	return results, nil
}
