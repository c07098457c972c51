package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"mantis/internal/adapter/retriever"
	"mantis/internal/domain"
	"mantis/internal/port"
)

// NoResultsMessage is returned instead of calling the model when nothing ranks.
const NoResultsMessage = "I couldn't find any relevant information for that query.\nTry rephrasing or using different keywords."

// Outcome says how a question was handled.
type Outcome int

const (
	OutcomeAnswered Outcome = iota
	OutcomeUnsupported
	OutcomeNoResults
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeNoResults:
		return "no_results"
	default:
		return "unknown"
	}
}

// Answer is the result of handling one question.
type Answer struct {
	Query   string
	Outcome Outcome
	Text    string

	// UnsupportedForm is set for OutcomeUnsupported.
	UnsupportedForm string

	Sources []domain.ScoredChunk
	Context domain.PackedContext
	Prompt  string
}

// UnsupportedMessage tells the user the platform is outside the loaded manuals.
func UnsupportedMessage(form string, available []domain.Platform) string {
	msg := fmt.Sprintf("I don't have information about %s in the loaded manuals.", strings.ToUpper(form))
	if len(available) == 0 {
		return msg
	}
	names := make([]string, len(available))
	for i, p := range available {
		names[i] = string(p)
	}
	return msg + "\nThe available manuals cover: " + strings.Join(names, ", ") + "."
}

// AnswerUseCase runs guard, retrieval, context assembly, and generation.
type AnswerUseCase struct {
	guard     *retriever.PlatformGuard
	retrieve  *RetrieveUseCase
	packer    port.Packer
	generator port.Generator
	corpus    retriever.SnapshotSource
	log       *logrus.Entry
}

func NewAnswerUseCase(
	guard *retriever.PlatformGuard,
	retrieve *RetrieveUseCase,
	packer port.Packer,
	generator port.Generator,
	corpus retriever.SnapshotSource,
	log *logrus.Entry,
) *AnswerUseCase {
	if log == nil {
		log = logrus.WithField("component", "answer")
	}
	return &AnswerUseCase{
		guard:     guard,
		retrieve:  retrieve,
		packer:    packer,
		generator: generator,
		corpus:    corpus,
		log:       log,
	}
}

// Prepare does everything except generation. For OutcomeAnswered the prompt
// is ready to send; otherwise Text already holds the user-facing reply.
func (u *AnswerUseCase) Prepare(query string) (Answer, error) {
	ans := Answer{Query: query}

	if form, hit := u.guard.Check(query); hit {
		ans.Outcome = OutcomeUnsupported
		ans.UnsupportedForm = form
		ans.Text = UnsupportedMessage(form, u.corpus.Snapshot().Platforms())
		u.log.WithField("form", form).Info("unsupported platform")
		return ans, nil
	}

	results, err := u.retrieve.Retrieve(query, 0)
	if err != nil {
		return ans, fmt.Errorf("retrieve: %w", err)
	}
	ans.Sources = results

	if len(results) == 0 {
		ans.Outcome = OutcomeNoResults
		ans.Text = NoResultsMessage
		return ans, nil
	}

	ans.Context = u.packer.Pack(query, results)
	prompt, err := BuildPrompt(query, ans.Context.Context)
	if err != nil {
		return ans, err
	}
	ans.Prompt = prompt
	ans.Outcome = OutcomeAnswered
	return ans, nil
}

// Answer prepares the prompt and, when there is context, asks the model.
func (u *AnswerUseCase) Answer(ctx context.Context, query string) (Answer, error) {
	ans, err := u.Prepare(query)
	if err != nil || ans.Outcome != OutcomeAnswered {
		return ans, err
	}

	text, err := u.generator.Generate(ctx, ans.Prompt)
	if err != nil {
		return ans, fmt.Errorf("generate: %w", err)
	}
	ans.Text = text

	u.log.WithFields(logrus.Fields{
		"sources": len(ans.Sources),
		"tokens":  ans.Context.EstimatedTokens,
	}).Debug("answered")
	return ans, nil
}
