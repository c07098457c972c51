package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// SystemPrompt instructs the model to answer only from the retrieved context.
const SystemPrompt = `You are a military maintenance assistant.
Answer ONLY using the Context below. Cite the source document.
If the answer is NOT in the Context, say: "Not found in loaded manuals."
NEVER invent or guess procedures.`

// RefusalPhrase is what the model is told to say when the context lacks the answer.
const RefusalPhrase = "Not found in loaded manuals."

var answerTemplate = template.Must(
	template.New("answer_prompt.txt").ParseFS(promptTemplates, "templates/answer_prompt.txt"))

type PromptData struct {
	System   string
	Context  string
	Question string
}

// BuildPrompt renders the ChatML prompt for question over context.
func BuildPrompt(question, context string) (string, error) {
	var buf bytes.Buffer
	err := answerTemplate.Execute(&buf, PromptData{
		System:   SystemPrompt,
		Context:  context,
		Question: question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}
