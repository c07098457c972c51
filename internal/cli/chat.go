package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mantis/internal/domain"
	"mantis/internal/logging"
	"mantis/internal/usecase"
)

var chatWatch bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Start an interactive session against the loaded knowledge base.

Commands inside the session:
  /help      show commands
  /status    knowledge base and server status
  /sources   pages used for the previous answer
  /quit      exit

With --watch the knowledge base is reloaded whenever its file changes, so a
parallel 'mantis ingest' takes effect without restarting the session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVarP(&chatWatch, "watch", "w", false, "reload the knowledge base when its file changes")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(GetConfig(), GetLogger())
	if err != nil {
		return err
	}

	if chatWatch || a.cfg.KnowledgeBase.Watch {
		stopWatch, err := a.watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch knowledge base: %w", err)
		}
		defer stopWatch()
	}

	session := newChatSession(a, os.Stdout, newStyles(stdoutIsTerminal()))
	return session.run(ctx, os.Stdin)
}

type chatSession struct {
	app         *app
	out         io.Writer
	st          styles
	log         *logrus.Entry
	lastSources []domain.ScoredChunk
	questions   int
}

func newChatSession(a *app, out io.Writer, st styles) *chatSession {
	return &chatSession{
		app: a,
		out: out,
		st:  st,
		log: logging.Component(a.log, "chat").WithField("session", uuid.NewString()),
	}
}

func (s *chatSession) run(ctx context.Context, in io.Reader) error {
	s.banner(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprintf(s.out, "\n%s ", s.st.Prompt.Render("You:"))

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\n\nGoodbye!")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(s.out, "\n\nGoodbye!")
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := s.command(ctx, line); quit {
				fmt.Fprintln(s.out, "Goodbye!")
				return nil
			}
			continue
		}
		s.ask(ctx, line)
	}
}

func (s *chatSession) banner(ctx context.Context) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, s.st.Title.Render("MANTIS: Field Manual RAG System"))
	fmt.Fprintln(s.out, rule)
	fmt.Fprintf(s.out, "Loaded %d chunks from %s\n", s.app.corpus.Snapshot().Len(), s.app.cfg.KnowledgeBase.Path)

	s.serverStatus(ctx)

	fmt.Fprintln(s.out, "\nType your question, or '/help' for commands.")
}

func (s *chatSession) serverStatus(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	model, err := s.app.generator.ModelName(ctx)
	if err != nil {
		s.log.WithError(err).Debug("model server check failed")
		fmt.Fprintln(s.out, s.st.Warning.Render(fmt.Sprintf("Warning: Cannot connect to KoboldCPP server at %s", s.app.generator.BaseURL())))
		fmt.Fprintln(s.out, s.st.Warning.Render("Start the server before asking questions."))
		return
	}
	fmt.Fprintln(s.out, s.st.Success.Render(fmt.Sprintf("KoboldCPP server is running. Model: %s", model)))
}

// command handles a slash command and reports whether the session should end.
func (s *chatSession) command(ctx context.Context, line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/quit", "/exit", "/q":
		return true
	case "/help":
		fmt.Fprintln(s.out, "\nCommands:")
		fmt.Fprintln(s.out, "  /help     - Show this help")
		fmt.Fprintln(s.out, "  /quit     - Exit the program")
		fmt.Fprintln(s.out, "  /status   - Check server status")
		fmt.Fprintln(s.out, "  /sources  - Show sources from last query")
	case "/status":
		kb := s.app.corpus.Snapshot()
		fmt.Fprintf(s.out, "\nKnowledge base: %d chunks", kb.Len())
		if platforms := kb.Platforms(); len(platforms) > 0 {
			names := make([]string, len(platforms))
			for i, p := range platforms {
				names[i] = string(p)
			}
			fmt.Fprintf(s.out, " (%s)", strings.Join(names, ", "))
		}
		fmt.Fprintln(s.out)
		if gen := s.app.corpus.Generation(); gen > 0 {
			fmt.Fprintf(s.out, "Reloaded %d time(s) since start\n", gen)
		}
		hits, misses := s.app.cache.Stats()
		fmt.Fprintf(s.out, "Query cache: %d hits, %d misses\n", hits, misses)
		s.serverStatus(ctx)
	case "/sources":
		if len(s.lastSources) == 0 {
			fmt.Fprintln(s.out, "No previous query sources available.")
			return false
		}
		fmt.Fprintln(s.out, "\nSources from last query:")
		for i, src := range s.lastSources {
			fmt.Fprintf(s.out, "  %s\n", formatSource(i+1, src.Chunk))
		}
	default:
		fmt.Fprintf(s.out, "Unknown command %s. Type /help for commands.\n", line)
	}
	return false
}

func (s *chatSession) ask(ctx context.Context, question string) {
	s.questions++
	log := s.log.WithField("question", s.questions)

	fmt.Fprintln(s.out, s.st.Muted.Render("Searching manuals..."))
	start := time.Now()

	ans, err := s.app.answer.Answer(ctx, question)
	s.lastSources = ans.Sources
	if err != nil {
		log.WithError(err).Warn("answer failed")
		ans.Text = describeGenerationError(err, s.app.generator.BaseURL())
	}

	log.WithFields(logrus.Fields{
		"outcome": ans.Outcome.String(),
		"sources": len(ans.Sources),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("question handled")

	if ans.Outcome == usecase.OutcomeAnswered && err != nil {
		fmt.Fprintf(s.out, "\n%s\n", s.st.Error.Render(ans.Text))
		return
	}
	printAnswer(s.out, s.st, ans)
}
