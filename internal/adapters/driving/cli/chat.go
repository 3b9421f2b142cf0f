package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a store",
	Long:  `Start conversations with a store, ask one-off questions, and browse past sessions.`,
}

var chatStartCmd = &cobra.Command{
	Use:   "start [store]",
	Short: "Start or resume an interactive chat",
	Long: `Open an interactive chat with a store. The previous conversation with
the same store is resumed while the backend still has it.

With --upload the files are uploaded and processed first, then moved into
the store.

Commands inside the chat:
  /sources  Show the sources of the last answer
  /new      End this conversation and start a fresh one
  /end      End this conversation and quit
  /quit     Quit, keeping the conversation for later`,
	Args: cobra.ExactArgs(1),
	RunE: runChatStart,
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [store] [question...]",
	Short: "Ask a single question",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runChatAsk,
}

var chatSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List chat sessions",
	Args:  cobra.NoArgs,
	RunE:  runChatSessions,
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Print the messages of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatHistory,
}

var chatEndCmd = &cobra.Command{
	Use:   "end [store]",
	Short: "End the saved conversation with a store",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatEnd,
}

// chatUploads is the --upload flag of chat start.
var chatUploads []string

func init() {
	chatStartCmd.Flags().StringSliceVarP(&chatUploads, "upload", "u", nil, "Files to upload before chatting")
	addJSONFlag(chatAskCmd, chatSessionsCmd, chatHistoryCmd)

	chatCmd.AddCommand(chatStartCmd)
	chatCmd.AddCommand(chatAskCmd)
	chatCmd.AddCommand(chatSessionsCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatEndCmd)
	rootCmd.AddCommand(chatCmd)
}

func chatStore(ctx context.Context, ref string) (*domain.RagStore, error) {
	if chatService == nil {
		return nil, errNotConfigured("chat")
	}
	if storeService == nil {
		return nil, errNotConfigured("store")
	}
	return storeService.Find(ctx, ref)
}

// explainStart turns start failures into guidance.
func explainStart(store *domain.RagStore, err error) error {
	if errors.Is(err, domain.ErrStoreEmpty) {
		return fmt.Errorf("%s has no documents yet; add some with 'ragchat chat start %s --upload <file>'",
			store.Label(), store.Name)
	}
	return describeError(err)
}

func runChatStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := chatStore(ctx, args[0])
	if err != nil {
		return err
	}

	if len(chatUploads) > 0 {
		err = uploadAndStart(cmd, store)
	} else {
		err = chatService.StartWithStore(ctx, store)
	}
	if err != nil {
		return explainStart(store, err)
	}
	return chatLoop(cmd)
}

func uploadAndStart(cmd *cobra.Command, store *domain.RagStore) error {
	var (
		uploads []domain.UploadRequest
		files   []*os.File
	)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, path := range chatUploads {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		files = append(files, f)
		uploads = append(uploads, domain.NewFileUpload(f, ""))
	}

	var last driving.UploadStep
	return chatService.UploadAndStart(cmd.Context(), store, uploads, func(step driving.UploadStep) {
		if step.File == last.File && step.Status == last.Status {
			return
		}
		last = step
		cmd.Printf("[%d/%d] %s: %s %d%%\n", step.Index+1, step.Total, step.File, step.Status, step.Progress)
	})
}

// chatLoop reads questions until the input ends or the user quits.
func chatLoop(cmd *cobra.Command) error {
	ctx := cmd.Context()
	printChatHeader(cmd)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var lastAnswer *domain.ChatMessage
	for {
		cmd.Print("> ")
		var line string
		select {
		case <-ctx.Done():
			cmd.Println()
			return nil
		case l, ok := <-lines:
			if !ok {
				cmd.Println()
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/end":
			return chatService.End(ctx)
		case "/sources":
			if lastAnswer != nil {
				printSources(cmd, lastAnswer.GroundingChunks)
			}
			continue
		case "/new":
			store := chatService.Store()
			if err := chatService.End(ctx); err != nil {
				return err
			}
			if err := chatService.StartWithStore(ctx, store); err != nil {
				return explainStart(store, err)
			}
			cmd.Println("Started a new conversation.")
			lastAnswer = nil
			continue
		}

		answer, err := streamAnswer(cmd, line)
		switch {
		case errors.Is(err, domain.ErrStaleSession):
			cmd.PrintErrln("This conversation's store is no longer available; the session was closed.")
			return nil
		case err != nil:
			cmd.PrintErrf("Error: %v\n", describeError(err))
		}
		if answer != nil {
			lastAnswer = answer
		}
	}
}

func printChatHeader(cmd *cobra.Command) {
	store := chatService.Store()
	cmd.Printf("Chatting with %s (%d documents). Type /quit to leave.\n", store.Label(), store.DocumentCount)

	for _, m := range chatService.Messages() {
		who := "you"
		if m.Role == domain.RoleModel {
			who = "assistant"
		}
		cmd.Printf("%s: %s\n", who, m.Text())
	}
	if insights := chatService.Insights(); !insights.IsEmpty() && len(insights.SuggestedQuestions) > 0 {
		cmd.Println("Try asking:")
		for _, q := range insights.SuggestedQuestions {
			cmd.Printf("  - %s\n", q)
		}
	}
	cmd.Println()
}

// streamAnswer prints the answer as it arrives.
func streamAnswer(cmd *cobra.Command, question string) (*domain.ChatMessage, error) {
	var printed string
	answer, err := chatService.Send(cmd.Context(), question, func(m domain.ChatMessage) {
		text := m.Text()
		if strings.HasPrefix(text, printed) {
			cmd.Print(text[len(printed):])
		} else {
			// The final text differs from the streamed fragments.
			cmd.Print("\n" + text)
		}
		printed = text
	})
	if printed != "" {
		cmd.Println()
	}
	if answer != nil && len(answer.GroundingChunks) > 0 {
		cmd.Printf("(%d sources, /sources to list)\n", len(answer.GroundingChunks))
	}
	return answer, err
}

func runChatAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := chatStore(ctx, args[0])
	if err != nil {
		return err
	}

	answer, err := chatService.Ask(ctx, store, strings.Join(args[1:], " "))
	if err != nil {
		return explainStart(store, err)
	}
	if jsonOutput {
		return printJSON(cmd, answer)
	}

	cmd.Println(renderMarkdown(cmd.OutOrStdout(), answer.Text()))
	printSources(cmd, answer.GroundingChunks)
	return nil
}

func runChatSessions(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errNotConfigured("chat")
	}

	sessions, err := chatService.ListSessions(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, sessions)
	}
	if len(sessions) == 0 {
		cmd.Println("No chat sessions")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID.String(), s.RagStoreName, strconv.Itoa(s.MessageCount), truncate(s.Title, 40), humanTime(s.CreatedAt),
		})
	}
	return printTable(cmd, []string{"ID", "STORE", "MESSAGES", "TITLE", "CREATED"}, rows)
}

func runChatHistory(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNotConfigured("chat")
	}

	messages, err := chatService.History(cmd.Context(), domain.ID(args[0]))
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, messages)
	}
	if len(messages) == 0 {
		cmd.Println("No messages")
		return nil
	}

	for _, m := range messages {
		if m.Role == domain.RoleUser {
			cmd.Printf("> %s\n\n", m.Text())
			continue
		}
		cmd.Println(renderMarkdown(cmd.OutOrStdout(), m.Text()))
		printSources(cmd, m.GroundingChunks)
		cmd.Println()
	}
	return nil
}

func runChatEnd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := chatStore(ctx, args[0])
	if err != nil {
		return err
	}
	if err := chatService.StartWithStore(ctx, store); err != nil {
		return explainStart(store, err)
	}
	if err := chatService.End(ctx); err != nil {
		return err
	}
	cmd.Printf("Ended the conversation with %s\n", store.Label())
	return nil
}
