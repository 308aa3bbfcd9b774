package topic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/router"
	"github.com/abhisek/studyscout/internal/screens/summary"
	"github.com/abhisek/studyscout/internal/study"
	"github.com/abhisek/studyscout/internal/vectordb/memory"
)

const pcaText = "Principal component analysis reduces dimensionality while preserving variance.\f" +
	"Eigenvectors of the covariance matrix give the principal components."

func newTopicScreen(t *testing.T) (*TopicScreen, *llm.MockProvider) {
	t.Helper()
	cfg := knowledge.DefaultConfig()
	cfg.TempDir = t.TempDir()
	ingester := knowledge.NewIngester(knowledge.Readers{".txt": knowledge.TextReader{}},
		llm.NewMockEmbedder(16), memory.New(), cfg, nil)

	provider := llm.NewMockProvider()
	st := study.NewStore(ingester, assistant.NewFactory(provider, nil, assistant.DefaultConfig(), nil), study.Options{})
	t.Cleanup(func() { st.Close(context.Background()) })

	_, err := st.GetOrCreate(context.Background(), "pca", knowledge.Document{Name: "pca.txt", Data: []byte(pcaText)})
	require.NoError(t, err)

	scr := New(st, "pca", Options{DefaultQuizCount: 2})
	scr.Update(scr.loadCmd()())
	require.True(t, scr.loaded)
	return scr, provider
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// press sends a key and returns the resulting command.
func press(scr *TopicScreen, k tea.KeyPressMsg) tea.Cmd {
	_, cmd := scr.Update(k)
	return cmd
}

// settle runs cmd and feeds every message it yields back into the screen
// until no command is left. It returns the last message that was not
// handled by the screen itself. Commands that do not return promptly, such
// as the cursor blink ticker, are dropped along with cursor messages.
func settle(t *testing.T, scr *TopicScreen, cmd tea.Cmd) tea.Msg {
	t.Helper()
	var last tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, settleMaxSteps, "screen kept producing commands")
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		msg, ok := runCmd(next)
		if !ok || isCursorMsg(msg) {
			continue
		}
		switch msg := msg.(type) {
		case router.PushScreenMsg, router.PopScreenMsg:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		last = msg
		_, out := scr.Update(msg)
		queue = append(queue, out)
	}
	return last
}

const (
	settleMaxSteps = 50
	cmdTimeout     = 2 * time.Second
)

func isCursorMsg(msg tea.Msg) bool {
	return strings.HasPrefix(fmt.Sprintf("%T", msg), "cursor.")
}

// runCmd executes cmd, giving up when it blocks past cmdTimeout. Store
// calls against the mock provider finish well inside it; tickers never do.
func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

func twoQuestionQuiz() assistant.QuizResult {
	return assistant.QuizResult{Questions: []quiz.Question{
		{Text: "What does PCA maximize?", Options: []string{"Variance", "Bias", "Loss", "Depth"}, Correct: 0},
		{Text: "Eigenvectors of which matrix?", Options: []string{"Identity", "Covariance", "Hessian", "Jacobian"}, Correct: 1},
	}}
}

func TestTopicScreen_LoadsView(t *testing.T) {
	scr, _ := newTopicScreen(t)
	assert.Equal(t, "pca", scr.Title())
	assert.Equal(t, 2, scr.view.Pages)

	view := scr.View(100, 30)
	assert.Contains(t, view, "Chat")
	assert.Contains(t, view, "Ask anything about pca")
}

func TestTopicScreen_Chat(t *testing.T) {
	scr, provider := newTopicScreen(t)
	provider.AddResponse(llm.TextResponse("PCA keeps the directions of largest variance."))

	scr.chat.input.Model.SetValue("What is PCA?")
	cmd := press(scr, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, "What is PCA?", scr.chat.pending)
	assert.Contains(t, scr.View(100, 30), "Thinking...")

	settle(t, scr, cmd)
	assert.Empty(t, scr.chat.pending)
	require.Len(t, scr.view.History, 2)
	assert.Equal(t, study.RoleAssistant, scr.view.History[1].Role)
	assert.Contains(t, scr.View(100, 30), "largest variance")
	assert.Equal(t, 2, scr.progress.Turns)
}

func TestTopicScreen_ChatFailureKeepsQuestion(t *testing.T) {
	scr, provider := newTopicScreen(t)
	provider.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})

	scr.chat.input.Model.SetValue("What is PCA?")
	settle(t, scr, press(scr, specialKey(tea.KeyEnter)))

	assert.NotEmpty(t, scr.chat.errMsg)
	require.Len(t, scr.view.History, 1)
	assert.Equal(t, study.RoleUser, scr.view.History[0].Role)
	assert.Contains(t, scr.View(100, 30), "Error:")
}

func TestTopicScreen_EmptyMessageIgnored(t *testing.T) {
	scr, provider := newTopicScreen(t)
	assert.Nil(t, press(scr, specialKey(tea.KeyEnter)))
	assert.Equal(t, 0, provider.CallCount())
}

func TestTopicScreen_EscapeClearsInputFirst(t *testing.T) {
	scr, _ := newTopicScreen(t)
	scr.chat.input.Model.SetValue("draft")
	assert.True(t, scr.CapturesEscape())

	assert.Nil(t, press(scr, specialKey(tea.KeyEscape)))
	assert.Empty(t, scr.chat.input.Value())
	assert.False(t, scr.CapturesEscape())

	cmd := press(scr, specialKey(tea.KeyEscape))
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestTopicScreen_SuggestionFillsInput(t *testing.T) {
	scr, _ := newTopicScreen(t)
	press(scr, tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	assert.NotEmpty(t, scr.chat.input.Value())
}

func TestTopicScreen_QuizFlow(t *testing.T) {
	scr, provider := newTopicScreen(t)
	provider.AddResponse(llm.JSONResponse(twoQuestionQuiz()))

	press(scr, specialKey(tea.KeyTab))
	require.Equal(t, tabQuiz, scr.tab)

	cmd := press(scr, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, scr.quiz.generating)
	assert.Contains(t, scr.View(100, 30), "Generating quiz...")

	settle(t, scr, cmd)
	require.True(t, scr.view.Quiz.Active)
	assert.Len(t, scr.view.Quiz.Questions, 2)
	assert.Contains(t, scr.View(100, 30), "Question 1 of 2")

	// Answer the first question with option A; the screen moves on.
	settle(t, scr, press(scr, keyPress('1')))
	require.NotNil(t, scr.view.Quiz.Answers[0])
	assert.Equal(t, 0, *scr.view.Quiz.Answers[0])
	assert.Equal(t, 1, scr.quiz.current)

	// Submitting with an unanswered question asks first.
	assert.Nil(t, press(scr, keyPress('s')))
	assert.True(t, scr.quiz.confirming)
	assert.Contains(t, scr.View(100, 30), "Submit anyway?")

	msg := settle(t, scr, press(scr, keyPress('y')))
	push, ok := msg.(router.PushScreenMsg)
	require.True(t, ok, "expected the review screen, got %T", msg)
	assert.IsType(t, &summary.SummaryScreen{}, push.Screen)

	assert.False(t, scr.view.Quiz.Active)
	require.NotNil(t, scr.quiz.lastResult)
	assert.Equal(t, 1, scr.quiz.lastResult.Score)
	assert.Equal(t, 2, scr.quiz.lastResult.Total)
	assert.Equal(t, 1, scr.progress.LastScore)
}

func TestTopicScreen_QuizClearAndCancel(t *testing.T) {
	scr, provider := newTopicScreen(t)
	provider.AddResponse(llm.JSONResponse(twoQuestionQuiz()))
	press(scr, specialKey(tea.KeyTab))
	settle(t, scr, press(scr, specialKey(tea.KeyEnter)))
	require.True(t, scr.view.Quiz.Active)

	settle(t, scr, press(scr, keyPress('2')))
	press(scr, keyPress('h'))
	require.Equal(t, 0, scr.quiz.current)
	settle(t, scr, press(scr, keyPress('x')))
	assert.Nil(t, scr.view.Quiz.Answers[0])

	settle(t, scr, press(scr, keyPress('c')))
	assert.False(t, scr.view.Quiz.Active)
	assert.Equal(t, quiz.PhaseInert, scr.view.Quiz.Phase())
	assert.Contains(t, scr.View(100, 30), "Test yourself")
}

func TestTopicScreen_QuizGenerationFailure(t *testing.T) {
	scr, provider := newTopicScreen(t)
	provider.AddResponse(llm.TextResponse("not json"))
	press(scr, specialKey(tea.KeyTab))
	settle(t, scr, press(scr, specialKey(tea.KeyEnter)))

	assert.False(t, scr.view.Quiz.Active)
	assert.False(t, scr.quiz.generating)
	assert.NotEmpty(t, scr.quiz.errMsg)
}

func TestTopicScreen_ProgressTab(t *testing.T) {
	scr, _ := newTopicScreen(t)
	press(scr, specialKey(tea.KeyTab))
	settle(t, scr, press(scr, specialKey(tea.KeyTab)))
	require.Equal(t, tabProgress, scr.tab)

	view := scr.View(100, 30)
	assert.Contains(t, view, "Comprehension")
	assert.Contains(t, view, "No quiz submitted yet")
	assert.True(t, strings.Contains(view, "2 pages"))
}
