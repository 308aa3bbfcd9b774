package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/router"
)

func intPtr(v int) *int { return &v }

func testResult() quiz.Result {
	return quiz.Result{
		Score: 1,
		Total: 3,
		Review: []quiz.ReviewItem{
			{Index: 0, Question: "What does PCA maximize?", Options: []string{"Variance", "Bias", "Loss", "Depth"},
				Chosen: intPtr(0), Correct: 0, IsCorrect: true},
			{Index: 1, Question: "Eigenvectors of which matrix?", Options: []string{"Identity", "Covariance", "Hessian", "Jacobian"},
				Chosen: intPtr(2), Correct: 1},
			{Index: 2, Question: "Is PCA supervised?", Options: []string{"Yes", "No", "Sometimes", "Only with labels"},
				Correct: 1},
		},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New("pca", testResult())
	if s.Title() != "Quiz Review" {
		t.Errorf("Title = %q, want %q", s.Title(), "Quiz Review")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New("pca", testResult())
	view := s.View(100, 60)

	for _, want := range []string{
		"Score: 1 / 3",
		"33%",
		"What does PCA maximize?",
		"correct",
		"incorrect",
		"unanswered",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestSummaryScreen_ScrollBounds(t *testing.T) {
	s := New("pca", testResult())
	for range 10 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	if s.scroll != 2 {
		t.Errorf("scroll = %d, want 2", s.scroll)
	}
	if strings.Contains(s.View(100, 60), "What does PCA maximize?") {
		t.Error("scrolled view should hide the first question")
	}
	for range 10 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	}
	if s.scroll != 0 {
		t.Errorf("scroll = %d, want 0", s.scroll)
	}
}

func TestSummaryScreen_EnterPops(t *testing.T) {
	s := New("pca", testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestHeadline(t *testing.T) {
	tests := []struct {
		score, total int
		want         string
	}{
		{0, 0, "Quiz finished"},
		{5, 5, "Perfect score!"},
		{4, 5, "Nice work!"},
		{2, 5, "Getting there"},
		{0, 5, "Worth another read"},
	}
	for _, tt := range tests {
		if got := headline(quiz.Result{Score: tt.score, Total: tt.total}); got != tt.want {
			t.Errorf("headline(%d/%d) = %q, want %q", tt.score, tt.total, got, tt.want)
		}
	}
}
