package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"prepquiz-service/internal/domain"
)

func TestLeaderboardWebSocketFeed(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.seedUser(t, "uid-ws")

	server := httptest.NewServer(ts.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives before any submission.
	snapshot := readLeaderboard(conn, t)
	if len(snapshot.Entries) != 1 {
		t.Fatalf("initial entries = %d, want 1", len(snapshot.Entries))
	}
	if snapshot.Entries[0].AverageScore != 0 {
		t.Fatalf("initial average = %v, want 0", snapshot.Entries[0].AverageScore)
	}

	rec := ts.do(t, "POST", "/api/submit-quiz", token, domain.QuizResult{
		UserID:     user.ID,
		Score:      9,
		Total:      10,
		Percentage: 90,
		SubjectID:  1,
		YearID:     2,
		CourseID:   3,
	})
	if rec.Code != 200 {
		t.Fatalf("submit = %d: %s", rec.Code, rec.Body.String())
	}

	update := readLeaderboard(conn, t)
	if update.Entries[0].AverageScore != 90 {
		t.Fatalf("pushed average = %v, want 90", update.Entries[0].AverageScore)
	}
}

func readLeaderboard(conn *websocket.Conn, t *testing.T) domain.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string             `json:"type"`
		Payload domain.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	return msg.Payload
}
