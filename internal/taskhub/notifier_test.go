package taskhub

import (
	"database/sql"
	"testing"

	taskhubdb "github.com/nao1215/taskhub/internal/taskhub/db"
	"github.com/nao1215/taskhub/pkg/event"
)

// TestBulkCreate は通知の一括作成のテスト。
func TestBulkCreate(t *testing.T) {
	t.Parallel()

	t.Run("空のリストは何もせず0を返すこと", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)

		created, err := s.notifier.BulkCreate(t.Context(), nil)
		if err != nil {
			t.Fatalf("一括作成に失敗: %v", err)
		}
		if created != 0 {
			t.Errorf("作成件数: got %d, want 0", created)
		}
	})

	t.Run("全要求が通知レコードとして作成されること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)

		reqs := []NotificationRequest{
			{UserID: "user-1", Type: TypeTaskAssigned, Title: "割り当て", Message: "メッセージ1", TaskID: "task-1"},
			{UserID: "user-2", Type: TypeTaskAssigned, Title: "割り当て", Message: "メッセージ2", TaskID: "task-1"},
			{UserID: "user-1", Type: TypeTaskCompleted, Title: "完了", Message: "メッセージ3", TaskID: "task-2", ProjectID: "project-1"},
		}
		created, err := s.notifier.BulkCreate(t.Context(), reqs)
		if err != nil {
			t.Fatalf("一括作成に失敗: %v", err)
		}
		if created != 3 {
			t.Errorf("作成件数: got %d, want 3", created)
		}

		notifications := listNotificationsByType(t, s, "user-1", TypeTaskCompleted)
		if len(notifications) != 1 {
			t.Fatalf("通知の数: got %d, want 1", len(notifications))
		}
		if notifications[0].TaskID.String != "task-2" {
			t.Errorf("taskId: got %s, want task-2", notifications[0].TaskID.String)
		}
		if notifications[0].ProjectID.String != "project-1" {
			t.Errorf("projectId: got %s, want project-1", notifications[0].ProjectID.String)
		}
		if notifications[0].IsRead != 0 {
			t.Errorf("isRead: got %d, want 0", notifications[0].IsRead)
		}
	})

	t.Run("同じ要求を繰り返すとその都度作成されること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)

		reqs := []NotificationRequest{
			{UserID: "user-1", Type: TypeTaskAssigned, Title: "割り当て", Message: "メッセージ", TaskID: "task-1"},
		}
		for i := 0; i < 2; i++ {
			if _, err := s.notifier.BulkCreate(t.Context(), reqs); err != nil {
				t.Fatalf("%d回目の一括作成に失敗: %v", i+1, err)
			}
		}

		// リマインド通知と違い、ライフサイクルイベントの通知は重複排除しない
		notifications := listNotificationsByType(t, s, "user-1", TypeTaskAssigned)
		if len(notifications) != 2 {
			t.Errorf("通知の数: got %d, want 2", len(notifications))
		}
	})
}

// TestNotifyTaskEvent はライフサイクルイベントから通知への変換のテスト。
func TestNotifyTaskEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		eventType event.Type
		wantType  string
	}{
		{name: "割り当てイベントはTASK_ASSIGNED通知になる", eventType: event.TypeTaskAssigned, wantType: TypeTaskAssigned},
		{name: "完了イベントはTASK_COMPLETED通知になる", eventType: event.TypeTaskCompleted, wantType: TypeTaskCompleted},
		{name: "状態変更イベントはTASK_STATUS_CHANGED通知になる", eventType: event.TypeTaskStatusChanged, wantType: TypeTaskStatusChanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := setupTestServer(t)

			ev := event.NewTaskEvent(tt.eventType, "task-1", "project-1", "設計レビュー", []string{"user-1", "user-2"})
			created, err := s.notifier.NotifyTaskEvent(t.Context(), ev)
			if err != nil {
				t.Fatalf("イベント通知に失敗: %v", err)
			}
			if created != 2 {
				t.Errorf("作成件数: got %d, want 2", created)
			}

			for _, userID := range []string{"user-1", "user-2"} {
				notifications := listNotificationsByType(t, s, userID, tt.wantType)
				if len(notifications) != 1 {
					t.Fatalf("%s の通知の数: got %d, want 1", userID, len(notifications))
				}
				if notifications[0].TaskID.String != "task-1" {
					t.Errorf("taskId: got %s, want task-1", notifications[0].TaskID.String)
				}
				if notifications[0].Title != ev.NotificationTitle() {
					t.Errorf("title: got %s, want %s", notifications[0].Title, ev.NotificationTitle())
				}
			}
		})
	}

	t.Run("通知先が空の場合は何も作成しないこと", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)

		ev := event.NewTaskEvent(event.TypeTaskCompleted, "task-1", "project-1", "設計レビュー", nil)
		created, err := s.notifier.NotifyTaskEvent(t.Context(), ev)
		if err != nil {
			t.Fatalf("イベント通知に失敗: %v", err)
		}
		if created != 0 {
			t.Errorf("作成件数: got %d, want 0", created)
		}
	})
}

// TestResponsibleUsers はタスク責任者の解決のテスト。
func TestResponsibleUsers(t *testing.T) {
	t.Parallel()

	t.Run("主担当者と共同担当者が重複なく返ること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)

		createTestProject(t, s, "project-1", ProjectStatusPlanning, sql.NullTime{})
		createTestTask(t, s, testTaskParams{ID: "task-1", ProjectID: "project-1", AssigneeID: "user-1"})
		// user-1 は主担当者かつ共同担当者として登録されている
		for _, userID := range []string{"user-1", "user-2"} {
			if err := s.queries.AddTaskAssignee(t.Context(), taskhubdb.AddTaskAssigneeParams{
				TaskID: "task-1",
				UserID: userID,
			}); err != nil {
				t.Fatalf("共同担当者の追加に失敗: %v", err)
			}
		}

		task, err := s.queries.GetTaskByID(t.Context(), "task-1")
		if err != nil {
			t.Fatalf("タスク取得に失敗: %v", err)
		}
		users, err := responsibleUsers(t.Context(), s.queries, task)
		if err != nil {
			t.Fatalf("責任者取得に失敗: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("責任者の数: got %d, want 2", len(users))
		}
		if users[0] != "user-1" || users[1] != "user-2" {
			t.Errorf("責任者: got %v, want [user-1 user-2]", users)
		}
	})

	t.Run("担当者がいない場合は空を返すこと", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)

		createTestProject(t, s, "project-1", ProjectStatusPlanning, sql.NullTime{})
		createTestTask(t, s, testTaskParams{ID: "task-1", ProjectID: "project-1"})

		task, err := s.queries.GetTaskByID(t.Context(), "task-1")
		if err != nil {
			t.Fatalf("タスク取得に失敗: %v", err)
		}
		users, err := responsibleUsers(t.Context(), s.queries, task)
		if err != nil {
			t.Fatalf("責任者取得に失敗: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("責任者の数: got %d, want 0", len(users))
		}
	})
}
