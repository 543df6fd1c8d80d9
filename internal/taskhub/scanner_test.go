package taskhub

import (
	"database/sql"
	"testing"
	"time"

	taskhubdb "github.com/nao1215/taskhub/internal/taskhub/db"
)

// fixScannerClock はスキャナの現在時刻を固定するヘルパー関数。
func fixScannerClock(s *Server, now time.Time) {
	s.scanner.now = func() time.Time { return now }
}

// TestScanDueSoonTasks は期限間近タスクのスキャンのテスト。
func TestScanDueSoonTasks(t *testing.T) {
	t.Parallel()

	t.Run("先読み期間内の未完了タスクに責任者ごとの通知が作成されること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{})
		createTestTask(t, s, testTaskParams{
			ID:         "task-1",
			ProjectID:  "project-1",
			AssigneeID: "user-1",
			EndDate:    sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true},
		})
		if err := s.queries.AddTaskAssignee(t.Context(), taskhubdb.AddTaskAssigneeParams{
			TaskID: "task-1",
			UserID: "user-2",
		}); err != nil {
			t.Fatalf("共同担当者の追加に失敗: %v", err)
		}

		created, err := s.scanner.ScanDueSoonTasks(t.Context())
		if err != nil {
			t.Fatalf("スキャンに失敗: %v", err)
		}
		if created != 2 {
			t.Errorf("作成件数: got %d, want 2", created)
		}

		for _, userID := range []string{"user-1", "user-2"} {
			notifications := listNotificationsByType(t, s, userID, TypeTaskDueSoon)
			if len(notifications) != 1 {
				t.Fatalf("%s の通知の数: got %d, want 1", userID, len(notifications))
			}
			if notifications[0].TaskID.String != "task-1" {
				t.Errorf("taskId: got %s, want task-1", notifications[0].TaskID.String)
			}
			if notifications[0].ProjectID.String != "project-1" {
				t.Errorf("projectId: got %s, want project-1", notifications[0].ProjectID.String)
			}
		}
	})

	t.Run("繰り返し実行しても同じ通知は多重生成されないこと", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{})
		createTestTask(t, s, testTaskParams{
			ID:         "task-1",
			ProjectID:  "project-1",
			AssigneeID: "user-1",
			EndDate:    sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true},
		})

		first, err := s.scanner.ScanDueSoonTasks(t.Context())
		if err != nil {
			t.Fatalf("1回目のスキャンに失敗: %v", err)
		}
		if first != 1 {
			t.Errorf("1回目の作成件数: got %d, want 1", first)
		}

		second, err := s.scanner.ScanDueSoonTasks(t.Context())
		if err != nil {
			t.Fatalf("2回目のスキャンに失敗: %v", err)
		}
		if second != 0 {
			t.Errorf("2回目の作成件数: got %d, want 0", second)
		}
	})

	t.Run("既読にした後の再スキャンでは新しい通知が作成されること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{})
		createTestTask(t, s, testTaskParams{
			ID:         "task-1",
			ProjectID:  "project-1",
			AssigneeID: "user-1",
			EndDate:    sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true},
		})

		if _, err := s.scanner.ScanDueSoonTasks(t.Context()); err != nil {
			t.Fatalf("1回目のスキャンに失敗: %v", err)
		}
		notifications := listNotificationsByType(t, s, "user-1", TypeTaskDueSoon)
		if err := s.queries.MarkNotificationRead(t.Context(), notifications[0].ID); err != nil {
			t.Fatalf("既読処理に失敗: %v", err)
		}

		created, err := s.scanner.ScanDueSoonTasks(t.Context())
		if err != nil {
			t.Fatalf("2回目のスキャンに失敗: %v", err)
		}
		if created != 1 {
			t.Errorf("既読後の作成件数: got %d, want 1", created)
		}
	})

	t.Run("完了済みタスクと期間外のタスクは対象外であること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{})
		// 完了済み
		createTestTask(t, s, testTaskParams{
			ID:         "task-1",
			ProjectID:  "project-1",
			Status:     TaskStatusCompleted,
			AssigneeID: "user-1",
			EndDate:    sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true},
		})
		// 先読み期間の外
		createTestTask(t, s, testTaskParams{
			ID:         "task-2",
			ProjectID:  "project-1",
			AssigneeID: "user-1",
			EndDate:    sql.NullTime{Time: now.Add(10 * 24 * time.Hour), Valid: true},
		})
		// 期限なし
		createTestTask(t, s, testTaskParams{
			ID:         "task-3",
			ProjectID:  "project-1",
			AssigneeID: "user-1",
		})

		created, err := s.scanner.ScanDueSoonTasks(t.Context())
		if err != nil {
			t.Fatalf("スキャンに失敗: %v", err)
		}
		if created != 0 {
			t.Errorf("作成件数: got %d, want 0", created)
		}
	})

	t.Run("担当者のいないタスクは通知を作成しないこと", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{})
		createTestTask(t, s, testTaskParams{
			ID:        "task-1",
			ProjectID: "project-1",
			EndDate:   sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true},
		})

		created, err := s.scanner.ScanDueSoonTasks(t.Context())
		if err != nil {
			t.Fatalf("スキャンに失敗: %v", err)
		}
		if created != 0 {
			t.Errorf("作成件数: got %d, want 0", created)
		}
	})
}

// TestScanOverdueTasks は期限切れタスクのスキャンのテスト。
func TestScanOverdueTasks(t *testing.T) {
	t.Parallel()

	t.Run("期限切れタスクに通知が作成され、再実行では多重生成されないこと", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{})
		createTestTask(t, s, testTaskParams{
			ID:         "task-1",
			ProjectID:  "project-1",
			AssigneeID: "user-1",
			EndDate:    sql.NullTime{Time: now.Add(-24 * time.Hour), Valid: true},
		})

		first, err := s.scanner.ScanOverdueTasks(t.Context())
		if err != nil {
			t.Fatalf("1回目のスキャンに失敗: %v", err)
		}
		if first != 1 {
			t.Errorf("1回目の作成件数: got %d, want 1", first)
		}

		second, err := s.scanner.ScanOverdueTasks(t.Context())
		if err != nil {
			t.Fatalf("2回目のスキャンに失敗: %v", err)
		}
		if second != 0 {
			t.Errorf("2回目の作成件数: got %d, want 0", second)
		}

		notifications := listNotificationsByType(t, s, "user-1", TypeTaskOverdue)
		if len(notifications) != 1 {
			t.Errorf("TASK_OVERDUE通知の数: got %d, want 1", len(notifications))
		}
	})

	t.Run("期限間近通知が未読でも期限切れ通知は別に作成されること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{})
		createTestTask(t, s, testTaskParams{
			ID:         "task-1",
			ProjectID:  "project-1",
			AssigneeID: "user-1",
			EndDate:    sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true},
		})

		// 期限間近の通知を先に作成しておく
		if created, err := s.scanner.ScanDueSoonTasks(t.Context()); err != nil || created != 1 {
			t.Fatalf("期限間近スキャンに失敗: created=%d, err=%v", created, err)
		}

		// 時刻を進めて期限切れにする
		fixScannerClock(s, now.Add(48*time.Hour))

		created, err := s.scanner.ScanOverdueTasks(t.Context())
		if err != nil {
			t.Fatalf("期限切れスキャンに失敗: %v", err)
		}
		if created != 1 {
			t.Errorf("作成件数: got %d, want 1", created)
		}

		// 種類ごとに1件ずつ、合わせて2件存在すること
		if got := len(listNotificationsByType(t, s, "user-1", TypeTaskDueSoon)); got != 1 {
			t.Errorf("TASK_DUE_SOON通知の数: got %d, want 1", got)
		}
		if got := len(listNotificationsByType(t, s, "user-1", TypeTaskOverdue)); got != 1 {
			t.Errorf("TASK_OVERDUE通知の数: got %d, want 1", got)
		}
	})

	t.Run("期限がちょうど現在時刻のタスクは期限切れではなく期限間近であること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{})
		// 期限 = 現在時刻
		createTestTask(t, s, testTaskParams{
			ID:         "task-1",
			ProjectID:  "project-1",
			AssigneeID: "user-1",
			EndDate:    sql.NullTime{Time: now, Valid: true},
		})
		// 期限 = 現在時刻の1ミリ秒前
		createTestTask(t, s, testTaskParams{
			ID:         "task-2",
			ProjectID:  "project-1",
			AssigneeID: "user-2",
			EndDate:    sql.NullTime{Time: now.Add(-time.Millisecond), Valid: true},
		})

		overdue, err := s.scanner.ScanOverdueTasks(t.Context())
		if err != nil {
			t.Fatalf("期限切れスキャンに失敗: %v", err)
		}
		if overdue != 1 {
			t.Errorf("期限切れの作成件数: got %d, want 1", overdue)
		}
		dueSoon, err := s.scanner.ScanDueSoonTasks(t.Context())
		if err != nil {
			t.Fatalf("期限間近スキャンに失敗: %v", err)
		}
		if dueSoon != 1 {
			t.Errorf("期限間近の作成件数: got %d, want 1", dueSoon)
		}

		if got := len(listNotificationsByType(t, s, "user-1", TypeTaskDueSoon)); got != 1 {
			t.Errorf("user-1のTASK_DUE_SOON通知の数: got %d, want 1", got)
		}
		if got := len(listNotificationsByType(t, s, "user-1", TypeTaskOverdue)); got != 0 {
			t.Errorf("user-1のTASK_OVERDUE通知の数: got %d, want 0", got)
		}
		if got := len(listNotificationsByType(t, s, "user-2", TypeTaskOverdue)); got != 1 {
			t.Errorf("user-2のTASK_OVERDUE通知の数: got %d, want 1", got)
		}
	})
}

// TestScanDueSoonProjects は期限間近プロジェクトのスキャンのテスト。
func TestScanDueSoonProjects(t *testing.T) {
	t.Parallel()

	t.Run("メンバーごとに通知が作成され、再実行では多重生成されないこと", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true})
		for _, userID := range []string{"user-1", "user-2"} {
			if err := s.queries.AddProjectMember(t.Context(), taskhubdb.AddProjectMemberParams{
				ProjectID: "project-1",
				UserID:    userID,
			}); err != nil {
				t.Fatalf("メンバー追加に失敗: %v", err)
			}
		}

		first, err := s.scanner.ScanDueSoonProjects(t.Context())
		if err != nil {
			t.Fatalf("1回目のスキャンに失敗: %v", err)
		}
		if first != 2 {
			t.Errorf("1回目の作成件数: got %d, want 2", first)
		}

		second, err := s.scanner.ScanDueSoonProjects(t.Context())
		if err != nil {
			t.Fatalf("2回目のスキャンに失敗: %v", err)
		}
		if second != 0 {
			t.Errorf("2回目の作成件数: got %d, want 0", second)
		}

		notifications := listNotificationsByType(t, s, "user-1", TypeProjectDueSoon)
		if len(notifications) != 1 {
			t.Fatalf("通知の数: got %d, want 1", len(notifications))
		}
		if notifications[0].ProjectID.String != "project-1" {
			t.Errorf("projectId: got %s, want project-1", notifications[0].ProjectID.String)
		}
		if notifications[0].TaskID.Valid {
			t.Errorf("taskIdはNULLであるべき: got %s", notifications[0].TaskID.String)
		}
	})

	t.Run("完了済み・中止済みプロジェクトは対象外であること", func(t *testing.T) {
		t.Parallel()
		s, _ := setupTestServer(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		fixScannerClock(s, now)

		endDate := sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true}
		createTestProject(t, s, "project-1", ProjectStatusCompleted, endDate)
		createTestProject(t, s, "project-2", ProjectStatusCancelled, endDate)
		for _, projectID := range []string{"project-1", "project-2"} {
			if err := s.queries.AddProjectMember(t.Context(), taskhubdb.AddProjectMemberParams{
				ProjectID: projectID,
				UserID:    "user-1",
			}); err != nil {
				t.Fatalf("メンバー追加に失敗: %v", err)
			}
		}

		created, err := s.scanner.ScanDueSoonProjects(t.Context())
		if err != nil {
			t.Fatalf("スキャンに失敗: %v", err)
		}
		if created != 0 {
			t.Errorf("作成件数: got %d, want 0", created)
		}
	})
}

// TestScannerRunAll は3つの走査手続きの一括実行と集計のテスト。
func TestScannerRunAll(t *testing.T) {
	t.Parallel()

	s, _ := setupTestServer(t)
	now := time.Now().UTC().Truncate(time.Millisecond)
	fixScannerClock(s, now)

	createTestProject(t, s, "project-1", ProjectStatusInProgress, sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true})
	if err := s.queries.AddProjectMember(t.Context(), taskhubdb.AddProjectMemberParams{
		ProjectID: "project-1",
		UserID:    "user-1",
	}); err != nil {
		t.Fatalf("メンバー追加に失敗: %v", err)
	}
	createTestTask(t, s, testTaskParams{
		ID:         "task-1",
		ProjectID:  "project-1",
		AssigneeID: "user-1",
		EndDate:    sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true},
	})
	createTestTask(t, s, testTaskParams{
		ID:         "task-2",
		ProjectID:  "project-1",
		AssigneeID: "user-1",
		EndDate:    sql.NullTime{Time: now.Add(-24 * time.Hour), Valid: true},
	})

	report, err := s.scanner.RunAll(t.Context())
	if err != nil {
		t.Fatalf("一括スキャンに失敗: %v", err)
	}

	if report.DueTaskNotifications != 1 {
		t.Errorf("DueTaskNotifications: got %d, want 1", report.DueTaskNotifications)
	}
	if report.OverdueTaskNotifications != 1 {
		t.Errorf("OverdueTaskNotifications: got %d, want 1", report.OverdueTaskNotifications)
	}
	if report.ProjectNotifications != 1 {
		t.Errorf("ProjectNotifications: got %d, want 1", report.ProjectNotifications)
	}
	if report.TotalCreated != 3 {
		t.Errorf("TotalCreated: got %d, want 3", report.TotalCreated)
	}
}
