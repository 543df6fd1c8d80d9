package taskhub

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	taskhubdb "github.com/nao1215/taskhub/internal/taskhub/db"
)

// defaultDueSoonWindow は期限間近と判定するデフォルトの先読み期間。
const defaultDueSoonWindow = 3 * 24 * time.Hour

// Scanner は期限切れ・期限間近のタスクとプロジェクトを走査し、
// リマインド通知を生成する。3つの走査手続きはそれぞれ独立で状態を持たず、
// 繰り返し実行しても同一条件の通知を多重生成しない（冪等）。
//
// 重複排除はストア層の一意制約（未読リマインド通知のdedupキー）に委ねる。
// INSERT ... ON CONFLICT DO NOTHING を使うことで、読み取りと書き込みの間の
// 競合で同一通知が二重作成される余地をなくしている。
type Scanner struct {
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *taskhubdb.Queries
	// window は期限間近と判定する先読み期間。
	window time.Duration
	// now は現在時刻を返す関数。テストで固定時刻に差し替える。
	now func() time.Time
}

// NewScanner は新しいScannerを生成する。
func NewScanner(queries *taskhubdb.Queries) *Scanner {
	return &Scanner{
		queries: queries,
		window:  defaultDueSoonWindow,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ScanReport は一括スキャンの実行結果の集計。
type ScanReport struct {
	// DueTaskNotifications は期限間近タスクのスキャンで作成された通知の件数。
	DueTaskNotifications int `json:"dueTaskNotifications"`
	// OverdueTaskNotifications は期限切れタスクのスキャンで作成された通知の件数。
	OverdueTaskNotifications int `json:"overdueTaskNotifications"`
	// ProjectNotifications は期限間近プロジェクトのスキャンで作成された通知の件数。
	ProjectNotifications int `json:"projectNotifications"`
	// TotalCreated は作成された通知の合計件数。
	TotalCreated int `json:"totalCreated"`
}

// RunAll は3つの走査手続きを順に実行し、結果を集計して返す。
// 1つの手続きが失敗しても残りの手続きは実行され、部分的な集計結果と
// 発生したエラーをまとめて返す。
func (s *Scanner) RunAll(ctx context.Context) (ScanReport, error) {
	var report ScanReport
	var errs []error

	if n, err := s.ScanDueSoonTasks(ctx); err != nil {
		errs = append(errs, fmt.Errorf("期限間近タスクのスキャンに失敗: %w", err))
	} else {
		report.DueTaskNotifications = n
	}

	if n, err := s.ScanOverdueTasks(ctx); err != nil {
		errs = append(errs, fmt.Errorf("期限切れタスクのスキャンに失敗: %w", err))
	} else {
		report.OverdueTaskNotifications = n
	}

	if n, err := s.ScanDueSoonProjects(ctx); err != nil {
		errs = append(errs, fmt.Errorf("期限間近プロジェクトのスキャンに失敗: %w", err))
	} else {
		report.ProjectNotifications = n
	}

	report.TotalCreated = report.DueTaskNotifications + report.OverdueTaskNotifications + report.ProjectNotifications
	return report, errors.Join(errs...)
}

// ScanDueSoonTasks は期限が先読み期間内にある未完了タスクを走査し、
// 責任者ごとにTASK_DUE_SOON通知を作成する。作成件数を返す。
// 期限がちょうど現在時刻のタスクは期限間近として扱う。
func (s *Scanner) ScanDueSoonTasks(ctx context.Context) (int, error) {
	now := s.now()
	tasks, err := s.queries.ListOpenTasksWithEndDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("タスク一覧の取得に失敗: %w", err)
	}

	created := 0
	for _, task := range tasks {
		end := task.EndDate.Time
		if end.Before(now) || end.After(now.Add(s.window)) {
			continue
		}

		users, err := responsibleUsers(ctx, s.queries, task)
		if err != nil {
			log.Printf("タスク %s の責任者取得エラー: %v", task.ID, err)
			continue
		}

		for _, userID := range users {
			rows, err := s.queries.CreateNotificationIfUnreadAbsent(ctx, taskhubdb.CreateNotificationIfUnreadAbsentParams{
				ID:        uuid.New().String(),
				UserID:    userID,
				Type:      TypeTaskDueSoon,
				Title:     "タスクの期限が近づいています",
				Message:   fmt.Sprintf("タスク「%s」の期限は %s です。", task.Title, end.Format("2006-01-02")),
				TaskID:    nullString(task.ID),
				ProjectID: nullString(task.ProjectID),
			})
			if err != nil {
				return created, fmt.Errorf("通知の作成に失敗: %w", err)
			}
			created += int(rows)
		}
	}
	return created, nil
}

// ScanOverdueTasks は期限が過ぎた未完了タスクを走査し、
// 責任者ごとにTASK_OVERDUE通知を作成する。作成件数を返す。
// 期限間近の通知が未読で残っていても、期限切れは別の種類のイベントとして
// 新たに通知される。
func (s *Scanner) ScanOverdueTasks(ctx context.Context) (int, error) {
	now := s.now()
	tasks, err := s.queries.ListOpenTasksWithEndDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("タスク一覧の取得に失敗: %w", err)
	}

	created := 0
	for _, task := range tasks {
		end := task.EndDate.Time
		if !end.Before(now) {
			continue
		}

		users, err := responsibleUsers(ctx, s.queries, task)
		if err != nil {
			log.Printf("タスク %s の責任者取得エラー: %v", task.ID, err)
			continue
		}

		for _, userID := range users {
			rows, err := s.queries.CreateNotificationIfUnreadAbsent(ctx, taskhubdb.CreateNotificationIfUnreadAbsentParams{
				ID:        uuid.New().String(),
				UserID:    userID,
				Type:      TypeTaskOverdue,
				Title:     "タスクの期限が過ぎています",
				Message:   fmt.Sprintf("タスク「%s」の期限（%s）が過ぎています。", task.Title, end.Format("2006-01-02")),
				TaskID:    nullString(task.ID),
				ProjectID: nullString(task.ProjectID),
			})
			if err != nil {
				return created, fmt.Errorf("通知の作成に失敗: %w", err)
			}
			created += int(rows)
		}
	}
	return created, nil
}

// ScanDueSoonProjects は期限が先読み期間内にある進行中プロジェクトを走査し、
// プロジェクトメンバーごとにPROJECT_DUE_SOON通知を作成する。作成件数を返す。
func (s *Scanner) ScanDueSoonProjects(ctx context.Context) (int, error) {
	now := s.now()
	projects, err := s.queries.ListOpenProjectsWithEndDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("プロジェクト一覧の取得に失敗: %w", err)
	}

	created := 0
	for _, project := range projects {
		end := project.EndDate.Time
		if end.Before(now) || end.After(now.Add(s.window)) {
			continue
		}

		members, err := s.queries.ListProjectMemberIDs(ctx, project.ID)
		if err != nil {
			log.Printf("プロジェクト %s のメンバー取得エラー: %v", project.ID, err)
			continue
		}

		for _, userID := range members {
			rows, err := s.queries.CreateNotificationIfUnreadAbsent(ctx, taskhubdb.CreateNotificationIfUnreadAbsentParams{
				ID:        uuid.New().String(),
				UserID:    userID,
				Type:      TypeProjectDueSoon,
				Title:     "プロジェクトの期限が近づいています",
				Message:   fmt.Sprintf("プロジェクト「%s」の期限は %s です。", project.Name, end.Format("2006-01-02")),
				ProjectID: nullString(project.ID),
			})
			if err != nil {
				return created, fmt.Errorf("通知の作成に失敗: %w", err)
			}
			created += int(rows)
		}
	}
	return created, nil
}
