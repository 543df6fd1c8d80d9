package taskhub

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	taskhubdb "github.com/nao1215/taskhub/internal/taskhub/db"
	"github.com/nao1215/taskhub/pkg/event"
)

// 通知の種類。閉じた列挙であり、この6種以外の値は受け付けない。
const (
	// TypeTaskDueSoon はタスクの期限が近いことを知らせるリマインド通知。
	TypeTaskDueSoon = "TASK_DUE_SOON"
	// TypeTaskOverdue はタスクの期限が過ぎたことを知らせるリマインド通知。
	TypeTaskOverdue = "TASK_OVERDUE"
	// TypeProjectDueSoon はプロジェクトの期限が近いことを知らせるリマインド通知。
	TypeProjectDueSoon = "PROJECT_DUE_SOON"
	// TypeTaskAssigned はタスク割り当て時のイベント通知。
	TypeTaskAssigned = "TASK_ASSIGNED"
	// TypeTaskCompleted はタスク完了時のイベント通知。
	TypeTaskCompleted = "TASK_COMPLETED"
	// TypeTaskStatusChanged はタスク状態変更時のイベント通知。
	TypeTaskStatusChanged = "TASK_STATUS_CHANGED"
)

// ValidNotificationType は通知の種類が閉じた列挙に含まれるかを判定する。
func ValidNotificationType(t string) bool {
	switch t {
	case TypeTaskDueSoon, TypeTaskOverdue, TypeProjectDueSoon,
		TypeTaskAssigned, TypeTaskCompleted, TypeTaskStatusChanged:
		return true
	}
	return false
}

// NotificationRequest は通知作成要求1件を表す。
type NotificationRequest struct {
	// UserID は通知先のユーザーID。
	UserID string
	// Type は通知の種類。
	Type string
	// Title は通知のタイトル。
	Title string
	// Message は通知メッセージ。
	Message string
	// TaskID は関連タスクのID。空文字列の場合は関連タスクなし。
	TaskID string
	// ProjectID は関連プロジェクトのID。空文字列の場合は関連プロジェクトなし。
	ProjectID string
}

// Notifier は通知作成要求のリストを通知レコードとして一括永続化する。
// 重複排除は行わない。呼び出し側（スキャナ）がフィルタ済みの要求を渡す。
type Notifier struct {
	// db はSQLiteデータベース接続。バッチをトランザクションにまとめるために持つ。
	db *sql.DB
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *taskhubdb.Queries
}

// NewNotifier は新しいNotifierを生成する。
func NewNotifier(sqlDB *sql.DB, queries *taskhubdb.Queries) *Notifier {
	return &Notifier{db: sqlDB, queries: queries}
}

// BulkCreate は通知作成要求を1トランザクションで一括作成し、作成件数を返す。
// 空のリストは何もせず0を返す。
func (n *Notifier) BulkCreate(ctx context.Context, reqs []NotificationRequest) (int, error) {
	if len(reqs) == 0 {
		return 0, nil
	}

	tx, err := n.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	qtx := n.queries.WithTx(tx)
	for _, req := range reqs {
		if err := qtx.CreateNotification(ctx, taskhubdb.CreateNotificationParams{
			ID:        uuid.New().String(),
			UserID:    req.UserID,
			Type:      req.Type,
			Title:     req.Title,
			Message:   req.Message,
			TaskID:    nullString(req.TaskID),
			ProjectID: nullString(req.ProjectID),
		}); err != nil {
			return 0, fmt.Errorf("通知の作成に失敗: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}
	return len(reqs), nil
}

// NotifyTaskEvent はタスクライフサイクルイベントを通知レコードへ変換して保存する。
// イベントの通知先ごとに1件の通知を作成し、作成件数を返す。
func (n *Notifier) NotifyTaskEvent(ctx context.Context, ev event.TaskEvent) (int, error) {
	reqs := make([]NotificationRequest, 0, len(ev.Recipients))
	for _, userID := range ev.Recipients {
		reqs = append(reqs, NotificationRequest{
			UserID:    userID,
			Type:      notificationTypeFor(ev.Type),
			Title:     ev.NotificationTitle(),
			Message:   ev.NotificationMessage(),
			TaskID:    ev.TaskID,
			ProjectID: ev.ProjectID,
		})
	}
	return n.BulkCreate(ctx, reqs)
}

// notificationTypeFor はライフサイクルイベントの種類を通知の種類へ対応付ける。
func notificationTypeFor(t event.Type) string {
	switch t {
	case event.TypeTaskAssigned:
		return TypeTaskAssigned
	case event.TypeTaskCompleted:
		return TypeTaskCompleted
	}
	return TypeTaskStatusChanged
}

// responsibleUsers はタスクの責任者（主担当者と共同担当者）の重複のない一覧を返す。
func responsibleUsers(ctx context.Context, queries *taskhubdb.Queries, task taskhubdb.Task) ([]string, error) {
	seen := make(map[string]struct{})
	var users []string
	if task.AssigneeID.Valid && task.AssigneeID.String != "" {
		seen[task.AssigneeID.String] = struct{}{}
		users = append(users, task.AssigneeID.String)
	}

	coAssignees, err := queries.ListTaskAssigneeIDs(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("共同担当者の取得に失敗: %w", err)
	}
	for _, userID := range coAssignees {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		users = append(users, userID)
	}
	return users, nil
}

// nullString は空文字列をNULLとして扱うsql.NullStringを返す。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
