package event

import (
	"time"

	"github.com/google/uuid"
)

// Type はタスクライフサイクルイベントの種類を表す。
type Type string

const (
	// TypeTaskAssigned はタスクが担当者に割り当てられたことを表す。
	TypeTaskAssigned Type = "TaskAssigned"
	// TypeTaskCompleted はタスクが完了状態に遷移したことを表す。
	TypeTaskCompleted Type = "TaskCompleted"
	// TypeTaskStatusChanged はタスクの状態が変更されたことを表す。
	TypeTaskStatusChanged Type = "TaskStatusChanged"
)

// TaskEvent はタスクのライフサイクル変更1件を表す不変のイベント。
// タスクを変更するすべての操作がこのイベントを発行し、Bulk Notifierが
// 通知レコードへ変換する。通知構築ロジックを各ハンドラに散らさないための
// 単一の入口となる。
type TaskEvent struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// Type はイベントの種類。
	Type Type `json:"type"`
	// TaskID は対象タスクの識別子。
	TaskID string `json:"task_id"`
	// ProjectID は対象タスクが属するプロジェクトの識別子。
	ProjectID string `json:"project_id"`
	// TaskTitle は対象タスクのタイトル。通知メッセージの組み立てに使用する。
	TaskTitle string `json:"task_title"`
	// NewStatus は遷移後の状態。TypeTaskStatusChangedのときのみ設定される。
	NewStatus string `json:"new_status,omitempty"`
	// Recipients は通知先ユーザーIDのリスト（主担当者と共同担当者）。
	Recipients []string `json:"recipients"`
	// OccurredAt はイベントの発生日時。
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskEvent は新しいタスクライフサイクルイベントを生成する。
func NewTaskEvent(eventType Type, taskID, projectID, taskTitle string, recipients []string) TaskEvent {
	return TaskEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		TaskID:     taskID,
		ProjectID:  projectID,
		TaskTitle:  taskTitle,
		Recipients: recipients,
		OccurredAt: time.Now().UTC(),
	}
}
