package taskhub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	taskhubdb "github.com/nao1215/taskhub/internal/taskhub/db"
	"github.com/nao1215/taskhub/pkg/event"
)

// プロジェクトの状態。
const (
	// ProjectStatusPlanning は計画中のプロジェクトを表す。
	ProjectStatusPlanning = "PLANNING"
	// ProjectStatusInProgress は進行中のプロジェクトを表す。
	ProjectStatusInProgress = "IN_PROGRESS"
	// ProjectStatusOnHold は保留中のプロジェクトを表す。
	ProjectStatusOnHold = "ON_HOLD"
	// ProjectStatusCompleted は完了したプロジェクトを表す。
	ProjectStatusCompleted = "COMPLETED"
	// ProjectStatusCancelled は中止されたプロジェクトを表す。
	ProjectStatusCancelled = "CANCELLED"
)

// タスクの状態。
const (
	// TaskStatusTodo は未着手のタスクを表す。
	TaskStatusTodo = "TODO"
	// TaskStatusInProgress は進行中のタスクを表す。
	TaskStatusInProgress = "IN_PROGRESS"
	// TaskStatusReview はレビュー中のタスクを表す。
	TaskStatusReview = "REVIEW"
	// TaskStatusCompleted は完了したタスクを表す。
	TaskStatusCompleted = "COMPLETED"
)

// ValidTaskStatus はタスクの状態が閉じた列挙に含まれるかを判定する。
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted:
		return true
	}
	return false
}

// WorkflowEngine はワークフローステップ完了をプロジェクト状態へ波及させる状態機械。
//
// ステップ完了要求を受けると、ステップ内の未完了タスクを一括で完了状態にし、
// プロジェクトの全ステップの完了状況を再計算する。全ステップが完了していれば
// プロジェクトをCOMPLETEDへ、そうでなければPLANNINGをIN_PROGRESSへ進める。
// タスクの一括更新は成功すればロールバックされない。後続の再計算が失敗しても
// タスクの完了は維持される。
type WorkflowEngine struct {
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *taskhubdb.Queries
	// notifier はタスク完了イベントを通知に変換するBulk Notifier。
	notifier *Notifier
	// locks はプロジェクトIDごとの排他ロック。同一プロジェクトへの並行完了要求を
	// 直列化し、古い完了状況の読み取りによる更新消失を防ぐ。
	locks sync.Map
}

// NewWorkflowEngine は新しいWorkflowEngineを生成する。
func NewWorkflowEngine(queries *taskhubdb.Queries, notifier *Notifier) *WorkflowEngine {
	return &WorkflowEngine{queries: queries, notifier: notifier}
}

// lockProject はプロジェクト単位のロックを取得し、解放関数を返す。
func (e *WorkflowEngine) lockProject(projectID string) func() {
	v, _ := e.locks.LoadOrStore(projectID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CompleteWorkflowStep はワークフローステップの完了要求を処理する。
//
// markAsCompletedがfalseの場合は何も変更せず成功を返す。完了方向への遷移のみを
// 扱い、完了の取り消しは行わない。プロジェクトまたはステップが見つからない場合は
// sql.ErrNoRowsをラップしたエラーを返す。
func (e *WorkflowEngine) CompleteWorkflowStep(ctx context.Context, projectID, stepID string, markAsCompleted bool) error {
	step, err := e.queries.GetWorkflowStepByID(ctx, stepID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ワークフローステップ %s が見つかりません: %w", stepID, sql.ErrNoRows)
	}
	if err != nil {
		return fmt.Errorf("ワークフローステップの取得に失敗: %w", err)
	}
	if step.ProjectID != projectID {
		return fmt.Errorf("ワークフローステップ %s はプロジェクト %s に属していません: %w", stepID, projectID, sql.ErrNoRows)
	}

	if !markAsCompleted {
		return nil
	}

	unlock := e.lockProject(projectID)
	defer unlock()

	// 完了対象のタスクを通知用に先に取得する
	pending, err := e.queries.ListIncompleteTasksByStepID(ctx, nullString(stepID))
	if err != nil {
		return fmt.Errorf("ステップ内タスクの取得に失敗: %w", err)
	}

	// ステップ内の未完了タスクを一括で完了状態にする（単一のUPDATE文で原子的）
	if _, err := e.queries.CompleteTasksInStep(ctx, nullString(stepID)); err != nil {
		return fmt.Errorf("タスクの一括完了に失敗: %w", err)
	}

	// 完了したタスクごとに完了イベント通知を発行する。
	// 通知の失敗はカスケード処理を止めない。
	for _, task := range pending {
		users, err := responsibleUsers(ctx, e.queries, task)
		if err != nil {
			log.Printf("タスク %s の責任者取得エラー: %v", task.ID, err)
			continue
		}
		if len(users) == 0 {
			continue
		}
		ev := event.NewTaskEvent(event.TypeTaskCompleted, task.ID, task.ProjectID, task.Title, users)
		if _, err := e.notifier.NotifyTaskEvent(ctx, ev); err != nil {
			log.Printf("タスク完了通知の作成エラー: %v", err)
		}
	}

	return e.recomputeProjectStatus(ctx, projectID)
}

// recomputeProjectStatus はプロジェクトの全ステップの完了状況を再計算し、
// プロジェクトの状態を更新する。プロジェクトが見つからない場合は再計算を
// スキップする（先行するタスク更新は取り消さない）。
func (e *WorkflowEngine) recomputeProjectStatus(ctx context.Context, projectID string) error {
	project, err := e.queries.GetProjectByID(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("プロジェクト %s が見つからないため状態の再計算をスキップします", projectID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("プロジェクトの取得に失敗: %w", err)
	}

	steps, err := e.queries.ListWorkflowStepsByProjectID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("ワークフローステップ一覧の取得に失敗: %w", err)
	}
	tasks, err := e.queries.ListTasksByProjectID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("タスク一覧の取得に失敗: %w", err)
	}

	// ステップに紐づかないタスクは完了判定の対象外
	tasksByStep := make(map[string][]taskhubdb.Task)
	for _, task := range tasks {
		if !task.WorkflowStepID.Valid {
			continue
		}
		tasksByStep[task.WorkflowStepID.String] = append(tasksByStep[task.WorkflowStepID.String], task)
	}

	allComplete := len(steps) > 0
	for _, step := range steps {
		if !stepComplete(tasksByStep[step.ID]) {
			allComplete = false
			break
		}
	}

	if allComplete {
		if err := e.queries.UpdateProjectStatus(ctx, taskhubdb.UpdateProjectStatusParams{
			Status: ProjectStatusCompleted,
			ID:     projectID,
		}); err != nil {
			return fmt.Errorf("プロジェクト状態の更新に失敗: %w", err)
		}
		return nil
	}

	// 最初の進捗の兆しとして、計画中のプロジェクトを進行中へ進める
	if project.Status == ProjectStatusPlanning {
		if err := e.queries.UpdateProjectStatus(ctx, taskhubdb.UpdateProjectStatusParams{
			Status: ProjectStatusInProgress,
			ID:     projectID,
		}); err != nil {
			return fmt.Errorf("プロジェクト状態の更新に失敗: %w", err)
		}
	}
	return nil
}

// stepComplete はステップが完了しているかを判定する。
// タスクを1件以上持ち、かつ全タスクが完了状態である場合のみ完了とみなす。
// タスクを持たないステップは決して完了にならない。
func stepComplete(tasks []taskhubdb.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, task := range tasks {
		if task.Status != TaskStatusCompleted {
			return false
		}
	}
	return true
}
