package event

import "fmt"

// NotificationTitle はこのイベントから生成する通知のタイトルを返す。
func (e TaskEvent) NotificationTitle() string {
	switch e.Type {
	case TypeTaskAssigned:
		return "タスクが割り当てられました"
	case TypeTaskCompleted:
		return "タスクが完了しました"
	case TypeTaskStatusChanged:
		return "タスクの状態が変更されました"
	}
	return "タスクが更新されました"
}

// NotificationMessage はこのイベントから生成する通知の本文を返す。
func (e TaskEvent) NotificationMessage() string {
	switch e.Type {
	case TypeTaskAssigned:
		return fmt.Sprintf("タスク「%s」があなたに割り当てられました。", e.TaskTitle)
	case TypeTaskCompleted:
		return fmt.Sprintf("タスク「%s」が完了しました。", e.TaskTitle)
	case TypeTaskStatusChanged:
		return fmt.Sprintf("タスク「%s」の状態が %s に変更されました。", e.TaskTitle, e.NewStatus)
	}
	return fmt.Sprintf("タスク「%s」が更新されました。", e.TaskTitle)
}
