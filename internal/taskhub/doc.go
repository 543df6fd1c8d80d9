// Package taskhub はタスク・プロジェクト管理サービスの内部実装を提供する。
//
// プロジェクトのワークフローステップ完了のカスケード処理と、期限切れ・
// 期限間近のタスク/プロジェクトを走査して重複排除済みのリマインド通知を
// 生成する自動通知エンジンを担当する。通知の一覧取得や既読管理も行う。
package taskhub
