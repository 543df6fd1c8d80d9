// Package scheduler は通知スキャンAPIを定期的に呼び出す外部トリガーを提供する。
//
// taskhubサービス自身は走査の状態を持たないため、cron相当の起動は
// このトリガーが担う。手動トリガー（auto-check API）と併走しても安全である。
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nao1215/taskhub/pkg/httpclient"
)

// scheduledCheckPath は一括スキャンを起動するAPIパス。
const scheduledCheckPath = "/api/v1/notifications/scheduled-check"

// Trigger はtaskhubサービスの一括スキャンを定期的に起動する。
type Trigger struct {
	// client はtaskhubサービスへのHTTPクライアント。
	client *httpclient.Client
	// interval はスキャンの起動間隔。
	interval time.Duration
	// cancel はバックグラウンドゴルーチンを停止するためのキャンセル関数。
	cancel context.CancelFunc
}

// New は新しいTriggerを生成する。
// baseURLにはtaskhubサービスのベースURL、tokenには内部API呼び出し用の
// JWTトークンを指定する。
func New(baseURL, token string, interval time.Duration) *Trigger {
	return &Trigger{
		client:   httpclient.NewWithBearer(baseURL, token),
		interval: interval,
	}
}

// checkResponse はscheduled-check APIのレスポンスのJSON構造。
type checkResponse struct {
	// Success はスキャン全体が成功したかどうか。
	Success bool `json:"success"`
	// Message は実行結果の説明。
	Message string `json:"message"`
	// Timestamp はスキャンの実行日時（RFC3339形式）。
	Timestamp string `json:"timestamp"`
	// Results はスキャンの集計結果。
	Results struct {
		Statistics struct {
			DueTaskNotifications     int `json:"dueTaskNotifications"`
			OverdueTaskNotifications int `json:"overdueTaskNotifications"`
			ProjectNotifications     int `json:"projectNotifications"`
			TotalCreated             int `json:"totalCreated"`
		} `json:"statistics"`
	} `json:"results"`
}

// Start はバックグラウンドで定期起動ループを開始する。
func (t *Trigger) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	go func() {
		log.Printf("[Scheduler] 定期スキャンを開始します。起動間隔: %s", t.interval)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[Scheduler] 定期スキャンを停止しました")
				return
			case <-ticker.C:
				if err := t.RunOnce(ctx); err != nil {
					log.Printf("[Scheduler] スキャン起動エラー: %v", err)
				}
			}
		}
	}()
}

// Stop はバックグラウンドの定期起動を停止する。
func (t *Trigger) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

// RunOnce は一括スキャンを1回起動し、結果をログに記録する。
func (t *Trigger) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var resp checkResponse
	if err := t.client.PostJSON(ctx, scheduledCheckPath, nil, &resp); err != nil {
		return fmt.Errorf("一括スキャンの起動に失敗: %w", err)
	}

	stats := resp.Results.Statistics
	log.Printf("[Scheduler] スキャン完了: 期限間近タスク=%d, 期限切れタスク=%d, プロジェクト=%d, 合計=%d",
		stats.DueTaskNotifications, stats.OverdueTaskNotifications, stats.ProjectNotifications, stats.TotalCreated)
	return nil
}
