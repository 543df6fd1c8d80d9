// 通知スキャンの定期トリガーデーモンのエントリポイント。
// 設定された間隔でtaskhubサービスのscheduled-check APIを呼び出す。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/taskhub/internal/scheduler"
	"github.com/nao1215/taskhub/pkg/middleware"
)

func main() {
	baseURL := os.Getenv("TASKHUB_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	interval := 5 * time.Minute
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("SCAN_INTERVALの解析に失敗: %v", err)
		}
		interval = d
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}
	token, err := middleware.GenerateJWT(jwtSecret, "scheduler", "scheduler@taskhub.internal")
	if err != nil {
		log.Fatalf("内部API用トークンの生成に失敗: %v", err)
	}

	trigger := scheduler.New(baseURL, token, interval)
	trigger.Start(context.Background())
	defer trigger.Stop()

	log.Printf("スケジューラデーモンを起動しました: target=%s, interval=%s", baseURL, interval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("スケジューラデーモンを停止します")
}
