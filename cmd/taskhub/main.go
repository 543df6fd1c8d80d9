// タスク・プロジェクト管理サービスのエントリポイント。
// ワークフローステップ完了のカスケード処理と、期限切れ・期限間近の
// タスク/プロジェクトに対する自動通知の生成を担当する。
package main

import (
	"log"
	"os"

	"github.com/nao1215/taskhub/internal/taskhub"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := taskhub.NewServer(port)
	if err != nil {
		log.Fatalf("タスク管理サーバーの初期化に失敗: %v", err)
	}

	log.Printf("タスク管理サービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("タスク管理サービスの起動に失敗: %v", err)
	}
}
