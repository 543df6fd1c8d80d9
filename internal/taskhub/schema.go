package taskhub

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/nao1215/taskhub/pkg/migration"
)

// migrationsFS はスキーマ定義のSQLファイルを埋め込んだファイルシステム。
//
//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// initSchema はSQLiteデータベースにスキーマを適用する。
// 適用済みのマイグレーションはバージョン管理テーブルによってスキップされる。
func initSchema(db *sql.DB) error {
	if err := migration.Run(db, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
