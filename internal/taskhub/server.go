package taskhub

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	taskhubdb "github.com/nao1215/taskhub/internal/taskhub/db"
	"github.com/nao1215/taskhub/pkg/event"
	"github.com/nao1215/taskhub/pkg/middleware"
)

// Server はタスク・プロジェクト管理サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *taskhubdb.Queries
	// scanner は期限通知のスキャナ。
	scanner *Scanner
	// notifier は通知の一括作成を行うBulk Notifier。
	notifier *Notifier
	// engine はワークフロー完了のカスケード処理を行う状態機械。
	engine *WorkflowEngine
}

// NewServer は新しいタスク管理サーバーを生成する。
// SQLiteデータベースの初期化とスキーマ適用を行う。
func NewServer(port string) (*Server, error) {
	dbPath := os.Getenv("TASKHUB_DB")
	if dbPath == "" {
		dbPath = "/data/taskhub.db"
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		router.Use(middleware.CORS(strings.Split(origins, ",")))
	}

	queries := taskhubdb.New(sqlDB)
	notifier := NewNotifier(sqlDB, queries)
	s := &Server{
		router:   router,
		port:     port,
		db:       sqlDB,
		queries:  queries,
		scanner:  NewScanner(queries),
		notifier: notifier,
		engine:   NewWorkflowEngine(queries, notifier),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		notifications := api.Group("/notifications")
		{
			// 通知一覧取得
			notifications.GET("", s.handleListNotifications())
			// 通知作成
			notifications.POST("", s.handleCreateNotification())
			// 通知を既読にする
			notifications.PATCH("/:id", s.handleMarkNotificationRead())
			// 全通知を既読にする
			notifications.PUT("/read-all", s.handleMarkAllNotificationsRead())
			// 通知削除
			notifications.DELETE("/:id", s.handleDeleteNotification())
			// 定期トリガーからの一括スキャン
			notifications.GET("/scheduled-check", s.handleScheduledCheck())
			notifications.POST("/scheduled-check", s.handleScheduledCheck())
			// 手動での一括スキャン
			notifications.POST("/auto-check", s.handleAutoCheck())
			// タスクのみの軽量スキャン
			notifications.POST("/check", s.handleCheck())
		}

		projects := api.Group("/projects")
		{
			// プロジェクト作成（デフォルト4ステップを同時に作成）
			projects.POST("", s.handleCreateProject())
			// ワークフローステップ完了
			projects.POST("/:id/workflow/:step_id", s.handleCompleteWorkflowStep())
		}

		tasks := api.Group("/tasks")
		{
			// タスク作成
			tasks.POST("", s.handleCreateTask())
			// タスク状態更新
			tasks.PATCH("/:id/status", s.handleUpdateTaskStatus())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "taskhub"})
	})
}

// notificationResponse は通知のJSONレスポンス構造。
type notificationResponse struct {
	// ID は通知の一意識別子。
	ID string `json:"id"`
	// UserID は通知先のユーザーID。
	UserID string `json:"userId"`
	// Type は通知の種類。
	Type string `json:"type"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// TaskID は関連タスクのID。
	TaskID string `json:"taskId,omitempty"`
	// ProjectID は関連プロジェクトのID。
	ProjectID string `json:"projectId,omitempty"`
	// IsRead は通知の既読状態。
	IsRead bool `json:"isRead"`
	// CreatedAt は通知の作成日時（RFC3339形式）。
	CreatedAt string `json:"createdAt"`
}

// toNotificationResponse はDB行をJSONレスポンスに変換する。
func toNotificationResponse(n taskhubdb.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		TaskID:    n.TaskID.String,
		ProjectID: n.ProjectID.String,
		IsRead:    n.IsRead != 0,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

// projectResponse はプロジェクトのJSONレスポンス構造。
type projectResponse struct {
	// ID はプロジェクトの一意識別子。
	ID string `json:"id"`
	// Name はプロジェクト名。
	Name string `json:"name"`
	// Status はプロジェクトの状態。
	Status string `json:"status"`
	// Priority は優先度。
	Priority string `json:"priority"`
	// StartDate は開始予定日（RFC3339形式）。
	StartDate string `json:"startDate,omitempty"`
	// EndDate は終了予定日（RFC3339形式）。
	EndDate string `json:"endDate,omitempty"`
}

// toProjectResponse はDB行をJSONレスポンスに変換する。
func toProjectResponse(p taskhubdb.Project) projectResponse {
	return projectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Status:    p.Status,
		Priority:  p.Priority,
		StartDate: formatNullTime(p.StartDate),
		EndDate:   formatNullTime(p.EndDate),
	}
}

// workflowStepResponse はワークフローステップのJSONレスポンス構造。
type workflowStepResponse struct {
	// ID はステップの一意識別子。
	ID string `json:"id"`
	// ProjectID は所属プロジェクトのID。
	ProjectID string `json:"projectId"`
	// Order はプロジェクト内での表示順。
	Order int64 `json:"order"`
	// Name はステップ名。
	Name string `json:"name"`
	// Color は表示色。
	Color string `json:"color"`
}

// taskResponse はタスクのJSONレスポンス構造。
type taskResponse struct {
	// ID はタスクの一意識別子。
	ID string `json:"id"`
	// ProjectID は所属プロジェクトのID。
	ProjectID string `json:"projectId"`
	// WorkflowStepID は所属ワークフローステップのID。
	WorkflowStepID string `json:"workflowStepId,omitempty"`
	// Title はタスクのタイトル。
	Title string `json:"title"`
	// Status はタスクの状態。
	Status string `json:"status"`
	// Priority は優先度。
	Priority string `json:"priority"`
	// StartDate は開始予定日（RFC3339形式）。
	StartDate string `json:"startDate,omitempty"`
	// EndDate は期限日（RFC3339形式）。
	EndDate string `json:"endDate,omitempty"`
	// EstimatedHours は見積もり時間。
	EstimatedHours float64 `json:"estimatedHours,omitempty"`
	// AssigneeID は主担当者のユーザーID。
	AssigneeID string `json:"assigneeId,omitempty"`
}

// toTaskResponse はDB行をJSONレスポンスに変換する。
func toTaskResponse(t taskhubdb.Task) taskResponse {
	return taskResponse{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		WorkflowStepID: t.WorkflowStepID.String,
		Title:          t.Title,
		Status:         t.Status,
		Priority:       t.Priority,
		StartDate:      formatNullTime(t.StartDate),
		EndDate:        formatNullTime(t.EndDate),
		EstimatedHours: t.EstimatedHours.Float64,
		AssigneeID:     t.AssigneeID.String,
	}
}

// formatNullTime はNULL許容の日時をRFC3339文字列に変換する。NULLは空文字列。
func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339)
}

// parseDate はRFC3339形式または日付のみ（2006-01-02）の文字列を解析する。
// 空文字列はNULLとして扱う。
func parseDate(s string) (sql.NullTime, error) {
	if s == "" {
		return sql.NullTime{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return sql.NullTime{Time: t.UTC(), Valid: true}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("日付形式が不正です: %q", s)
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}, nil
}

// validPriority は優先度が閉じた列挙に含まれるかを判定する。
func validPriority(p string) bool {
	switch p {
	case "LOW", "MEDIUM", "HIGH", "URGENT":
		return true
	}
	return false
}

// handleListNotifications は通知一覧を返すハンドラ。
// userIdクエリパラメータは必須。unreadOnly=trueで未読のみに絞り込む。
func (s *Server) handleListNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userIdが必要です"})
			return
		}

		limit := int64(50)
		if v := c.Query("limit"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitが不正です"})
				return
			}
			limit = n
		}
		offset := int64(0)
		if v := c.Query("offset"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "offsetが不正です"})
				return
			}
			offset = n
		}
		unreadOnly := c.Query("unreadOnly") == "true"

		var notifications []taskhubdb.Notification
		var err error
		if unreadOnly {
			notifications, err = s.queries.ListUnreadNotificationsByUserID(c.Request.Context(), taskhubdb.ListUnreadNotificationsByUserIDParams{
				UserID: userID,
				Limit:  limit,
				Offset: offset,
			})
		} else {
			notifications, err = s.queries.ListNotificationsByUserID(c.Request.Context(), taskhubdb.ListNotificationsByUserIDParams{
				UserID: userID,
				Limit:  limit,
				Offset: offset,
			})
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知一覧の取得に失敗しました"})
			log.Printf("通知一覧取得エラー: %v", err)
			return
		}

		unreadCount, err := s.queries.CountUnreadNotificationsByUserID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "未読件数の取得に失敗しました"})
			log.Printf("未読件数取得エラー: %v", err)
			return
		}
		total, err := s.queries.CountNotificationsByUserID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知件数の取得に失敗しました"})
			log.Printf("通知件数取得エラー: %v", err)
			return
		}

		responses := make([]notificationResponse, 0, len(notifications))
		for _, n := range notifications {
			responses = append(responses, toNotificationResponse(n))
		}

		c.JSON(http.StatusOK, gin.H{
			"notifications": responses,
			"unreadCount":   unreadCount,
			"total":         total,
		})
	}
}

// createNotificationRequest は通知作成リクエストのJSON構造。
type createNotificationRequest struct {
	// UserID は通知先のユーザーID。
	UserID string `json:"userId" binding:"required"`
	// Type は通知の種類。
	Type string `json:"type" binding:"required"`
	// Title は通知のタイトル。
	Title string `json:"title" binding:"required"`
	// Message は通知メッセージ。
	Message string `json:"message" binding:"required"`
	// TaskID は関連タスクのID。
	TaskID string `json:"taskId"`
	// ProjectID は関連プロジェクトのID。
	ProjectID string `json:"projectId"`
}

// handleCreateNotification は通知を1件作成するハンドラ。
func (s *Server) handleCreateNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		if !ValidNotificationType(req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("通知の種類が不正です: %q", req.Type)})
			return
		}

		notificationID := uuid.New().String()
		if err := s.queries.CreateNotification(c.Request.Context(), taskhubdb.CreateNotificationParams{
			ID:        notificationID,
			UserID:    req.UserID,
			Type:      req.Type,
			Title:     req.Title,
			Message:   req.Message,
			TaskID:    nullString(req.TaskID),
			ProjectID: nullString(req.ProjectID),
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の作成に失敗しました"})
			log.Printf("通知作成エラー: %v", err)
			return
		}

		created, err := s.queries.GetNotificationByID(c.Request.Context(), notificationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作成した通知の取得に失敗しました"})
			log.Printf("通知取得エラー: %v", err)
			return
		}
		unreadCount, err := s.queries.CountUnreadNotificationsByUserID(c.Request.Context(), req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "未読件数の取得に失敗しました"})
			log.Printf("未読件数取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"notification": toNotificationResponse(created),
			"unreadCount":  unreadCount,
		})
	}
}

// handleMarkNotificationRead は指定された通知を既読にするハンドラ。
// 更新後の通知を返す。
func (s *Server) handleMarkNotificationRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		notificationID := c.Param("id")

		// 通知の存在確認
		if _, err := s.queries.GetNotificationByID(c.Request.Context(), notificationID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "通知が見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の取得に失敗しました"})
			log.Printf("通知取得エラー: %v", err)
			return
		}

		if err := s.queries.MarkNotificationRead(c.Request.Context(), notificationID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の既読処理に失敗しました"})
			log.Printf("通知既読処理エラー: %v", err)
			return
		}

		updated, err := s.queries.GetNotificationByID(c.Request.Context(), notificationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後の通知の取得に失敗しました"})
			log.Printf("通知取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toNotificationResponse(updated))
	}
}

// handleMarkAllNotificationsRead は指定ユーザーの全通知を既読にするハンドラ。
func (s *Server) handleMarkAllNotificationsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userIdが必要です"})
			return
		}

		if err := s.queries.MarkAllNotificationsRead(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "全通知の既読処理に失敗しました"})
			log.Printf("全通知既読処理エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleDeleteNotification は指定された通知を削除するハンドラ。
func (s *Server) handleDeleteNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		notificationID := c.Param("id")

		rows, err := s.queries.DeleteNotification(c.Request.Context(), notificationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の削除に失敗しました"})
			log.Printf("通知削除エラー: %v", err)
			return
		}
		if rows == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "通知が見つかりません"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleScheduledCheck は定期トリガーからの一括スキャンを実行するハンドラ。
// 一部のスキャンが失敗しても残りは実行され、部分的な集計結果を返す。
func (s *Server) handleScheduledCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := s.scanner.RunAll(c.Request.Context())
		timestamp := time.Now().UTC().Format(time.RFC3339)
		if err != nil {
			log.Printf("一括スキャンエラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"message":   "一部のスキャンに失敗しました",
				"timestamp": timestamp,
				"results":   gin.H{"statistics": report},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   fmt.Sprintf("スキャンが完了しました。%d件の通知を作成しました", report.TotalCreated),
			"timestamp": timestamp,
			"results":   gin.H{"statistics": report},
		})
	}
}

// handleAutoCheck は手動での一括スキャンを実行するハンドラ。
func (s *Server) handleAutoCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := s.scanner.RunAll(c.Request.Context())
		if err != nil {
			log.Printf("一括スキャンエラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"statistics": report,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"statistics": report,
		})
	}
}

// handleCheck はタスクのみを対象にした軽量スキャンを実行するハンドラ。
func (s *Server) handleCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		dueSoon, err := s.scanner.ScanDueSoonTasks(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクスキャンに失敗しました"})
			log.Printf("期限間近タスクスキャンエラー: %v", err)
			return
		}
		overdue, err := s.scanner.ScanOverdueTasks(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクスキャンに失敗しました"})
			log.Printf("期限切れタスクスキャンエラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("タスクスキャンが完了しました。%d件の通知を作成しました", dueSoon+overdue),
		})
	}
}

// defaultWorkflowSteps はプロジェクト作成時に作られるデフォルトのステップ定義。
var defaultWorkflowSteps = []struct {
	name  string
	color string
}{
	{name: "To Do", color: "#9CA3AF"},
	{name: "In Progress", color: "#3B82F6"},
	{name: "Review", color: "#F59E0B"},
	{name: "Done", color: "#10B981"},
}

// createProjectRequest はプロジェクト作成リクエストのJSON構造。
type createProjectRequest struct {
	// Name はプロジェクト名。
	Name string `json:"name" binding:"required"`
	// Priority は優先度。省略時はMEDIUM。
	Priority string `json:"priority"`
	// StartDate は開始予定日（RFC3339形式または2006-01-02）。
	StartDate string `json:"startDate"`
	// EndDate は終了予定日（RFC3339形式または2006-01-02）。
	EndDate string `json:"endDate"`
	// MemberIDs はプロジェクトメンバーのユーザーIDリスト。
	MemberIDs []string `json:"memberIds"`
}

// handleCreateProject はプロジェクトを作成するハンドラ。
// デフォルトの4つのワークフローステップを同時に作成する。
func (s *Server) handleCreateProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		priority := req.Priority
		if priority == "" {
			priority = "MEDIUM"
		}
		if !validPriority(priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("優先度が不正です: %q", priority)})
			return
		}

		startDate, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		projectID := uuid.New().String()
		if err := s.queries.CreateProject(c.Request.Context(), taskhubdb.CreateProjectParams{
			ID:        projectID,
			Name:      req.Name,
			Status:    ProjectStatusPlanning,
			Priority:  priority,
			StartDate: startDate,
			EndDate:   endDate,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "プロジェクトの作成に失敗しました"})
			log.Printf("プロジェクト作成エラー: %v", err)
			return
		}

		steps := make([]workflowStepResponse, 0, len(defaultWorkflowSteps))
		for i, def := range defaultWorkflowSteps {
			stepID := uuid.New().String()
			if err := s.queries.CreateWorkflowStep(c.Request.Context(), taskhubdb.CreateWorkflowStepParams{
				ID:        stepID,
				ProjectID: projectID,
				StepOrder: int64(i + 1),
				Name:      def.name,
				Color:     def.color,
			}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "ワークフローステップの作成に失敗しました"})
				log.Printf("ワークフローステップ作成エラー: %v", err)
				return
			}
			steps = append(steps, workflowStepResponse{
				ID:        stepID,
				ProjectID: projectID,
				Order:     int64(i + 1),
				Name:      def.name,
				Color:     def.color,
			})
		}

		for _, userID := range req.MemberIDs {
			if err := s.queries.AddProjectMember(c.Request.Context(), taskhubdb.AddProjectMemberParams{
				ProjectID: projectID,
				UserID:    userID,
			}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "プロジェクトメンバーの追加に失敗しました"})
				log.Printf("プロジェクトメンバー追加エラー: %v", err)
				return
			}
		}

		created, err := s.queries.GetProjectByID(c.Request.Context(), projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作成したプロジェクトの取得に失敗しました"})
			log.Printf("プロジェクト取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"project":       toProjectResponse(created),
			"workflowSteps": steps,
		})
	}
}

// completeWorkflowStepRequest はワークフローステップ完了リクエストのJSON構造。
type completeWorkflowStepRequest struct {
	// MarkAsCompleted がtrueの場合のみ完了処理を実行する。falseは何もしない。
	MarkAsCompleted bool `json:"markAsCompleted"`
}

// handleCompleteWorkflowStep はワークフローステップの完了要求を処理するハンドラ。
func (s *Server) handleCompleteWorkflowStep() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("id")
		stepID := c.Param("step_id")

		var req completeWorkflowStepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		if err := s.engine.CompleteWorkflowStep(c.Request.Context(), projectID, stepID, req.MarkAsCompleted); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "プロジェクトまたはワークフローステップが見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ワークフローステップの完了処理に失敗しました"})
			log.Printf("ワークフローステップ完了エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// createTaskRequest はタスク作成リクエストのJSON構造。
type createTaskRequest struct {
	// ProjectID は所属プロジェクトのID。
	ProjectID string `json:"projectId" binding:"required"`
	// Title はタスクのタイトル。
	Title string `json:"title" binding:"required"`
	// WorkflowStepID は所属ワークフローステップのID。
	WorkflowStepID string `json:"workflowStepId"`
	// Status はタスクの状態。省略時はTODO。
	Status string `json:"status"`
	// Priority は優先度。省略時はMEDIUM。
	Priority string `json:"priority"`
	// StartDate は開始予定日（RFC3339形式または2006-01-02）。
	StartDate string `json:"startDate"`
	// EndDate は期限日（RFC3339形式または2006-01-02）。
	EndDate string `json:"endDate"`
	// EstimatedHours は見積もり時間。
	EstimatedHours float64 `json:"estimatedHours"`
	// AssigneeID は主担当者のユーザーID。
	AssigneeID string `json:"assigneeId"`
	// CoAssigneeIDs は共同担当者のユーザーIDリスト。
	CoAssigneeIDs []string `json:"coAssigneeIds"`
}

// handleCreateTask はタスクを作成するハンドラ。
// 担当者が指定されている場合はTASK_ASSIGNED通知を発行する。
func (s *Server) handleCreateTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		status := req.Status
		if status == "" {
			status = TaskStatusTodo
		}
		if !ValidTaskStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("タスクの状態が不正です: %q", status)})
			return
		}
		priority := req.Priority
		if priority == "" {
			priority = "MEDIUM"
		}
		if !validPriority(priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("優先度が不正です: %q", priority)})
			return
		}

		// プロジェクトの存在確認
		if _, err := s.queries.GetProjectByID(c.Request.Context(), req.ProjectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "プロジェクトが見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "プロジェクトの取得に失敗しました"})
			log.Printf("プロジェクト取得エラー: %v", err)
			return
		}

		// ステップが指定されている場合は、対象プロジェクトに属することを確認
		if req.WorkflowStepID != "" {
			step, err := s.queries.GetWorkflowStepByID(c.Request.Context(), req.WorkflowStepID)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && step.ProjectID != req.ProjectID) {
				c.JSON(http.StatusNotFound, gin.H{"error": "ワークフローステップが見つかりません"})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "ワークフローステップの取得に失敗しました"})
				log.Printf("ワークフローステップ取得エラー: %v", err)
				return
			}
		}

		startDate, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var estimatedHours sql.NullFloat64
		if req.EstimatedHours > 0 {
			estimatedHours = sql.NullFloat64{Float64: req.EstimatedHours, Valid: true}
		}

		taskID := uuid.New().String()
		if err := s.queries.CreateTask(c.Request.Context(), taskhubdb.CreateTaskParams{
			ID:             taskID,
			ProjectID:      req.ProjectID,
			WorkflowStepID: nullString(req.WorkflowStepID),
			Title:          req.Title,
			Status:         status,
			Priority:       priority,
			StartDate:      startDate,
			EndDate:        endDate,
			EstimatedHours: estimatedHours,
			AssigneeID:     nullString(req.AssigneeID),
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクの作成に失敗しました"})
			log.Printf("タスク作成エラー: %v", err)
			return
		}

		for _, userID := range req.CoAssigneeIDs {
			if err := s.queries.AddTaskAssignee(c.Request.Context(), taskhubdb.AddTaskAssigneeParams{
				TaskID: taskID,
				UserID: userID,
			}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "共同担当者の追加に失敗しました"})
				log.Printf("共同担当者追加エラー: %v", err)
				return
			}
		}

		created, err := s.queries.GetTaskByID(c.Request.Context(), taskID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作成したタスクの取得に失敗しました"})
			log.Printf("タスク取得エラー: %v", err)
			return
		}

		// 担当者がいる場合は割り当てイベント通知を発行する。
		// 通知の失敗はログに記録し、タスク作成自体は成功として扱う。
		if recipients, err := responsibleUsers(c.Request.Context(), s.queries, created); err != nil {
			log.Printf("タスク %s の責任者取得エラー: %v", taskID, err)
		} else if len(recipients) > 0 {
			ev := event.NewTaskEvent(event.TypeTaskAssigned, taskID, req.ProjectID, req.Title, recipients)
			if _, err := s.notifier.NotifyTaskEvent(c.Request.Context(), ev); err != nil {
				log.Printf("タスク割り当て通知の作成エラー: %v", err)
			}
		}

		c.JSON(http.StatusCreated, gin.H{"task": toTaskResponse(created)})
	}
}

// updateTaskStatusRequest はタスク状態更新リクエストのJSON構造。
type updateTaskStatusRequest struct {
	// Status は遷移後の状態。
	Status string `json:"status" binding:"required"`
}

// handleUpdateTaskStatus はタスクの状態を更新するハンドラ。
// 状態変更に応じてTASK_COMPLETEDまたはTASK_STATUS_CHANGED通知を発行する。
func (s *Server) handleUpdateTaskStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")

		var req updateTaskStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if !ValidTaskStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("タスクの状態が不正です: %q", req.Status)})
			return
		}

		task, err := s.queries.GetTaskByID(c.Request.Context(), taskID)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "タスクが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクの取得に失敗しました"})
			log.Printf("タスク取得エラー: %v", err)
			return
		}

		if err := s.queries.UpdateTaskStatus(c.Request.Context(), taskhubdb.UpdateTaskStatusParams{
			Status: req.Status,
			ID:     taskID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクの更新に失敗しました"})
			log.Printf("タスク更新エラー: %v", err)
			return
		}

		// 状態が実際に変わった場合のみイベント通知を発行する
		if task.Status != req.Status {
			if recipients, err := responsibleUsers(c.Request.Context(), s.queries, task); err != nil {
				log.Printf("タスク %s の責任者取得エラー: %v", taskID, err)
			} else if len(recipients) > 0 {
				eventType := event.TypeTaskStatusChanged
				if req.Status == TaskStatusCompleted {
					eventType = event.TypeTaskCompleted
				}
				ev := event.NewTaskEvent(eventType, taskID, task.ProjectID, task.Title, recipients)
				ev.NewStatus = req.Status
				if _, err := s.notifier.NotifyTaskEvent(c.Request.Context(), ev); err != nil {
					log.Printf("タスク状態変更通知の作成エラー: %v", err)
				}
			}
		}

		updated, err := s.queries.GetTaskByID(c.Request.Context(), taskID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後のタスクの取得に失敗しました"})
			log.Printf("タスク取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"task": toTaskResponse(updated)})
	}
}
