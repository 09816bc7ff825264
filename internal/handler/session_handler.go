// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/lockstat/internal/model"
	"github.com/hitoshi/lockstat/internal/transfer"
)

// SessionServiceInterface はセッションハンドラーが必要とするサービスインターフェース。
type SessionServiceInterface interface {
	// Create は単一セッションを検証して永続化する。
	Create(ctx context.Context, lockTime, unlockTime string) (*model.Session, error)
	// List は全セッションをロック時刻の降順で取得する。
	List(ctx context.Context) ([]*model.Session, error)
	// Delete は指定IDのセッションを一括削除する。
	Delete(ctx context.Context, ids []string) error
	// Import は正規化済みレコード列をレコード単位の隔離でインポートする。
	Import(ctx context.Context, records []model.ImportRecord) *model.ImportResult
}

// ImportMetricsRecorder はインポート・作成・削除の計測値を記録するインターフェース。nil許容。
type ImportMetricsRecorder interface {
	RecordSessionCreated()
	RecordSessionsDeleted(count int)
	RecordImportResult(success, failed int)
}

// SessionHandler はセッション管理のHTTPハンドラー。
type SessionHandler struct {
	service          SessionServiceInterface
	recorder         ImportMetricsRecorder
	maxImportRecords int
}

// NewSessionHandler はSessionHandlerを生成する。
// maxImportRecordsが0以下の場合はレコード数の上限を設けない。
func NewSessionHandler(service SessionServiceInterface, recorder ImportMetricsRecorder, maxImportRecords int) *SessionHandler {
	return &SessionHandler{
		service:          service,
		recorder:         recorder,
		maxImportRecords: maxImportRecords,
	}
}

// createSessionRequest はセッション作成リクエストのボディ。
type createSessionRequest struct {
	LockTime   string `json:"lockTime"`
	UnlockTime string `json:"unlockTime"`
}

// deleteSessionsRequest はセッション一括削除リクエストのボディ。
type deleteSessionsRequest struct {
	IDs []string `json:"ids"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListSessions は全セッションを返す。
// GET /api/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// データ未登録は空配列の200であり、読み取り失敗の500とは区別される
	if sessions == nil {
		sessions = []*model.Session{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// CreateSession は単一セッションを作成する。
// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	sess, err := h.service.Create(r.Context(), req.LockTime, req.UnlockTime)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordSessionCreated()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sess)
}

// DeleteSessions は指定IDのセッションを一括削除する。
// DELETE /api/sessions
func (h *SessionHandler) DeleteSessions(w http.ResponseWriter, r *http.Request) {
	var req deleteSessionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.Delete(r.Context(), req.IDs); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordSessionsDeleted(len(req.IDs))
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportSessions はバルクインポートを処理する。
// POST /api/sessions/import
// Content-Typeがtext/csvの場合はCSVボディ、それ以外はJSON
// （{"sessions": [...]} または素の配列）として解釈する。
// バッチ前提条件の失敗（必須列欠落・ボディ解析不能）はストアへの書き込み前に
// 400で拒否し、レコード単位の失敗はImportResultに集計して200で返す。
func (h *SessionHandler) ImportSessions(w http.ResponseWriter, r *http.Request) {
	var records []model.ImportRecord
	var err error

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/csv") {
		records, err = transfer.ParseCSV(r.Body)
	} else {
		records, err = transfer.ParseJSON(r.Body)
	}

	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.maxImportRecords > 0 && len(records) > h.maxImportRecords {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidImportFormatError(
			fmt.Sprintf("レコード数が上限（%d件）を超えています", h.maxImportRecords)))
		return
	}

	result := h.service.Import(r.Context(), records)

	if h.recorder != nil {
		h.recorder.RecordImportResult(result.Success, result.Failed)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ExportSessions は全セッションをCSVまたはJSON形式でダウンロードさせる。
// GET /api/sessions/export?format=csv|json
func (h *SessionHandler) ExportSessions(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidExportFormatError(format))
		return
	}

	sessions, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("screen-time-export-%s.%s", time.Now().Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		if err := transfer.WriteJSON(w, sessions); err != nil {
			slog.Error("export failed", slog.String("error", err.Error()))
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	if err := transfer.WriteCSV(w, sessions); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
	}
}

// --- ヘルパー関数 ---

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidTimestamp,
		model.ErrCodeInvalidOrdering,
		model.ErrCodeMissingRequiredColumn,
		model.ErrCodeInvalidImportFormat,
		model.ErrCodeInvalidDate,
		model.ErrCodeInvalidPeriod,
		model.ErrCodeInvalidExportFormat,
		model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeStoreReadFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
