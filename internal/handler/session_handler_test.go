package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/lockstat/internal/model"
)

// --- モック ---

type mockSessionService struct {
	createFn func(ctx context.Context, lockTime, unlockTime string) (*model.Session, error)
	listFn   func(ctx context.Context) ([]*model.Session, error)
	deleteFn func(ctx context.Context, ids []string) error
	importFn func(ctx context.Context, records []model.ImportRecord) *model.ImportResult
}

func (m *mockSessionService) Create(ctx context.Context, lockTime, unlockTime string) (*model.Session, error) {
	return m.createFn(ctx, lockTime, unlockTime)
}

func (m *mockSessionService) List(ctx context.Context) ([]*model.Session, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockSessionService) Delete(ctx context.Context, ids []string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ids)
	}
	return nil
}

func (m *mockSessionService) Import(ctx context.Context, records []model.ImportRecord) *model.ImportResult {
	return m.importFn(ctx, records)
}

type mockRecorder struct {
	created       int
	deleted       int
	importSuccess int
	importFailed  int
}

func (m *mockRecorder) RecordSessionCreated() { m.created++ }

func (m *mockRecorder) RecordSessionsDeleted(count int) { m.deleted += count }
func (m *mockRecorder) RecordImportResult(success, failed int) {
	m.importSuccess += success
	m.importFailed += failed
}

func testSession() *model.Session {
	lock := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return &model.Session{
		ID:              "sess-1",
		LockTime:        lock,
		UnlockTime:      lock.Add(90 * time.Minute),
		DurationSeconds: 5400,
	}
}

// --- テスト ---

// TestListSessions_Empty はデータ未登録時に空配列の200が返ることを検証する。
func TestListSessions_Empty(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{}, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()

	h.ListSessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

// TestListSessions_StoreFailure は読み取り失敗が500のSTORE_READ_FAILEDになることを検証する。
// 空データの200とは明確に区別される。
func TestListSessions_StoreFailure(t *testing.T) {
	svc := &mockSessionService{
		listFn: func(ctx context.Context) ([]*model.Session, error) {
			return nil, fmt.Errorf("%w: connection refused", model.NewStoreReadFailedError())
		},
	}
	h := NewSessionHandler(svc, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()

	h.ListSessions(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var errResp apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Code != model.ErrCodeStoreReadFailed {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeStoreReadFailed)
	}
}

// TestCreateSession はセッション作成の201レスポンスとメトリクス記録を検証する。
func TestCreateSession(t *testing.T) {
	svc := &mockSessionService{
		createFn: func(ctx context.Context, lockTime, unlockTime string) (*model.Session, error) {
			return testSession(), nil
		},
	}
	recorder := &mockRecorder{}
	h := NewSessionHandler(svc, recorder, 0)

	body := `{"lockTime": "2024-01-15T10:00:00Z", "unlockTime": "2024-01-15T11:30:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateSession(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var sess model.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if sess.DurationSeconds != 5400 {
		t.Errorf("DurationSeconds = %d, want 5400", sess.DurationSeconds)
	}
	if recorder.created != 1 {
		t.Errorf("created metric = %d, want 1", recorder.created)
	}
}

// TestCreateSession_ValidationError はサービス層の検証エラーが400になることを検証する。
func TestCreateSession_ValidationError(t *testing.T) {
	svc := &mockSessionService{
		createFn: func(ctx context.Context, lockTime, unlockTime string) (*model.Session, error) {
			return nil, model.NewInvalidOrderingError()
		},
	}
	h := NewSessionHandler(svc, nil, 0)

	body := `{"lockTime": "2024-01-15T11:00:00Z", "unlockTime": "2024-01-15T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateSession(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var errResp apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Code != model.ErrCodeInvalidOrdering {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeInvalidOrdering)
	}
}

// TestCreateSession_MalformedBody は解析不能なボディが400になることを検証する。
func TestCreateSession_MalformedBody(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{}, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()

	h.CreateSession(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// TestDeleteSessions は一括削除の204レスポンスとメトリクス記録を検証する。
func TestDeleteSessions(t *testing.T) {
	var gotIDs []string
	svc := &mockSessionService{
		deleteFn: func(ctx context.Context, ids []string) error {
			gotIDs = ids
			return nil
		},
	}
	recorder := &mockRecorder{}
	h := NewSessionHandler(svc, recorder, 0)

	body := `{"ids": ["a", "b"]}`
	req := httptest.NewRequest(http.MethodDelete, "/api/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.DeleteSessions(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(gotIDs) != 2 {
		t.Errorf("deleted IDs = %v, want 2 entries", gotIDs)
	}
	if recorder.deleted != 2 {
		t.Errorf("deleted metric = %d, want 2", recorder.deleted)
	}
}

// TestImportSessions_JSON はJSONボディのインポートを検証する。
func TestImportSessions_JSON(t *testing.T) {
	svc := &mockSessionService{
		importFn: func(ctx context.Context, records []model.ImportRecord) *model.ImportResult {
			return &model.ImportResult{Success: len(records), Total: len(records), Errors: []string{}}
		},
	}
	recorder := &mockRecorder{}
	h := NewSessionHandler(svc, recorder, 0)

	body := `{"sessions": [{"lockTime": "2024-01-15T10:00:00Z", "unlockTime": "2024-01-15T11:00:00Z"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.ImportSessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result model.ImportResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Success != 1 || result.Total != 1 {
		t.Errorf("result = %+v, want success=1 total=1", result)
	}
	if recorder.importSuccess != 1 {
		t.Errorf("import success metric = %d, want 1", recorder.importSuccess)
	}
}

// TestImportSessions_CSV はtext/csvボディのインポートを検証する。
func TestImportSessions_CSV(t *testing.T) {
	var gotRecords []model.ImportRecord
	svc := &mockSessionService{
		importFn: func(ctx context.Context, records []model.ImportRecord) *model.ImportResult {
			gotRecords = records
			return &model.ImportResult{Success: len(records), Total: len(records), Errors: []string{}}
		},
	}
	h := NewSessionHandler(svc, nil, 0)

	body := "lockTime,unlockTime\n2024-01-15T10:00:00,2024-01-15T11:00:00\n"
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	h.ImportSessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(gotRecords) != 1 {
		t.Fatalf("records passed to service = %d, want 1", len(gotRecords))
	}
	if gotRecords[0].LockTime != "2024-01-15T10:00:00" {
		t.Errorf("LockTime = %q", gotRecords[0].LockTime)
	}
}

// TestImportSessions_MissingColumn は必須列欠落のCSVが400で拒否されることを検証する。
// バッチ前提条件の失敗であり、サービス層には到達しない。
func TestImportSessions_MissingColumn(t *testing.T) {
	svc := &mockSessionService{
		importFn: func(ctx context.Context, records []model.ImportRecord) *model.ImportResult {
			t.Fatal("Import must not be called")
			return nil
		},
	}
	h := NewSessionHandler(svc, nil, 0)

	body := "foo,bar\n1,2\n"
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	h.ImportSessions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var errResp apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Code != model.ErrCodeMissingRequiredColumn {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeMissingRequiredColumn)
	}
}

// TestImportSessions_TooManyRecords はレコード数上限の超過が400で拒否されることを検証する。
func TestImportSessions_TooManyRecords(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{}, nil, 2)

	body := `{"sessions": [
		{"lockTime": "a", "unlockTime": "b"},
		{"lockTime": "c", "unlockTime": "d"},
		{"lockTime": "e", "unlockTime": "f"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.ImportSessions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// TestExportSessions_CSV はCSVエクスポートのヘッダーとダウンロード属性を検証する。
func TestExportSessions_CSV(t *testing.T) {
	svc := &mockSessionService{
		listFn: func(ctx context.Context) ([]*model.Session, error) {
			return []*model.Session{testSession()}, nil
		},
	}
	h := NewSessionHandler(svc, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/export", nil)
	rec := httptest.NewRecorder()

	h.ExportSessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "screen-time-export-") || !strings.Contains(cd, ".csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "lockTime,unlockTime,durationSeconds,durationFormatted") {
		t.Errorf("body = %q, want CSV header first", rec.Body.String())
	}
}

// TestExportSessions_JSON はJSONエクスポートを検証する。
func TestExportSessions_JSON(t *testing.T) {
	svc := &mockSessionService{
		listFn: func(ctx context.Context) ([]*model.Session, error) {
			return []*model.Session{testSession()}, nil
		},
	}
	h := NewSessionHandler(svc, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/export?format=json", nil)
	rec := httptest.NewRecorder()

	h.ExportSessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var records []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
}

// TestExportSessions_InvalidFormat はサポート外の形式指定が400で拒否されることを検証する。
func TestExportSessions_InvalidFormat(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{}, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/export?format=xml", nil)
	rec := httptest.NewRecorder()

	h.ExportSessions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
