// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, import, storage, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidTimestamp      = "INVALID_TIMESTAMP"
	ErrCodeInvalidOrdering       = "INVALID_ORDERING"
	ErrCodeMissingRequiredColumn = "MISSING_REQUIRED_COLUMN"
	ErrCodeInvalidImportFormat   = "INVALID_IMPORT_FORMAT"
	ErrCodeInvalidDate           = "INVALID_DATE"
	ErrCodeInvalidPeriod         = "INVALID_PERIOD"
	ErrCodeInvalidExportFormat   = "INVALID_EXPORT_FORMAT"
	ErrCodeStoreReadFailed       = "STORE_READ_FAILED"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
)

// NewInvalidTimestampError はタイムスタンプ解析失敗エラーを生成する。
func NewInvalidTimestampError(field, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTimestamp,
		Message:  fmt.Sprintf("タイムスタンプを解析できません: %s=%q", field, value),
		Category: "validation",
		Action:   "ISO-8601形式（例: 2024-01-01T10:00:00Z）のタイムスタンプを指定してください。",
	}
}

// NewInvalidOrderingError はアンロック時刻がロック時刻以前の場合のエラーを生成する。
func NewInvalidOrderingError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidOrdering,
		Message:  "unlockTimeはlockTimeより後の時刻である必要があります。",
		Category: "validation",
		Action:   "ロック時刻とアンロック時刻の前後関係を確認してください。",
	}
}

// NewMissingRequiredColumnError はCSVヘッダーに必須列が無い場合のエラーを生成する。
// バッチ全体の前提条件エラーであり、レコード単位の失敗とは区別される。
func NewMissingRequiredColumnError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingRequiredColumn,
		Message:  "CSVにはlockTime列とunlockTime列が必要です。",
		Category: "import",
		Action:   "ヘッダー行にlockTimeとunlockTimeを含むCSVをアップロードしてください。",
	}
}

// NewInvalidImportFormatError はインポート入力全体が解析できない場合のエラーを生成する。
func NewInvalidImportFormatError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImportFormat,
		Message:  fmt.Sprintf("インポートデータを解析できません: %s", reason),
		Category: "import",
		Action:   "CSVまたはJSON形式のファイルを確認してください。",
	}
}

// NewInvalidDateError は日付指定が解析できない場合のエラーを生成する。
func NewInvalidDateError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付指定です: %q", value),
		Category: "validation",
		Action:   "YYYY-MM-DD形式の日付、またはlast-7-daysを指定してください。",
	}
}

// NewInvalidPeriodError は期間種別が不正な場合のエラーを生成する。
func NewInvalidPeriodError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPeriod,
		Message:  fmt.Sprintf("無効な期間種別です: %q", value),
		Category: "validation",
		Action:   "periodにはweekまたはmonthを指定してください。",
	}
}

// NewInvalidExportFormatError はエクスポート形式が不正な場合のエラーを生成する。
func NewInvalidExportFormatError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidExportFormat,
		Message:  fmt.Sprintf("無効なエクスポート形式です: %q", value),
		Category: "validation",
		Action:   "formatにはcsvまたはjsonを指定してください。",
	}
}

// NewStoreReadFailedError はストアからの読み取り失敗エラーを生成する。
// 「データ未登録」とは区別され、必ず呼び出し元へ伝播する。
func NewStoreReadFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreReadFailed,
		Message:  "セッションデータの読み取りに失敗しました。",
		Category: "storage",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}
