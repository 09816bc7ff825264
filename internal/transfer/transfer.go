// Package transfer はセッションデータのインポート/エクスポート形式（CSV/JSON）を扱う。
// いずれの形式でエクスポートしても、そのまま再インポートできる相互互換の形を保つ。
package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hitoshi/lockstat/internal/model"
)

// exportTimeLayout はエクスポート時のタイムスタンプ形式。
const exportTimeLayout = "2006-01-02T15:04:05"

// csvColumnLockTime / csvColumnUnlockTime はCSVの必須列名（大文字小文字を区別）。
const (
	csvColumnLockTime   = "lockTime"
	csvColumnUnlockTime = "unlockTime"
)

// ParseCSV はCSV入力をインポートレコード列に正規化する。
// ヘッダー行にlockTime列とunlockTime列が無い場合はバッチ全体の失敗として
// MISSING_REQUIRED_COLUMNを返し、レコードは1件も処理しない。列順は任意。
func ParseCSV(r io.Reader) ([]model.ImportRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, model.NewInvalidImportFormatError(err.Error())
	}

	if len(rows) == 0 {
		return nil, model.NewMissingRequiredColumnError()
	}

	lockIdx, unlockIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case csvColumnLockTime:
			lockIdx = i
		case csvColumnUnlockTime:
			unlockIdx = i
		}
	}

	if lockIdx < 0 || unlockIdx < 0 {
		return nil, model.NewMissingRequiredColumnError()
	}

	records := make([]model.ImportRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, model.ImportRecord{
			LockTime:   fieldAt(row, lockIdx),
			UnlockTime: fieldAt(row, unlockIdx),
		})
	}

	return records, nil
}

// importEnvelope は {"sessions": [...]} 形式のJSONインポートボディ。
type importEnvelope struct {
	Sessions []model.ImportRecord `json:"sessions"`
}

// ParseJSON はJSON入力をインポートレコード列に正規化する。
// {"sessions": [...]} のエンベロープ形式と、エクスポートが生成する
// 素の配列形式の両方を受理する。
func ParseJSON(r io.Reader) ([]model.ImportRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewInvalidImportFormatError(err.Error())
	}

	trimmed := bytes.TrimLeftFunc(data, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env importEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, model.NewInvalidImportFormatError(err.Error())
		}
		if env.Sessions == nil {
			return nil, model.NewInvalidImportFormatError("sessionsフィールドがありません")
		}
		return env.Sessions, nil
	}

	var records []model.ImportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, model.NewInvalidImportFormatError(err.Error())
	}

	return records, nil
}

// WriteCSV はセッション列をCSV形式で書き出す。
// ヘッダーは lockTime,unlockTime,durationSeconds,durationFormatted。
func WriteCSV(w io.Writer, sessions []*model.Session) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{csvColumnLockTime, csvColumnUnlockTime, "durationSeconds", "durationFormatted"}); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}

	for _, s := range sessions {
		hours := s.DurationSeconds / 3600
		minutes := (s.DurationSeconds % 3600) / 60
		row := []string{
			s.LockTime.Format(exportTimeLayout),
			s.UnlockTime.Format(exportTimeLayout),
			fmt.Sprintf("%d", s.DurationSeconds),
			fmt.Sprintf("%dh %dm", hours, minutes),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗しました: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSVの書き込みに失敗しました: %w", err)
	}

	return nil
}

// exportRecord はJSONエクスポートの1レコード。
type exportRecord struct {
	LockTime        string `json:"lockTime"`
	UnlockTime      string `json:"unlockTime"`
	DurationSeconds int    `json:"durationSeconds"`
}

// WriteJSON はセッション列をJSON配列形式で書き出す。
func WriteJSON(w io.Writer, sessions []*model.Session) error {
	records := make([]exportRecord, len(sessions))
	for i, s := range sessions {
		records[i] = exportRecord{
			LockTime:        s.LockTime.Format(exportTimeLayout),
			UnlockTime:      s.UnlockTime.Format(exportTimeLayout),
			DurationSeconds: s.DurationSeconds,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("JSONの書き込みに失敗しました: %w", err)
	}

	return nil
}

// fieldAt は行のidx番目のフィールドを返す。行が短い場合は空文字列。
// 欠けたフィールドはレコード単位の検証失敗として下流で扱われる。
func fieldAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
