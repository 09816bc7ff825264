// Package session はスクリーンロックセッションのドメインロジックを提供する。
package session

import (
	"time"

	"github.com/hitoshi/lockstat/internal/model"
)

// timestampLayouts は受理するタイムスタンプ形式。上から順に試行する。
// タイムゾーン指定の無い形式は指定されたロケーションで解釈する。
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp はISO-8601系のタイムスタンプ文字列を解析する。
// いずれの形式でも解析できない場合はINVALID_TIMESTAMPエラーを返す。
func ParseTimestamp(field, value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, model.NewInvalidTimestampError(field, value)
}

// ComputeDuration はロック時刻とアンロック時刻から継続秒数を計算する。
// floor((unlock - lock) / 1s) を返す純粋関数で、クランプは行わない。
// unlockがlockより前の場合は負値を返す（前後関係の検証は呼び出し側の責務）。
func ComputeDuration(lockTime, unlockTime time.Time) int {
	d := unlockTime.Sub(lockTime)
	secs := d / time.Second
	// Goの整数除算はゼロ方向への切り捨てのため、負値はfloorに補正する
	if d%time.Second != 0 && d < 0 {
		secs--
	}
	return int(secs)
}
