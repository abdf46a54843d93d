package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Player
		"Opened %s: %s %dx%d, %d frames at %s fps": "%s を開きました: %s %dx%d, %d フレーム, %s fps",
		"Failed to open %s: %v":                    "%s を開けませんでした: %v",
		"Failed to close %s: %v":                   "%s を閉じられませんでした: %v",
		"Closed %s":                                "%s を閉じました",
		"Requesting frame %d at %.4f s":            "フレーム %d (%.4f 秒) を要求",
		"Skipping debug dump of frame %d: %v":      "フレーム %d のデバッグ出力をスキップ: %v",
		"Failed to save debug output: %v":          "デバッグ出力の保存に失敗しました: %v",

		// Container
		"Parsed %s: %d frames, timescale %d, largest frame %d bytes": "%s を解析: %d フレーム, タイムスケール %d, 最大フレーム %d バイト",

		// Frame cache
		"Failed to decode frame %d: %v": "フレーム %d のデコードに失敗しました: %v",
		"Discarded decode of frame %d":  "フレーム %d のデコード結果を破棄しました",

		// CLI
		"%d frames have unreadable headers":        "%d フレームのヘッダーを読み取れません",
		"Report saved to %s":                       "レポートを %s に保存しました",
		"Failed to write report: %v":               "レポートの書き込みに失敗しました: %v",
		"Frame %d (%s) saved to %s":                "フレーム %d (%s) を %s に保存しました",
		"Sampling %d frames from %s":               "%d フレームを %s から抽出中",
		"Sheet saved to %s":                        "一覧画像を %s に保存しました",
		"Generating %d movies (%s, %dx%d, %.2f s)": "%d 本の動画を生成中 (%s, %dx%d, %.2f 秒)",
		"Wrote %s":                                 "%s を書き出しました",
		"Checked %d gradient texels":               "グラデーションのテクセル %d 個を検証しました",
		"Serving metrics on http://%s/metrics":     "http://%s/metrics でメトリクスを公開中",
		"Failed to stop metrics server: %v":        "メトリクスサーバーの停止に失敗しました: %v",
	})
}
