// Package main provides localization for the happlay CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定",
		"Logging":       "ログ",
		"Debug":         "デバッグ",

		// Root command
		"Inspect, play and verify HAP movies": "HAP動画の確認・再生・検証",

		// Global flags
		"YAML configuration file":                                "YAML設定ファイル",
		"Root directory of streaming assets":                     "ストリーミングアセットのルートディレクトリ",
		"How movie paths are resolved (local, streaming_assets)": "動画パスの解決方法（local, streaming_assets）",
		"Log level (debug, info, warn, error)":                   "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                "全てのログ出力を抑制",
		"Enable debug output":                                    "デバッグ出力を有効化",
		"Directory for debug output":                             "デバッグ出力のディレクトリ",

		// Commands
		"Print the stream description of a movie":                                  "動画のストリーム情報を表示",
		"Decode the frame shown at a time and save it as an image":                 "指定時刻のフレームをデコードして画像として保存",
		"Render a contact sheet of frames sampled across a movie":                  "動画全体から抽出したフレームの一覧画像を作成",
		"Check that RGB-cycle movies show the right colour at every frame":         "RGBサイクル動画の全フレームの色を検証",
		"Write RGB-cycle test movies, one per frame rate":                          "フレームレートごとにRGBサイクルのテスト動画を作成",
		"Decode every frame of a movie through the scheduler and report throughput": "全フレームをスケジューラ経由でデコードしスループットを報告",

		// Command flags
		"Write a report to this file (.json for JSON, otherwise Markdown)":         "レポートをこのファイルに出力（.json はJSON、それ以外はMarkdown）",
		"Playback time in seconds":                                                 "再生時刻（秒）",
		"Output image path (.png, .jpg, .bmp, .tiff)":                              "出力画像パス（.png, .jpg, .bmp, .tiff）",
		"Scale the image to this width (0 = original)":                             "画像をこの幅に縮小（0 = 元のサイズ）",
		"Number of thumbnails":                                                     "サムネイル数",
		"Number of columns (min: 1)":                                               "カラム数（最小: 1）",
		"Thumbnail width in pixels":                                                "サムネイルの幅（ピクセル）",
		"TrueType font for labels":                                                 "ラベル用のTrueTypeフォント",
		"Seconds scrubbed from the start of each movie":                            "各動画の先頭から検証する秒数",
		"Output directory":                                                         "出力ディレクトリ",
		"Frame size as WIDTHxHEIGHT":                                               "フレームサイズ（幅x高さ）",
		"Movie duration in seconds":                                                "動画の長さ（秒）",
		"Frame rate (e.g. 25, 29.97, 30000/1001); repeatable":                      "フレームレート（例: 25, 29.97, 30000/1001）、複数指定可",
		"HAP format (hap, hap_alpha, hap_q, hap_q_alpha, hap_alpha_only)":          "HAP形式（hap, hap_alpha, hap_q, hap_q_alpha, hap_alpha_only）",
		"Second-stage compressor (none, snappy)":                                   "二段目の圧縮方式（none, snappy）",
		"Chunks per texture (1 = no chunking)":                                     "テクスチャあたりのチャンク数（1 = 分割なし）",
		"Container layout (progressive, fragmented)":                               "コンテナ構成（progressive, fragmented）",
		"Write the hue by alpha gradient test movie and its decoded reference image": "色相×アルファのグラデーション動画とデコード済み参照画像を作成",
		"Width and height of the square frame":                                       "正方形フレームの幅と高さ",
		"HAP format with alpha (hap_alpha, hap_q_alpha)":                             "アルファ付きHAP形式（hap_alpha, hap_q_alpha）",
		"Largest channel error accepted when checking the decoded frame":             "デコード結果の検証で許容するチャンネル誤差の最大値",
		"Number of passes over the movie":                                          "動画を通してデコードする回数",
		"Serve Prometheus metrics on this address while running (e.g. :9090)":      "実行中にこのアドレスでPrometheusメトリクスを公開（例: :9090）",

		// Output
		"%s: %s %dx%d, %d frames at %s fps (%.3f s)":                   "%s: %s %dx%d, %d フレーム, %s fps (%.3f 秒)",
		"Texture formats: %s":                                          "テクスチャ形式: %s",
		"Compressor %s: %d sections":                                   "圧縮方式 %s: %d セクション",
		"PASS %s (%d frames)":                                          "合格 %s (%d フレーム)",
		"FAIL %s: %v":                                                  "不合格 %s: %v",
		"Decoded %d frames in %d ms (%.1f fps), %d failures, %d discarded": "%d フレームを %d ms でデコード (%.1f fps), 失敗 %d, 破棄 %d",

		// Errors
		"Error: %v":                       "エラー: %v",
		"movie file argument is required": "動画ファイルの引数が必要です",
		"unsupported image format":        "未対応の画像形式です",
		"invalid size":                    "不正なサイズです",
		"format has no colour alpha":      "カラーアルファを持たない形式です",
		"%d of %d movies failed":          "%d / %d 本の動画が不合格でした",

		// Report content
		"Stream Report":     "ストリームレポート",
		"File":              "ファイル",
		"Stream":            "ストリーム",
		"Frames":            "フレーム",
		"Item":              "項目",
		"Value":             "値",
		"Path":              "パス",
		"Size":              "サイズ",
		"Format":            "形式",
		"Dimensions":        "解像度",
		"Frame Rate":        "フレームレート",
		"Duration":          "長さ",
		"Timescale":         "タイムスケール",
		"Texture Formats":   "テクスチャ形式",
		"Compressors":       "圧縮方式",
		"Smallest Frame":    "最小フレーム",
		"Largest Frame":     "最大フレーム",
		"Average Frame":     "平均フレーム",
		"Unreadable Frames": "読み取れないフレーム",
		"Decode Benchmark":  "デコードベンチマーク",
		"Decoded Frames":    "デコードしたフレーム",
		"Failures":          "失敗",
		"Discarded":         "破棄",
		"Elapsed":           "経過時間",
		"Frames per Second": "毎秒フレーム数",
		"Generated at":      "生成日時",
	})
}
