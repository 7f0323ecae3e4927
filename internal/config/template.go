package config

import (
	"os"
	"path/filepath"
)

const template = `{
  // Leaderboard snapshots saved from the browser, relative paths are read from dirs.input.
  // When the same nickname appears in several files the later file wins.
  "local": {
    "html_files": [
      "rank_page_1.html",
      "rank_page_2.html",
      "rank_page_3.html"
    ]
  },

  // Relative inputs live under dirs.input, relative outputs under dirs.output.
  "files": {
    // roster spreadsheet (.xlsx or .csv)
    "input_file": "input.xlsx",
    // reconciled table, always written as UTF-8 csv with a byte order mark
    "output_file": "output.csv",
    // deduplicated identifiers, one per line
    "user_id_list": "user_ids.txt",
    // nicknames that could not be matched, one per failing row
    "not_found_users": "not_found_users.txt",
    // avatars are saved as <avatar_dir>/<identifier>/photo.<ext>
    "avatar_dir": "avatars"
  },

  "dirs": {
    "input": "Input",
    "output": "Output"
  },

  // Header keywords used to find each roster column. The leftmost header
  // containing any keyword is used. nickname_fallback is only searched when
  // no header matches nickname.
  "columns": {
    "nickname": ["昵称", "昵称名称"],
    "nickname_fallback": ["nick", "Nick"],
    "real_name": ["真实姓名", "真实名称", "姓名"],
    "school": ["学校", "院校", "单位"]
  },

  "avatar": {
    // %s is replaced by the identifier
    "profile_url": "https://ac.nowcoder.com/acm/contest/profile/%s",
    // delay after every identifier
    "pause_ms": 500,
    // bound on every single request
    "timeout_ms": 10000,
    // when set, every http exchange is written here, under dirs.output
    "dump_dir": ""
  },

  // Unmatched nicknames get the closest scraped nickname suggested when the
  // Jaro-Winkler similarity reaches this threshold. Suggestions are never applied.
  "suggest": {
    "threshold": 0.9
  }
}
`

// WriteTemplate writes a commented configuration with every key and its default.
func WriteTemplate(path string) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(template), 0644)
}
