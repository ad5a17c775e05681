// Package config loads Snake rulesets.
//
// A ruleset is a file in the config directory whose base name is its
// identifier: configs/small.yaml is started with config_id "small". YAML
// (.yaml, .yml) and JSON (.json) are accepted:
//
//	name: small
//	description: 10x10 board for quick rounds
//	grid_size: 10
//	win_threshold: 5
//	start_row: 5
//	start_col: 5
//	start_direction: UP
//
// JSON files carry the start cell as "start": [row, col].
//
// Every loaded ruleset is validated with engine.ValidateGameConfig and
// cached. The classic ruleset is embedded in the binary and served when
// the directory does not provide one.
package config
