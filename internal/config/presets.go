package config

import "github.com/san-kum/ecsim/internal/replaylog"

var Presets = map[string]*Config{
	"quick": {
		GridSize: DefaultGridSize, Actors: DefaultActors, Ticks: 20, TickMS: 100,
		ReplayLog: replaylog.DefaultConfig(),
	},
	"standard": {
		GridSize: DefaultGridSize, Actors: DefaultActors, Ticks: DefaultTicks, TickMS: DefaultTickMS,
		ReplayLog: replaylog.DefaultConfig(),
	},
	"crowded": {
		GridSize: 14, Actors: 8, Ticks: 120, TickMS: 200,
		ReplayLog: replaylog.DefaultConfig(),
	},
	"logged": {
		GridSize: DefaultGridSize, Actors: DefaultActors, Ticks: DefaultTicks, TickMS: 100,
		ReplayLog: replaylog.Config{
			Enabled:                 true,
			LogDirectory:            "ecsim_logs",
			FilePrefix:              "session",
			FlushInterval:           20,
			IncludeComponentDetails: true,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
