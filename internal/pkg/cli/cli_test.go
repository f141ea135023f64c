package cli

import (
	"testing"

	"github.com/journalstat-dev/journalstat/internal/pkg/config"
)

func intp(v int) *int { return &v }

func TestMergeSettings(t *testing.T) {
	cfg := &config.Config{
		TopTalkers:    20,
		LargeMessages: 5,
		Recursive:     false,
		Workers:       3,
	}

	tests := map[string]struct {
		top     *int
		large   *int
		workers *int
		rec     bool
		want    settingsT
	}{
		"ConfigOnly": {
			want: settingsT{topN: 20, largeN: 5, workers: 3},
		},
		"FlagsOverride": {
			top:     intp(7),
			large:   intp(2),
			workers: intp(8),
			rec:     true,
			want:    settingsT{topN: 7, largeN: 2, workers: 8, recursive: true},
		},
		"ExplicitZeroDisablesRanking": {
			top:  intp(0),
			want: settingsT{topN: 0, largeN: 5, workers: 3},
		},
		"ExplicitWorkerOneForcesSequential": {
			workers: intp(1),
			want:    settingsT{topN: 20, largeN: 5, workers: 1},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			Options.TopTalkers = tc.top
			Options.LargeMessages = tc.large
			Options.Workers = tc.workers
			Options.Recursive = tc.rec
			defer func() {
				Options.TopTalkers = nil
				Options.LargeMessages = nil
				Options.Workers = nil
				Options.Recursive = false
			}()

			if got := mergeSettings(cfg); got != tc.want {
				t.Errorf("settings = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestMergeSettingsConfigRecursive(t *testing.T) {
	cfg := &config.Config{Recursive: true}

	if got := mergeSettings(cfg); !got.recursive {
		t.Error("config recursive not honored")
	}
}
